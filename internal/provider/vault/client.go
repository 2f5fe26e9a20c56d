// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// client wraps a Vault API client and tracks
// the seal status of the Vault server.
type client struct {
	*vaultapi.Client

	log    *slog.Logger
	sealed atomic.Bool
}

// Sealed reports whether the most recent health
// check found the Vault server sealed.
func (c *client) Sealed() bool { return c.sealed.Load() }

// CheckStatus fetches the Vault health status every delay
// until ctx is canceled. It should run in its own goroutine.
func (c *client) CheckStatus(ctx context.Context, delay time.Duration) {
	if delay == 0 {
		delay = 10 * time.Second
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		if client, _ := c.CloneWithHeaders(); client != nil {
			// The health endpoint is root-only. Sending a
			// namespace header may result in 404.
			client.ClearNamespace()
			if status, err := client.Sys().HealthWithContext(ctx); err == nil {
				if sealed := c.sealed.Swap(status.Sealed); sealed != status.Sealed {
					c.log.WarnContext(ctx, "vault: seal status changed", slog.Bool("sealed", status.Sealed))
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// authFunc performs a Vault login and returns a secret
// containing the auth token and its TTL.
type authFunc func(context.Context) (*vaultapi.Secret, error)

// withNamespace returns a client for the given auth namespace.
func (c *client) withNamespace(namespace string) *vaultapi.Client {
	switch namespace {
	case "":
		return c.Client
	case "/":
		return c.Client.WithNamespace("")
	default:
		return c.Client.WithNamespace(namespace)
	}
}

// AuthenticateWithAppRole returns an authFunc for the
// AppRole authentication method.
func (c *client) AuthenticateWithAppRole(login *AppRole) authFunc {
	return func(ctx context.Context) (*vaultapi.Secret, error) {
		secret, err := c.withNamespace(login.Namespace).Logical().WriteWithContext(ctx, path.Join("auth", login.Engine, "login"), map[string]any{
			"role_id":   login.ID,
			"secret_id": login.Secret,
		})
		if secret == nil && err == nil {
			return nil, errors.New("vault: authentication failed: no auth token returned")
		}
		return secret, err
	}
}

// AuthenticateWithK8S returns an authFunc for the
// Kubernetes authentication method.
func (c *client) AuthenticateWithK8S(login *Kubernetes) authFunc {
	return func(ctx context.Context) (*vaultapi.Secret, error) {
		jwt := login.JWT
		if strings.ContainsRune(jwt, '/') || strings.ContainsRune(jwt, os.PathSeparator) {
			b, err := os.ReadFile(jwt)
			if err != nil {
				return nil, err
			}
			jwt = strings.TrimSpace(string(b))
		}

		secret, err := c.withNamespace(login.Namespace).Logical().WriteWithContext(ctx, path.Join("auth", login.Engine, "login"), map[string]any{
			"role": login.Role,
			"jwt":  jwt,
		})
		if secret == nil && err == nil {
			return nil, errors.New("vault: authentication failed: no auth token returned")
		}
		return secret, err
	}
}

// RenewToken renews the auth token after 80% of its TTL has
// passed, or re-authenticates if renewal is not possible. It
// returns immediately if the token has no TTL and otherwise
// runs until ctx is canceled.
//
// While Vault is sealed, RenewToken waits. CheckStatus must
// run concurrently to observe unsealing.
func (c *client) RenewToken(ctx context.Context, authenticate authFunc, secret *vaultapi.Secret) {
	ttl, _ := secret.TokenTTL()
	if ttl == 0 {
		return
	}

	const (
		Retry = 3                // Renewal attempts before re-authenticating
		Delay = 30 * time.Second // Max. delay before using a new token, for replication lag
	)
	sleep := func(d time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	s := secret
	for {
		if c.Sealed() {
			if !sleep(time.Second) {
				return
			}
			continue
		}

		// Token about to expire: re-authenticate immediately.
		if ttl < Delay {
			if s, _ = authenticate(ctx); s != nil {
				ttl, _ = s.TokenTTL()
				token, _ := s.TokenID()
				c.SetToken(token)
			}
			if !sleep(3 * time.Second) {
				return
			}
			continue
		}

		renewIn := 80 * (ttl / 100)
		delay := min((ttl-renewIn)/2, Delay)
		ttl = 0
		if !sleep(renewIn) {
			return
		}

		if ok, _ := s.TokenIsRenewable(); ok {
			var err error
			for i := 0; i < Retry; i++ {
				s, err = c.Auth().Token().RenewSelfWithContext(ctx, 0)
				if err == nil {
					break
				}
				if resp, ok := err.(*vaultapi.ResponseError); ok && resp.StatusCode >= 400 && resp.StatusCode < 500 {
					break
				}
			}
			if err != nil {
				c.log.WarnContext(ctx, "vault: failed to renew auth token", slog.Any("err", err))
			}
			if s == nil {
				s, _ = authenticate(ctx)
			}
		} else {
			s, _ = authenticate(ctx)
		}
		if s == nil {
			continue
		}

		ttl, _ = s.TokenTTL()
		token, _ := s.TokenID()
		if !sleep(delay) {
			return
		}
		c.SetToken(token)
	}
}
