// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychainconf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/minio/keychain/internal/https"
	"github.com/minio/keychain/internal/log"
	"gopkg.in/yaml.v3"
)

type ymlFile struct {
	Version string `yaml:"version"`

	Addr  env[string] `yaml:"address"`
	AppID env[string] `yaml:"app_id"`

	TLS struct {
		PrivateKey  env[string] `yaml:"key"`
		Certificate env[string] `yaml:"cert"`
		Password    env[string] `yaml:"password"`
		CAPath      env[string] `yaml:"ca"`
	} `yaml:"tls"`

	API struct {
		Token env[string] `yaml:"token"`
	} `yaml:"api"`

	Log struct {
		Level  env[string] `yaml:"level"`
		Format env[string] `yaml:"format"`
	} `yaml:"log"`

	Store struct {
		Namespace env[string] `yaml:"namespace"`

		Mem *struct{} `yaml:"mem"`

		FS *struct {
			Path env[string] `yaml:"path"`
		} `yaml:"fs"`

		File *struct {
			Path env[string] `yaml:"path"`
		} `yaml:"file"`
	} `yaml:"store"`

	Provider struct {
		Soft *struct {
			Path       env[string] `yaml:"path"`
			Passphrase env[string] `yaml:"passphrase"`
		} `yaml:"soft"`

		Keyring *struct {
			Service  env[string]   `yaml:"service"`
			Backends []env[string] `yaml:"backends"`
			File     struct {
				Path     env[string] `yaml:"path"`
				Password env[string] `yaml:"password"`
			} `yaml:"file"`
		} `yaml:"keyring"`

		AWS *struct {
			Endpoint    env[string] `yaml:"endpoint"`
			Region      env[string] `yaml:"region"`
			Credentials struct {
				AccessKey    env[string] `yaml:"accesskey"`
				SecretKey    env[string] `yaml:"secretkey"`
				SessionToken env[string] `yaml:"token"`
			} `yaml:"credentials"`
		} `yaml:"aws"`

		Vault *struct {
			Endpoint  env[string] `yaml:"endpoint"`
			Namespace env[string] `yaml:"namespace"`
			Token     env[string] `yaml:"token"`

			Transit struct {
				Engine  env[string] `yaml:"engine"`
				KeyName env[string] `yaml:"key"`
			} `yaml:"transit"`

			AppRole *struct {
				Engine    env[string] `yaml:"engine"`
				Namespace env[string] `yaml:"namespace"`
				ID        env[string] `yaml:"id"`
				Secret    env[string] `yaml:"secret"`
			} `yaml:"approle"`

			Kubernetes *struct {
				Engine    env[string] `yaml:"engine"`
				Namespace env[string] `yaml:"namespace"`
				Role      env[string] `yaml:"role"`
				JWT       env[string] `yaml:"jwt"` // Can be either a JWT or a path to a file containing a JWT
			} `yaml:"kubernetes"`

			TLS struct {
				PrivateKey  env[string] `yaml:"key"`
				Certificate env[string] `yaml:"cert"`
				CAPath      env[string] `yaml:"ca"`
			} `yaml:"tls"`

			Status struct {
				Ping env[time.Duration] `yaml:"ping"`
			} `yaml:"status"`
		} `yaml:"vault"`
	} `yaml:"provider"`
}

func findVersion(root *yaml.Node) (string, error) {
	if root == nil {
		return "", errors.New("keychainconf: invalid config")
	}
	if root.Kind != yaml.DocumentNode {
		return "", errors.New("keychainconf: invalid config format")
	}
	if len(root.Content) != 1 {
		return "", errors.New("keychainconf: invalid config format")
	}

	doc := root.Content[0]
	for i, n := range doc.Content {
		if n.Value == "version" {
			if n.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("keychainconf: invalid config version at line '%d'", n.Line)
			}
			if i == len(doc.Content)-1 {
				return "", fmt.Errorf("keychainconf: invalid config version at line '%d'", n.Line)
			}
			v := doc.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("keychainconf: invalid config version at line '%d'", v.Line)
			}
			return v.Value, nil
		}
	}
	return "", nil
}

func ymlToFile(y *ymlFile) (*File, error) {
	if y.Version != "" && y.Version != "v1" {
		return nil, fmt.Errorf("keychainconf: invalid config version '%s'", y.Version)
	}
	if strings.TrimSpace(y.AppID.Value) == "" {
		return nil, errors.New("keychainconf: no app_id specified")
	}

	addr := y.Addr.Value
	if addr == "" {
		addr = https.DefaultAddr
	}

	var tlsConfig *TLSConfig
	if y.TLS.PrivateKey.Value != "" || y.TLS.Certificate.Value != "" {
		if y.TLS.PrivateKey.Value == "" {
			return nil, errors.New("keychainconf: invalid tls config: no private key")
		}
		if y.TLS.Certificate.Value == "" {
			return nil, errors.New("keychainconf: invalid tls config: no certificate")
		}
		tlsConfig = &TLSConfig{
			PrivateKey:  y.TLS.PrivateKey.Value,
			Certificate: y.TLS.Certificate.Value,
			Password:    y.TLS.Password.Value,
			CAPath:      y.TLS.CAPath.Value,
		}
	}

	level, err := log.ParseLevel(y.Log.Level.Value)
	if err != nil {
		return nil, fmt.Errorf("keychainconf: %v", err)
	}
	format, err := log.ParseFormat(y.Log.Format.Value)
	if err != nil {
		return nil, fmt.Errorf("keychainconf: %v", err)
	}

	store, err := ymlToKVStore(y)
	if err != nil {
		return nil, err
	}
	provider, err := ymlToKeyProvider(y)
	if err != nil {
		return nil, err
	}

	return &File{
		Addr:  addr,
		AppID: strings.TrimSpace(y.AppID.Value),
		TLS:   tlsConfig,
		API: &APIConfig{
			Token: y.API.Token.Value,
		},
		Log: &LogConfig{
			Level:  level,
			Format: format,
		},
		Store:    store,
		Provider: provider,
	}, nil
}

func ymlToKVStore(y *ymlFile) (KVStore, error) {
	var store KVStore
	namespace := y.Store.Namespace.Value
	if y.Store.Mem != nil {
		store = &MemStore{}
	}
	if y.Store.FS != nil {
		if store != nil {
			return nil, errors.New("keychainconf: invalid store config: more than one store specified")
		}
		if y.Store.FS.Path.Value == "" {
			return nil, errors.New("keychainconf: invalid fs store: no path specified")
		}
		store = &FSStore{
			Path:      y.Store.FS.Path.Value,
			Namespace: namespace,
		}
	}
	if y.Store.File != nil {
		if store != nil {
			return nil, errors.New("keychainconf: invalid store config: more than one store specified")
		}
		if y.Store.File.Path.Value == "" {
			return nil, errors.New("keychainconf: invalid file store: no path specified")
		}
		store = &FileStore{
			Path:      y.Store.File.Path.Value,
			Namespace: namespace,
		}
	}

	if store == nil {
		return nil, errors.New("keychainconf: no store specified")
	}
	return store, nil
}

func ymlToKeyProvider(y *ymlFile) (KeyProvider, error) {
	var provider KeyProvider
	if y.Provider.Soft != nil {
		provider = &SoftProvider{
			Path:       y.Provider.Soft.Path.Value,
			Passphrase: y.Provider.Soft.Passphrase.Value,
		}
	}
	if y.Provider.Keyring != nil {
		if provider != nil {
			return nil, errors.New("keychainconf: invalid provider config: more than one provider specified")
		}
		p := &KeyringProvider{
			Service:      y.Provider.Keyring.Service.Value,
			FileDir:      y.Provider.Keyring.File.Path.Value,
			FilePassword: y.Provider.Keyring.File.Password.Value,
		}
		for _, b := range y.Provider.Keyring.Backends {
			p.Backends = append(p.Backends, b.Value)
		}
		provider = p
	}
	if y.Provider.AWS != nil {
		if provider != nil {
			return nil, errors.New("keychainconf: invalid provider config: more than one provider specified")
		}
		if y.Provider.AWS.Endpoint.Value == "" {
			return nil, errors.New("keychainconf: invalid aws provider: no endpoint specified")
		}
		if y.Provider.AWS.Region.Value == "" {
			return nil, errors.New("keychainconf: invalid aws provider: no region specified")
		}
		provider = &AWSProvider{
			Endpoint:     y.Provider.AWS.Endpoint.Value,
			Region:       y.Provider.AWS.Region.Value,
			AccessKey:    y.Provider.AWS.Credentials.AccessKey.Value,
			SecretKey:    y.Provider.AWS.Credentials.SecretKey.Value,
			SessionToken: y.Provider.AWS.Credentials.SessionToken.Value,
		}
	}
	if y.Provider.Vault != nil {
		if provider != nil {
			return nil, errors.New("keychainconf: invalid provider config: more than one provider specified")
		}
		v := y.Provider.Vault
		if v.Endpoint.Value == "" {
			return nil, errors.New("keychainconf: invalid vault provider: no endpoint specified")
		}
		if v.AppRole != nil && v.Kubernetes != nil {
			return nil, errors.New("keychainconf: invalid vault provider: more than one authentication method specified")
		}
		if v.AppRole == nil && v.Kubernetes == nil && v.Token.Value == "" {
			return nil, errors.New("keychainconf: invalid vault provider: no authentication method specified")
		}
		if v.Status.Ping.Value < 0 {
			return nil, fmt.Errorf("keychainconf: invalid vault provider: invalid status ping '%v'", v.Status.Ping.Value)
		}
		p := &VaultProvider{
			Endpoint:    v.Endpoint.Value,
			Namespace:   v.Namespace.Value,
			Engine:      v.Transit.Engine.Value,
			KeyName:     v.Transit.KeyName.Value,
			Token:       v.Token.Value,
			PrivateKey:  v.TLS.PrivateKey.Value,
			Certificate: v.TLS.Certificate.Value,
			CAPath:      v.TLS.CAPath.Value,
			StatusPing:  v.Status.Ping.Value,
		}
		if v.AppRole != nil {
			p.AppRole = &VaultAppRole{
				Engine:    v.AppRole.Engine.Value,
				Namespace: v.AppRole.Namespace.Value,
				ID:        v.AppRole.ID.Value,
				Secret:    v.AppRole.Secret.Value,
			}
		}
		if v.Kubernetes != nil {
			p.Kubernetes = &VaultKubernetes{
				Engine:    v.Kubernetes.Engine.Value,
				Namespace: v.Kubernetes.Namespace.Value,
				Role:      v.Kubernetes.Role.Value,
				JWT:       v.Kubernetes.JWT.Value,
			}
		}
		provider = p
	}

	if provider == nil {
		return nil, errors.New("keychainconf: no provider specified")
	}
	return provider, nil
}

type env[T any] struct {
	Var   string
	Value T
}

func (r env[T]) MarshalYAML() (any, error) {
	if env := strings.TrimSpace(r.Var); env != "" {
		switch p, s := strings.HasPrefix(env, "${"), strings.HasSuffix(env, "}"); {
		case p && s:
			return env, nil
		case !p && !s:
			return "${" + env + "}", nil
		default:
			return nil, fmt.Errorf("keychainconf: invalid env. variable reference '%s'", r.Var)
		}
	}
	return r.Value, nil
}

func (r *env[T]) UnmarshalYAML(node *yaml.Node) error {
	var env string
	if v := strings.TrimSpace(node.Value); strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		env = strings.TrimSpace(v[2 : len(v)-1])
		v, ok := os.LookupEnv(env)
		if !ok {
			return fmt.Errorf("keychainconf: referenced env. variable '%s' in line '%d' not found", env, node.Line)
		}
		node.Value = v
	}

	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	r.Var = env
	r.Value = v
	return nil
}
