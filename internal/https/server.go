// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package https

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/minio/keychain/internal/fips"
)

// Config is a structure containing configuration
// fields for an HTTP(S) server.
type Config struct {
	// Addr specifies an optional TCP address for the
	// server to listen on in the form "host:port".
	// If empty, "127.0.0.1:7373" is used.
	Addr string

	// Handler handles incoming requests.
	Handler http.Handler

	// TLSConfig provides the TLS configuration.
	// If nil, the server accepts plain HTTP
	// connections.
	TLSConfig *tls.Config

	// ErrorLog is the logger for connection errors.
	// If nil, slog.Default is used.
	ErrorLog *slog.Logger
}

// DefaultAddr is the address a Server listens
// on if no address is specified.
const DefaultAddr = "127.0.0.1:7373"

// NewServer returns a new server from the given
// config.
func NewServer(config *Config) *Server {
	srv := &Server{
		addr:      config.Addr,
		handler:   config.Handler,
		tlsConfig: config.TLSConfig.Clone(),
		log:       config.ErrorLog,
	}
	if srv.addr == "" {
		srv.addr = DefaultAddr
	}
	if srv.handler == nil {
		srv.handler = http.NewServeMux()
	}
	if srv.log == nil {
		srv.log = slog.Default()
	}
	return srv
}

// Server is an HTTP(S) server.
type Server struct {
	addr      string
	handler   http.Handler
	tlsConfig *tls.Config
	log       *slog.Logger
}

// Addr returns the server's listen address.
func (s *Server) Addr() string { return s.addr }

// Start starts the server by listening on the
// Server's address.
//
// Start blocks until the given ctx.Done() channel returns.
// It always returns a non-nil error. Once ctx.Done()
// returns, the Server gets closed and, if gracefully
// shutdown, Start returns http.ErrServerClosed.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on the listener until
// ctx.Done() returns. It closes the listener. See
// Start for the returned error.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.tlsConfig != nil {
		config := s.tlsConfig.Clone()
		config.MinVersion = tls.VersionTLS12
		config.CipherSuites = fips.TLSCiphers()
		config.CurvePreferences = fips.TLSCurveIDs()
		config.NextProtos = []string{"h2", "http/1.1"} // Prefer HTTP/2 but also support HTTP/1.1
		listener = tls.NewListener(listener, config)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0 * time.Second, // explicitly set no write timeout - see API timeouts.
		IdleTimeout:       90 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelDebug),
	}
	srvCh := make(chan error, 1)
	go func() { srvCh <- srv.Serve(listener) }()

	select {
	case err := <-srvCh:
		return err
	case <-ctx.Done():
		graceCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		err := srv.Shutdown(graceCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			err = srv.Close()
		}
		if err == nil {
			err = http.ErrServerClosed
		}
		return err
	}
}
