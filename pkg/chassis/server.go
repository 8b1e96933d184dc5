// Package chassis runs the showroom HTTP handler on one port.
//
// Without TLS it is a plain HTTP/1.1 server. With TLS it listens on:
//   - TCP -> HTTP/1.1 + HTTP/2
//   - UDP -> HTTP/3 over QUIC (same handler), when HTTP3 is set
//
// When HTTP/3 runs, TCP responses include an Alt-Svc header advertising it
// so clients that support it can upgrade transparently.
//
// With TLS and no cert files, a self-signed ECDSA P-256 cert is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

const (
	readHeaderTimeout = 10 * time.Second
	quicIdleTimeout   = 60 * time.Second
	quicKeepAlive     = 20 * time.Second
)

// Server is the chassis around the showroom handler.
type Server struct {
	addr      string
	logger    *slog.Logger
	tlsCfg    *tls.Config
	http3     bool
	handler   http.Handler
	h3Server  *http3.Server
	tcpServer *http.Server
	quicLn    *quic.EarlyListener
	boundAddr net.Addr
	ready     chan struct{}
	mu        sync.Mutex
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr     string       // Listen address (e.g. ":8420"), TCP and UDP share it
	TLS      bool         // serve TLS on TCP
	CertFile string       // production cert path, empty = self-signed
	KeyFile  string       // production key path
	HTTP3    bool         // also serve HTTP/3 on UDP, requires TLS
	Handler  http.Handler // API router
	Logger   *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}
	if cfg.HTTP3 && !cfg.TLS {
		return nil, errors.New("chassis: http3 requires tls")
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		http3:   cfg.HTTP3,
		handler: cfg.Handler,
		ready:   make(chan struct{}),
	}

	if cfg.TLS {
		var err error
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			s.tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
			cfg.Logger.Info("TLS: production certs loaded")
		} else {
			s.tlsCfg, err = DevelopmentTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Info("TLS: self-signed dev cert generated")
		}
	}

	return s, nil
}

// securityHeaders wraps an http.Handler and adds standard security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		next.ServeHTTP(w, r)
	})
}

// altSvcMiddleware wraps an http.Handler and adds Alt-Svc header
// to advertise HTTP/3 availability on the same port.
func altSvcMiddleware(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "8420"
	}
	altSvc := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", altSvc)
		next.ServeHTTP(w, r)
	})
}

// Handler returns the handler as served on TCP, with its middleware.
func (s *Server) Handler() http.Handler {
	h := s.handler
	if s.http3 {
		h = altSvcMiddleware(s.addr, h)
	}
	return securityHeaders(h)
}

// Addr returns the bound TCP address once Start is listening, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// Ready is closed once the TCP listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Start launches the listeners and blocks until ctx is done or a listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()

	handler := s.Handler()
	s.tcpServer = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	// --- TCP: HTTP/1.1 (+ HTTP/2 with TLS) ---
	tcpLn, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("TCP listen: %w", err)
	}
	proto := "HTTP/1.1"
	if s.tlsCfg != nil {
		tcpTLS := s.tlsCfg.Clone()
		tcpTLS.NextProtos = []string{"h2", "http/1.1"}
		s.tcpServer.TLSConfig = tcpTLS
		tcpLn = tls.NewListener(tcpLn, tcpTLS)
		proto = "HTTP/1.1+HTTP/2 (TLS)"
	}
	s.boundAddr = tcpLn.Addr()

	// --- UDP: HTTP/3 ---
	if s.http3 {
		qCfg := &quic.Config{
			MaxStreamReceiveWindow:     10 * 1024 * 1024,
			MaxConnectionReceiveWindow: 50 * 1024 * 1024,
			MaxIdleTimeout:             quicIdleTimeout,
			KeepAlivePeriod:            quicKeepAlive,
		}
		s.h3Server = &http3.Server{Handler: securityHeaders(s.handler), QUICConfig: qCfg}
		ln, err := quic.ListenAddrEarly(s.addr, http3.ConfigureTLSConfig(s.tlsCfg.Clone()), qCfg)
		if err != nil {
			tcpLn.Close()
			s.mu.Unlock()
			return fmt.Errorf("QUIC listen: %w", err)
		}
		s.quicLn = ln
	}

	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("chassis started", "addr", tcpLn.Addr().String(), "tcp", proto, "http3", s.http3)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcpServer.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	if s.quicLn != nil {
		go func() {
			if err := s.h3Server.ServeListener(s.quicLn); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
				errCh <- fmt.Errorf("HTTP/3: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the listeners.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("chassis stopping")

	var firstErr error
	if s.tcpServer != nil {
		if err := s.tcpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.h3Server != nil {
		if err := s.h3Server.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.quicLn != nil {
		if err := s.quicLn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("chassis stopped")
	return firstErr
}
