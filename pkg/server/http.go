package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"taskforge-controlplane/pkg/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ProvideHTTPServer = fx.Module("http.server",
	fx.Provide(NewHttpServer),
	fx.Invoke(Run),
)

type Server struct {
	server   *http.Server
	listener net.Listener

	tls       bool
	certPath  string
	keyPath   string
	certMu    sync.RWMutex
	cert      *tls.Certificate
	stopWatch chan struct{}
}

// Addr reports the bound address once the server has started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

type Params struct {
	fx.In
	Config  *config.Config
	Handler http.Handler
}

func NewHttpServer(p Params) *Server {
	cfg := p.Config
	srv := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Addr),
			Handler:      p.Handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		tls:      cfg.TLS.Enable,
		certPath: cfg.TLS.CertPath,
		keyPath:  cfg.TLS.KeyPath,
	}

	if srv.tls {
		srv.server.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: srv.certificate,
		}
	}
	return srv
}

func (s *Server) certificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	s.certMu.RLock()
	defer s.certMu.RUnlock()
	if s.cert == nil {
		return nil, errors.New("no TLS certificate loaded")
	}
	return s.cert, nil
}

// loadCert swaps in the key pair from disk. A failed reload keeps serving
// the previous certificate.
func (s *Server) loadCert() error {
	cert, err := tls.LoadX509KeyPair(s.certPath, s.keyPath)
	if err != nil {
		return fmt.Errorf("load TLS key pair: %w", err)
	}
	s.certMu.Lock()
	s.cert = &cert
	s.certMu.Unlock()
	return nil
}

// watchCert reloads the key pair whenever a renewal rewrites either file,
// until stop is closed.
func (s *Server) watchCert(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	defer watcher.Close()
	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.loadCert(); err != nil {
				zap.L().Error("[HTTP] TLS certificate reload failed", zap.Error(err))
				continue
			}
			zap.L().Info("[HTTP] TLS certificate reloaded", zap.String("file", event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			zap.L().Error("[HTTP] certificate watcher error", zap.Error(err))
		}
	}
}

func (s *Server) startTLS() error {
	if err := s.loadCert(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create certificate watcher: %w", err)
	}
	for _, path := range []string{s.certPath, s.keyPath} {
		if err := watcher.Add(path); err != nil {
			zap.L().Warn("[HTTP] cannot watch certificate file", zap.String("file", path), zap.Error(err))
		}
	}

	s.stopWatch = make(chan struct{})
	go s.watchCert(watcher, s.stopWatch)
	return nil
}

func Run(lc fx.Lifecycle, srv *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if srv.tls {
				if err := srv.startTLS(); err != nil {
					return err
				}
			}

			ln, err := net.Listen("tcp", srv.server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", srv.server.Addr, err)
			}
			srv.listener = ln

			go func() {
				var err error
				if srv.tls {
					zap.L().Info("[HTTP] Starting HTTPS server", zap.String("addr", srv.Addr()))
					err = srv.server.ServeTLS(ln, "", "")
				} else {
					zap.L().Info("[HTTP] Starting HTTP server", zap.String("addr", srv.Addr()))
					err = srv.server.Serve(ln)
				}
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					zap.L().Error("[HTTP] server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			zap.L().Info("[HTTP] Shutting down server gracefully...")
			if srv.stopWatch != nil {
				close(srv.stopWatch)
			}
			return srv.server.Shutdown(ctx)
		},
	})
}
