// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package fileserver serves the files of one directory over HTTP.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/netdiag/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	indexFile         = "index.html"
)

// Server serves the files below its root directory.
// Paths are resolved within the root, they cannot escape it.
type Server struct {
	cfg     Config
	root    *os.Root
	metrics metrics
	// metricsHandler serves /metrics if set
	metricsHandler http.Handler
}

// New opens the root directory of cfg and returns a [Server] serving it.
// If metricsHandler is not nil it is served on /metrics.
func New(cfg Config, metricsHandler http.Handler) (*Server, error) {
	root, err := os.OpenRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open root directory: %w", err)
	}
	return &Server{
		cfg:            cfg,
		root:           root,
		metrics:        newMetrics(),
		metricsHandler: metricsHandler,
	}, nil
}

// GetCollectors returns the metric collectors of the server.
func (s *Server) GetCollectors() []prometheus.Collector {
	return s.metrics.GetCollectors()
}

// Handler returns the router of the server.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(ctx))
	r.Use(s.metrics.middleware)

	if s.metricsHandler != nil {
		r.Get("/metrics", s.metricsHandler.ServeHTTP)
	}
	r.Get("/*", s.serveFile)
	r.Head("/*", s.serveFile)
	return r
}

// Run serves HTTP on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.ListenAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress(), err)
	}
	return s.Serve(ctx, l)
}

// Serve serves HTTP on l until ctx is done. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	log := logger.FromContext(ctx).With("address", l.Addr().String(), "root", s.cfg.Root)
	defer func() { _ = s.root.Close() }()

	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Serving files")
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve files: %w", err)
	case <-ctx.Done():
		log.InfoContext(ctx, "Shutting down file server")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("failed to shutdown file server: %w", err)
		}
		return nil
	}
}

// serveFile writes the requested file. Directories are served by their index file.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	name := path.Clean("/" + chi.URLParam(r, "*"))[1:]
	if name == "" {
		name = "."
	}

	f, info, err := s.open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.DebugContext(ctx, "File not found", "file", name)
		} else {
			log.WarnContext(ctx, "Failed to open file", "file", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// open opens name below the root. Directories resolve to their index file.
func (s *Server) open(name string) (*os.File, fs.FileInfo, error) {
	f, err := s.root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if !info.IsDir() {
		return f, info, nil
	}
	_ = f.Close()
	if name == indexFile || path.Base(name) == indexFile {
		return nil, nil, fs.ErrNotExist
	}
	return s.open(path.Join(name, indexFile))
}
