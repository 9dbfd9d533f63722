package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/metrics"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
	"git.home.luguber.info/inful/redirgen/internal/urlpath"
)

// Server is the preview HTTP server. It serves the built output directory,
// answers known redirect sources with 302s resolved from the live index, and
// exposes Prometheus metrics on /metrics.
type Server struct {
	outputDir string
	basePath  string
	recorder  metrics.Recorder

	mu  sync.RWMutex
	idx *redirect.Index

	srv   *http.Server
	files http.Handler
	ln    net.Listener
}

// NewServer creates a preview server for outputDir. reg may carry additional
// collectors; the scrape endpoint serves whatever is registered on it.
func NewServer(outputDir, basePath string, port int, recorder metrics.Recorder, reg *prom.Registry) *Server {
	s := &Server{
		outputDir: outputDir,
		basePath:  basePath,
		recorder:  recorder,
		files:     http.FileServer(http.Dir(outputDir)),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	mux.HandleFunc("/", s.handle)

	s.srv = &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetIndex swaps in the redirect index from the latest successful build.
func (s *Server) SetIndex(idx *redirect.Index) {
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
}

func (s *Server) lookup(source string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return ""
	}
	target := s.idx.Lookup(source)
	if target == nil {
		return ""
	}
	return target.URLPath
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	// Requests arrive in whatever shape the browser sends; match against
	// the same normalized form the index is keyed by.
	source := urlpath.Normalize("/", r.URL.Path)
	if target := s.lookup(source); target != "" {
		s.recorder.IncRedirectServed()
		http.Redirect(w, r, urlpath.JoinBase(s.basePath, target), http.StatusFound)
		return
	}
	s.files.ServeHTTP(w, r)
}

// Start begins listening. It returns once the listener is accepting.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("preview server listen: %w", err)
	}
	s.ln = ln
	slog.Info("Preview server listening", logfields.Port(ln.Addr().(*net.TCPAddr).Port))

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Preview server failed", logfields.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
