package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/vidpoint/vidpoint/internal/billing"
	"github.com/vidpoint/vidpoint/internal/jobs"
)

type Server struct {
	tracker *jobs.Tracker
	queue   *jobs.Queue
	gate    billing.Gate

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithBillingGate(gate billing.Gate) Option {
	return func(s *Server) {
		s.gate = gate
	}
}

func NewServer(tracker *jobs.Tracker, queue *jobs.Queue, opts ...Option) *Server {
	s := &Server{
		tracker: tracker,
		queue:   queue,
		gate:    billing.AllowAll{},
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/process", s.handleProcess)
	s.mux.HandleFunc("/api/status/", s.handleStatus)
	s.mux.HandleFunc("/api/healthz", s.handleHealth)
}
