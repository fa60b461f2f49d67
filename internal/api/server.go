package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"scraper/internal/config"
	"scraper/internal/domain"
	"scraper/internal/monitoring"
)

// BatchStore is the persistence surface the API needs.
type BatchStore interface {
	CreateBatch(ctx context.Context, req domain.ScrapeRequest) error
	DeleteBatch(ctx context.Context, batchID string) error
	GetBatch(ctx context.Context, batchID string) (*domain.BatchReport, error)
	Ping(ctx context.Context) error
}

// StatusCache is the quick-lookup surface for in-flight batches.
type StatusCache interface {
	BatchStatus(ctx context.Context, batchID string) (string, error)
	SetBatchStatus(ctx context.Context, batchID, status string) error
	Ping(ctx context.Context) error
}

// BatchQueue accepts batches for background processing.
type BatchQueue interface {
	Submit(req domain.ScrapeRequest) bool
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	queue      BatchQueue
	store      BatchStore
	cache      StatusCache
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, queue BatchQueue, store BatchStore, cache StatusCache, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		queue:   queue,
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
