package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"proc-lab/domain"
	"proc-lab/observability"
	"proc-lab/services"
)

// Server is the REST surface over the core services. It owns status-code
// mapping and JSON framing; all semantics live in the services.
type Server struct {
	log        *slog.Logger
	processes  services.IProcessService
	rebalancer services.IRebalancerService
	stats      services.IStatsService
	journal    HistoryReader
	monitoring *observability.MonitoringManager
	httpServer *http.Server
}

// HistoryReader is the part of the transition journal the API reads.
type HistoryReader interface {
	History(processID string) ([]domain.TransitionEvent, error)
}

func NewServer(
	addr string,
	log *slog.Logger,
	processes services.IProcessService,
	rebalancer services.IRebalancerService,
	stats services.IStatsService,
	journal HistoryReader,
	monitoring *observability.MonitoringManager,
) *Server {
	s := &Server{
		log:        log,
		processes:  processes,
		rebalancer: rebalancer,
		stats:      stats,
		journal:    journal,
		monitoring: monitoring,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /processes", s.handleCreate)
	mux.HandleFunc("GET /processes/{id}", s.handleGet)
	mux.HandleFunc("DELETE /processes/{id}", s.handleDelete)
	mux.HandleFunc("GET /processes/{id}/resources", s.handleResources)
	mux.HandleFunc("POST /admin/processes/{id}/update-usage", s.handleUpdateUsage)
	mux.HandleFunc("POST /admin/processes/{id}/evaluate", s.handleEvaluate)
	mux.HandleFunc("DELETE /admin/processes/{id}/purge", s.handlePurge)
	mux.HandleFunc("GET /admin/processes/{id}/transitions", s.handleTransitions)
	mux.HandleFunc("POST /admin/rebalance", s.handleRebalance)
	mux.HandleFunc("GET /admin/stats", s.handleStats)
	mux.HandleFunc("GET /admin/monitoring", s.handleMonitoring)
	return mux
}

// Run starts the listener and shuts it down when ctx is canceled. The server
// runs under the supervisor like any other worker.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info("HTTP API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errChan:
		return err
	}
}
