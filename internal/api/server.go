package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"burza/internal/auth"
	"burza/internal/config"
	"burza/internal/export"
	"burza/internal/grid"
	"burza/internal/outbox"
	"burza/internal/reservation"
	"burza/internal/store"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking board over a JSON API. Public routes cover
// the grid view and the booking form; everything else sits behind admin
// basic auth.
type HTTPServer struct {
	cfg           *config.Config
	store         store.Store
	service       *reservation.Service
	editor        *grid.Editor
	exporter      *export.Exporter
	queue         *outbox.Queue
	authenticator auth.Authenticator
	logger        *zerolog.Logger
	server        *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	st store.Store,
	service *reservation.Service,
	editor *grid.Editor,
	exporter *export.Exporter,
	queue *outbox.Queue,
	authenticator auth.Authenticator,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:           cfg,
		store:         st,
		service:       service,
		editor:        editor,
		exporter:      exporter,
		queue:         queue,
		authenticator: authenticator,
		logger:        logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/tables", srv.handleListTables)
	mux.HandleFunc("GET /api/v1/tables/{id}", srv.handleGetTable)
	mux.HandleFunc("POST /api/v1/reservations", srv.handleSubmitReservation)
	mux.HandleFunc("POST /api/v1/auth/login", srv.handleLogin)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/v1/reservations", srv.handleListReservations)
	admin.HandleFunc("GET /api/v1/reservations/{id}", srv.handleGetReservation)
	admin.HandleFunc("POST /api/v1/reservations/{id}/approve", srv.handleApprove)
	admin.HandleFunc("POST /api/v1/reservations/{id}/reject", srv.handleReject)
	admin.HandleFunc("DELETE /api/v1/reservations/{id}", srv.handleDeleteReservation)
	admin.HandleFunc("DELETE /api/v1/reservations", srv.handleDeleteAllReservations)
	admin.HandleFunc("PUT /api/v1/tables/{id}", srv.handleUpdateTable)
	admin.HandleFunc("PATCH /api/v1/tables", srv.handleBulkUpdateTables)
	admin.HandleFunc("POST /api/v1/tables", srv.handleCreateTables)
	admin.HandleFunc("POST /api/v1/tables/reset", srv.handleResetTables)
	admin.HandleFunc("POST /api/v1/admin/grid/init", srv.handleInitGrid)
	admin.HandleFunc("DELETE /api/v1/admin/grid", srv.handleDeleteGrid)
	admin.HandleFunc("GET /api/v1/admin/grid/dump", srv.handleGridDump)
	admin.HandleFunc("GET /api/v1/admin/reservations/export", srv.handleExport)
	admin.HandleFunc("GET /api/v1/admin/notifications/deadletters", srv.handleDeadLetters)
	mux.Handle("/api/v1/", adminOnly(authenticator, admin))

	limiter := newRateLimiter(cfg.RateLimit)
	handler := requestIDMiddleware(loggingMiddleware(logger, limiter.wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler returns the composed handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
