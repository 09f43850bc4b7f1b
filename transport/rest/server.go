package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
)

const shutdownTimeout = 5 * time.Second

type sessionService interface {
	CreateSession(ctx context.Context) (*service.View, error)
	GetSession(ctx context.Context, id string) (*service.View, error)
	ApplyMove(ctx context.Context, id string, cell int) (*service.View, error)
	JumpTo(ctx context.Context, id string, move int) (*service.View, error)
	Click(ctx context.Context, id string) (*service.View, error)
	DeleteSession(ctx context.Context, id string) error
}

type Server struct {
	logger   *slog.Logger
	sessions sessionService
	router   *mux.Router
}

func New(logger *slog.Logger, sessions sessionService) *Server {
	server := &Server{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
		router:   mux.NewRouter(),
	}

	server.router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	server.router.HandleFunc("/sessions", server.handleCreateSession).Methods(http.MethodPost)
	server.router.HandleFunc("/sessions/{id}", server.handleGetSession).Methods(http.MethodGet)
	server.router.HandleFunc("/sessions/{id}", server.handleDeleteSession).Methods(http.MethodDelete)
	server.router.HandleFunc("/sessions/{id}/moves", server.handleMove).Methods(http.MethodPost)
	server.router.HandleFunc("/sessions/{id}/jump", server.handleJump).Methods(http.MethodPost)
	server.router.HandleFunc("/sessions/{id}/counter", server.handleClick).Methods(http.MethodPost)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
