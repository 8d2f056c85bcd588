// internal/devserver/server.go
// Development backend implementing the GravelMatch API in memory.
// The matching rule is a fixture: seeded riders flagged LikesBack match
// on the first like.

package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Options struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BCryptCost  int
	Seed        []SeedRider
}

// NewRouter builds the API router over a fresh store
func NewRouter(opts Options, log zerolog.Logger) (http.Handler, *Store, error) {
	if opts.JWTSecret == "" {
		return nil, nil, errors.New("JWT secret is required")
	}
	if opts.TokenExpiry <= 0 {
		opts.TokenExpiry = 24 * time.Hour
	}

	store := NewStore(opts.BCryptCost)
	if err := store.Seed(opts.Seed); err != nil {
		return nil, nil, err
	}

	handler := NewHandler(store, opts.JWTSecret, opts.TokenExpiry, log)
	authMiddleware := NewMiddleware(store, opts.JWTSecret)

	router := mux.NewRouter()
	RegisterRoutes(router, handler, authMiddleware)
	router.Use(loggingMiddleware(log))

	return router, store, nil
}

// ListenAndServe serves handler on port until ctx is cancelled
func ListenAndServe(ctx context.Context, port string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("dev server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
