// cmd/gravelmatch/main.go
// Terminal client entry point. Wires the engine components and hands the
// terminal to the UI; logs go to LOG_FILE.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/imadgeboyega/gravelmatch/internal/common/logger"
	"github.com/imadgeboyega/gravelmatch/internal/config"
	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/session"
	"github.com/imadgeboyega/gravelmatch/internal/tips"
	"github.com/imadgeboyega/gravelmatch/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// 3. Logger. The UI owns the terminal, so everything goes to the file.
	log, closer, err := logger.New(logger.Options{
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		Component: logger.ComponentClient,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().Msg("🚀 Starting GravelMatch")
	if envErr != nil {
		log.Debug().Err(envErr).Msg("⚠️  No .env file found, using environment variables")
	}
	log.Info().
		Str("api", cfg.APIBaseURL).
		Dur("poll_interval", cfg.NotificationPollInterval).
		Msg("✅ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Session, restored from the token file when possible
	log.Info().Msg("🔐 Restoring session...")
	if err := os.MkdirAll(filepath.Dir(cfg.TokenFile), 0o700); err != nil {
		log.Warn().Err(err).Msg("cannot create token directory")
	}
	sess := session.New(cfg.APIBaseURL, cfg.RequestTimeout, session.NewFileTokenStore(cfg.TokenFile), log)
	if err := sess.Restore(ctx); err != nil {
		log.Info().Err(err).Msg("⚠️  No usable stored session, login required")
	} else {
		log.Info().Str("email", sess.Email()).Msg("✅ Session restored")
	}

	// 5. Metrics side listener (optional)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	// 6. Engine components
	log.Info().Msg("🧩 Initializing components...")
	filters := discovery.NewFilterStore()
	discoveryRepo := discovery.NewRepository(sess)
	queue := discovery.NewCandidateQueue(discoveryRepo, log)
	queue.Bind(filters)
	engine := discovery.NewSwipeEngine(queue, discoveryRepo, log)

	matchService := matches.NewService(sess)
	tipService := tips.NewService(sess, log)
	transcript := messaging.NewTranscript(messaging.NewRepository(sess), matchService, tipService, cfg.ChatDebounce, log)

	coordinator := notification.NewCoordinator(notification.NewRepository(sess), sess, notification.Options{
		PollInterval: cfg.NotificationPollInterval,
		PageSize:     cfg.NotificationPageSize,
	}, log)
	defer coordinator.Stop()
	defer transcript.Close()

	// 7. Hand over to the UI
	model := tui.New(ctx, tui.Deps{
		Session:       sess,
		Filters:       filters,
		Queue:         queue,
		Engine:        engine,
		Matches:       matchService,
		Notifications: coordinator,
		Transcript:    transcript,
		Log:           log,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ui: %w", err)
	}

	log.Info().Msg("👋 GravelMatch stopped")
	return nil
}
