// cmd/gravelmatch-devserver/main.go
// In-memory GravelMatch backend for local development and demos

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imadgeboyega/gravelmatch/internal/common/logger"
	"github.com/imadgeboyega/gravelmatch/internal/config"
	"github.com/imadgeboyega/gravelmatch/internal/devserver"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
)

func main() {
	log, closer, _ := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL"), Component: logger.ComponentDevServer})
	defer closer.Close()

	log.Info().Msg("========================================")
	log.Info().Msg("🚀 Starting GravelMatch dev server")
	log.Info().Msg("========================================")

	// 1. Load environment variables
	log.Info().Msg("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("⚠️  No .env file found, using environment variables")
	} else {
		log.Info().Msg("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Info().Msg("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("❌ JWT_SECRET is empty")
	}
	log.Info().Str("port", cfg.DevServerPort).Msg("✅ Configuration loaded")

	// 3. Build router and seed fixtures
	log.Info().Msg("🌱 Step 3: Seeding demo riders...")
	seed := devserver.DefaultSeed()
	router, _, err := devserver.NewRouter(devserver.Options{
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
		BCryptCost:  cfg.BCryptCost,
		Seed:        seed,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to build router")
	}
	log.Info().
		Int("riders", len(seed)).
		Str("demo_email", devserver.DemoEmail).
		Str("demo_password", devserver.DemoPassword).
		Msg("✅ Demo data ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Metrics side listener (optional)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	// 5. Serve until interrupted
	log.Info().Msg("🌐 Step 5: Starting HTTP server...")
	if err := devserver.ListenAndServe(ctx, cfg.DevServerPort, router, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Server error")
	}
	log.Info().Msg("👋 Server stopped gracefully")
}
