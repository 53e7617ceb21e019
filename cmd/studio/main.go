package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fasion-image-generator-project/FashionFusion/internal/generation"
	"github.com/fasion-image-generator-project/FashionFusion/internal/history"
	"github.com/fasion-image-generator-project/FashionFusion/internal/http/handlers"
	httpapi "github.com/fasion-image-generator-project/FashionFusion/internal/http/httpapi"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra/geoip"
	"github.com/fasion-image-generator-project/FashionFusion/internal/messages"
	"github.com/fasion-image-generator-project/FashionFusion/internal/metrics"
	"github.com/fasion-image-generator-project/FashionFusion/internal/middleware"
	"github.com/fasion-image-generator-project/FashionFusion/internal/preferences"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
	"github.com/fasion-image-generator-project/FashionFusion/internal/storage"
	"github.com/fasion-image-generator-project/FashionFusion/internal/stylemix"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "studio")
	rec := metrics.New()

	ctx := context.Background()
	kv, closeStore, err := storage.Open(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer closeStore()
	adapter := storage.NewAdapter(kv)

	hist := history.NewManager(adapter, history.Options{Limit: cfg.HistoryLimit, Logger: &logger, Metrics: rec})
	if err := hist.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load history")
	}
	theme := preferences.NewTheme(adapter, cfg.DefaultTheme)
	if err := theme.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("theme unavailable, using default")
	}
	presets := preferences.NewPresets(adapter)
	if err := presets.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("custom presets unavailable")
	}

	client := remote.New(cfg.Remote, &logger, rec)
	if cfg.Remote.UseDummyData {
		logger.Warn().Dur("delay", cfg.Remote.DummyDelay).Msg("serving dummy images")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	locale := messages.Match(cfg.AppLocale)
	sessions := generation.NewSessions(func() *generation.Machine {
		return generation.NewMachine(client, generation.Options{
			MaxPromptLength: cfg.MaxPromptLength,
			Locale:          locale,
			History:         hist,
			Logger:          &logger,
			Metrics:         rec,
		})
	})

	app := &handlers.App{
		Sessions:  sessions,
		History:   hist,
		Theme:     theme,
		Presets:   presets,
		StyleMix:  stylemix.NewRunner(client, &logger),
		Remote:    client,
		Metrics:   rec,
		Logger:    &logger,
		MaxUpload: cfg.MaxUploadBytes,
	}

	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Locale:          cfg.AppLocale,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   lookup,
	})
	server := infra.NewHTTPServer(cfg, router, &logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Idle sessions are dropped so abandoned tabs do not pin images in memory.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, sessions, cfg.SessionIdleTimeout, &logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Int("history", hist.Len()).Msg("server stopped")
}

func sweepSessions(ctx context.Context, sessions *generation.Sessions, maxIdle time.Duration, logger *infra.Logger) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(maxIdle); n > 0 {
				logger.Debug().Int("removed", n).Int("active", sessions.Len()).Msg("swept idle sessions")
			}
		}
	}
}
