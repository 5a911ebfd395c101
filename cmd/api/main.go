package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"reliefd/internal/archive"
	"reliefd/internal/http/handlers"
	"reliefd/internal/http/httpapi"
	"reliefd/internal/infra"
	"reliefd/internal/infra/geoip"
	"reliefd/internal/ledger"
	"reliefd/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Event archive is optional; without DATABASE_URL the ledger runs with
	// in-memory state only.
	var arc *archive.Archive
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		arc = archive.New(infra.NewSQLRunner(pool, logger), logger, cfg.EventBuffer)
		go arc.Run(ctx)
		defer arc.Close()
	} else {
		logger.Warn().Msg("DATABASE_URL not set, event archive disabled")
	}

	opts := []ledger.Option{}
	if arc != nil {
		opts = append(opts, ledger.WithSink(arc))
	}
	led, err := ledger.New(cfg.OwnerIdentity, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize ledger")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(led, arc, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("relief ledger API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
