package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // DISPLAY_TIMEZONE in minimal containers

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/newsdesk/internal/article"
	"github.com/JonMunkholm/newsdesk/internal/config"
	"github.com/JonMunkholm/newsdesk/internal/feed"
	"github.com/JonMunkholm/newsdesk/internal/fetch"
	"github.com/JonMunkholm/newsdesk/internal/logging"
	"github.com/JonMunkholm/newsdesk/internal/poller"
	"github.com/JonMunkholm/newsdesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	format, err := fetch.ParseFormat(cfg.Feed.Format)
	if err != nil {
		logger.Error("invalid feed format", "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(fetch.Options{
		URL:         cfg.Feed.URL,
		Format:      format,
		Timeout:     cfg.Feed.FetchTimeout,
		MaxBodySize: cfg.Feed.MaxBodySize,
		UserAgent:   cfg.Feed.UserAgent,
	})

	decoder := feed.NewDecoder(feed.Dialect{
		Comma:     cfg.Feed.Comma(),
		Quote:     '"',
		TrimSpace: true,
	})

	p := poller.New(client, poller.Options{
		Interval: cfg.Feed.RefreshInterval,
		Decoder:  decoder,
		Logger:   logger,
	})

	loc := cfg.Display.Location()
	builder := article.NewBuilder(feed.NewNormalizer(loc))
	builder.SummaryLimit = cfg.Display.SummaryLimit
	builder.Logger = logger

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	server := web.NewServer(jobCtx, web.Options{
		Source:            p,
		Builder:           builder,
		Location:          loc,
		TrustedProxies:    cfg.Security.TrustedProxies,
		EnableCSP:         cfg.Security.EnableCSP,
		RequestTimeout:    cfg.Server.RequestTimeout,
		RateLimitEnabled:  cfg.Rate.Enabled,
		RequestsPerMinute: cfg.Rate.RequestsPerMinute,
		RefreshPerMinute:  cfg.Rate.RefreshLimit,
		Addr:              cfg.Server.Addr(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})

	p.Start(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		// Stop background jobs
		p.Stop()
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
