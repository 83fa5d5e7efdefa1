package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/tunedex/internal/repositories"
	"github.com/desertthunder/tunedex/internal/services"
	"github.com/desertthunder/tunedex/internal/shared"
	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	httpClient := &http.Client{Timeout: config.MusicBrainz.Timeout()}
	musicbrainz := services.NewMusicBrainzService(config.MusicBrainz.BaseURL, config.MusicBrainz.UserAgent, httpClient)
	throttle := services.NewThrottle(config.MusicBrainz.MinInterval())
	service := services.NewThrottled(musicbrainz, throttle, config.MusicBrainz.MaxRetries)

	var cache tasks.LookupCacher
	if config.Cache.Enabled {
		if db, err := shared.NewDatabase(config.Cache.Path); err != nil {
			logger.Warn("lookup cache unavailable", "path", config.Cache.Path, "error", err)
		} else {
			defer db.Close()
			shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)
			if err := shared.RunMigrations(db); err != nil {
				logger.Warn("lookup cache migrations failed", "error", err)
			} else {
				cache = repositories.NewLookupCacheAdapter(repositories.NewLookupRepository(db))
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Service:    service,
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "tunedex",
		Usage:    "Enhance playlist exports with verified music metadata",
		Version:  "0.2.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
