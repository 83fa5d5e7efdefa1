package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tunedex/internal/repositories"
	"github.com/desertthunder/tunedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// openLookupRepo opens the cache database named by the config file at
// configPath, falling back to the Runner's config when the file is absent.
// The caller owns the returned database handle.
func (r *Runner) openLookupRepo(configPath string) (*repositories.LookupRepository, *sql.DB, error) {
	config := r.config
	if configPath != "" {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	db, err := shared.NewDatabase(config.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewLookupRepository(db), db, nil
}

// CacheStats reports how many lookups are cached, broken down by status.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openLookupRepo(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	total, err := repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count lookups: %w", err)
	}

	lookups, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list lookups: %w", err)
	}

	byStatus := map[string]int{}
	for _, lookup := range lookups {
		byStatus[lookup.Status().String()]++
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"total": total, "by_status": byStatus}, true)
	}

	r.writePlainHeader("Lookup Cache")
	r.writePlain("Cached lookups: %d\n", total)
	for status, count := range byStatus {
		r.writePlain("  %s: %d\n", status, count)
	}

	return nil
}

// CacheClear removes every cached lookup.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openLookupRepo(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := repo.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("lookup cache cleared", "removed", removed)
	r.writePlain("✓ Cleared %d cached lookups\n", removed)

	return nil
}
