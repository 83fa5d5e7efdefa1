// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// enhanceCommand handles the core enhancement run
func enhanceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "enhance",
		Aliases: []string{"run"},
		Usage:   "Enhance a raw titles CSV with verified track metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Raw titles CSV (requires a title column)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Enhanced CSV destination (defaults to output.path from config)",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Skip entries already recorded in the checkpoint",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output run stats as JSON",
			},
		},
		Action: r.Enhance,
	}
}

// sortCommand handles library sorting
func sortCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sort",
		Usage: "Sort an enhanced CSV by artist, album and track",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Enhanced CSV to sort",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Sorted CSV destination (defaults to sorting in place)",
			},
		},
		Action: r.Sort,
	}
}

// albumsCommand handles the studio discography pass
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Fetch studio discographies for every artist in an enhanced CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "library",
				Aliases:  []string{"l"},
				Usage:    "Enhanced CSV to collect artists from",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Albums CSV destination (defaults to albums_path from config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent artist fetches (max 10)",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Dispatch rate limit in artists per second",
			},
		},
		Action: r.Albums,
	}
}

// pipelineCommand chains enhance, sort and albums in one run
func pipelineCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "Run enhance, sort and optionally the albums pass in sequence",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Raw titles CSV (requires a title column)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Enhanced CSV destination (defaults to output.path from config)",
			},
			&cli.StringFlag{
				Name:  "sorted",
				Usage: "Sorted CSV destination (defaults to sorted_path from config)",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Skip entries already recorded in the checkpoint",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "albums",
				Usage: "Run the studio discography pass after enhancing",
			},
		},
		Action: r.PipelineRun,
	}
}

// cacheCommand handles lookup cache inspection and maintenance
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the lookup cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cached lookup counts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:  "clear",
				Usage: "Remove all cached lookups",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive enhancement runs.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for an enhancement run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Raw titles CSV (requires a title column)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Enhanced CSV destination (defaults to output.path from config)",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Skip entries already recorded in the checkpoint",
				Value: true,
			},
		},
		Action: r.TUI,
	}
}
