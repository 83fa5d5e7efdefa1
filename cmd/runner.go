package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunedex/internal/match"
	"github.com/desertthunder/tunedex/internal/parser"
	"github.com/desertthunder/tunedex/internal/services"
	"github.com/desertthunder/tunedex/internal/shared"
	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	service    services.MetadataService
	cache      tasks.LookupCacher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.EnhanceEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Service    services.MetadataService
	Cache      tasks.LookupCacher
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	filter := parser.Filter{
		Enabled:   opts.Config.Filter.Enabled,
		Threshold: opts.Config.Filter.LatinThreshold,
	}
	resolver := match.NewResolver(opts.Service, opts.Config.Matching.AcceptThreshold, opts.Config.Matching.BareQuery)
	expander := match.NewExpander(opts.Service, opts.Config.Matching.AcceptThreshold)
	engine := tasks.NewEnhanceEngine(filter, resolver, expander, opts.Cache, opts.Logger)

	return &Runner{
		config:     opts.Config,
		service:    opts.Service,
		cache:      opts.Cache,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     engine,
	}
}

// SetLogger swaps the Runner's logger and rebuilds the engine so both report
// to the same destination.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	filter := parser.Filter{
		Enabled:   r.config.Filter.Enabled,
		Threshold: r.config.Filter.LatinThreshold,
	}
	resolver := match.NewResolver(r.service, r.config.Matching.AcceptThreshold, r.config.Matching.BareQuery)
	expander := match.NewExpander(r.service, r.config.Matching.AcceptThreshold)
	r.engine = tasks.NewEnhanceEngine(filter, resolver, expander, r.cache, l)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, enhanceCommand, sortCommand, albumsCommand, pipelineCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
