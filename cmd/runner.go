package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cratecheck/internal/scanner"
	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/desertthunder/cratecheck/internal/tasks"
	"github.com/desertthunder/cratecheck/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	palette *ui.Palette
	reader  scanner.TagReader
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config makes every command load its configuration from the --config and --env files.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	Palette   *ui.Palette
	TagReader scanner.TagReader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		palette: opts.Palette,
		reader:  opts.TagReader,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, scanCommand, reconcileCommand, mismatchesCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns a copy of the injected config, or reads the --config file (defaults when it
// does not exist) and applies the --env overrides. The configured log level is applied.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	var config *shared.Config
	if r.config != nil {
		copied := *r.config
		config = &copied
	} else {
		configPath := cmd.String("config")
		if _, err := os.Stat(configPath); err == nil {
			if config, err = shared.LoadConfig(configPath); err != nil {
				return nil, err
			}
			r.logger.Debug("loaded config", "path", configPath)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", configPath)
			config = shared.DefaultConfig()
		}

		if err := shared.LoadEnv(config, cmd.String("env")); err != nil {
			return nil, err
		}
	}

	if err := shared.ApplyLogLevel(r.logger, config.Log.Level); err != nil {
		return nil, err
	}
	return config, nil
}

// prepare loads the config, applies the pipeline flag overrides and validates the result.
func (r *Runner) prepare(cmd *cli.Command) (*shared.Config, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("root") {
		config.Library.Root = cmd.String("root")
	}
	if cmd.IsSet("crate") {
		config.Library.Crate = cmd.String("crate")
	}
	if cmd.IsSet("streaming") {
		config.Library.StreamingCSV = cmd.String("streaming")
	}
	if cmd.IsSet("output") {
		config.Output.Dir = cmd.String("output")
	}
	if cmd.IsSet("threshold") {
		config.Matcher.Threshold = cmd.Int("threshold")
	}
	if cmd.IsSet("workers") {
		config.Matcher.Workers = cmd.Int("workers")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (r *Runner) engine(cmd *cli.Command, config *shared.Config) *tasks.ReconcileEngine {
	return tasks.NewReconcileEngine(config, r.logger).WithTagReader(r.reader).WithQuiet(cmd.Bool("quiet"))
}

// progress starts printing updates; the returned func closes the channel and waits for
// the last line to be written.
func (r *Runner) progress(cmd *cli.Command) (chan<- tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 100)
	done := ui.PrintProgress(r.output, progressCh, ui.ProgressOptions{Palette: r.palette, Quiet: cmd.Bool("quiet")})
	return progressCh, func() {
		close(progressCh)
		<-done
	}
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
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
