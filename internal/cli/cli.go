package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/specialistvlad/flowgrid/internal/app"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the command line in args. Usage problems come back as
// *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	slog.Debug("CLI parser started.")
	root := NewRootCommand(outW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything a command did not return was raised by cobra while parsing.
	var cmdErr commandError
	if !errors.As(err, &cmdErr) {
		return usageError(err)
	}
	return cmdErr.err
}

// commandError marks errors returned from a command's RunE.
type commandError struct{ err error }

func (e commandError) Error() string { return e.err.Error() }
func (e commandError) Unwrap() error { return e.err }

// NewRootCommand builds the flowgrid command tree writing to outW.
func NewRootCommand(outW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "flowgrid",
		Short: "Run visual node programs that steer an agent on a grid",
		Long: `Flowgrid executes node graphs written in HCL. Flow edges decide which
node runs next, data edges carry values between nodes, and world nodes
move an agent around a walled grid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	var gf globalFlags
	gf.bind(root)

	root.AddCommand(newRunCommand(&gf), newValidateCommand(&gf), newFmtCommand(&gf))
	return root
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logFormat string
	logLevel  string
}

func (g *globalFlags) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
}

// newApp validates cfg and builds the app for cmd.
func newApp(cmd *cobra.Command, gf *globalFlags, cfg app.Config) (*app.App, error) {
	cfg.LogFormat = gf.logFormat
	cfg.LogLevel = gf.logLevel
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parameter validation complete.", "config", validated)
	return app.NewApp(cmd.OutOrStdout(), validated), nil
}

func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				return err
			}
			return commandError{err: err}
		}
		return nil
	}
}

func newRunCommand(gf *globalFlags) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "run [flags] PROGRAM_PATH...",
		Short: "Run a program to completion and print a summary",
		Args:  programArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			cfg.ProgramPaths = args
			a, err := newApp(cmd, gf, cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.LevelPath, "level", "l", "", "Path to a YAML level file. Defaults to the built-in level.")
	f.BoolVarP(&cfg.Play, "play", "p", false, "Play step by step, printing console output and the grid as it goes.")
	f.DurationVar(&cfg.PlayInterval, "interval", 0, "Delay between steps. Defaults to 500ms with --play.")
	f.IntVar(&cfg.MaxSteps, "max-steps", engine.DefaultMaxSteps, "Abort the run after this many steps.")
	f.BoolVar(&cfg.Debug, "debug", false, "Record engine debug lines in the console.")
	f.StringVar(&cfg.ReportFormat, "report", "table", "Summary format. Options: 'table' or 'markdown'.")
	f.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	f.StringVar(&cfg.VisualizerURL, "visualizer-url", "", "Socket.IO server that receives step events, e.g. http://localhost:3000.")
	f.StringVar(&cfg.VisualizerNamespace, "visualizer-namespace", "/", "Socket.IO namespace for step events.")
	f.BoolVar(&cfg.VisualizerInsecure, "visualizer-insecure", false, "Skip TLS certificate verification for the visualizer.")
	return cmd
}

func newValidateCommand(gf *globalFlags) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "validate [flags] PROGRAM_PATH...",
		Short: "Check that a program can run without running it",
		Args:  programArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			cfg.ProgramPaths = args
			a, err := newApp(cmd, gf, cfg)
			if err != nil {
				return err
			}
			return a.Validate(cmd.Context())
		}),
	}
	cmd.Flags().StringVarP(&cfg.LevelPath, "level", "l", "", "Path to a YAML level file to check as well.")
	return cmd
}

func newFmtCommand(gf *globalFlags) *cobra.Command {
	var opts app.FmtOptions
	cmd := &cobra.Command{
		Use:   "fmt [flags] PROGRAM_PATH...",
		Short: "Format program files",
		Args:  programArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, gf, app.Config{ProgramPaths: args})
			if err != nil {
				return err
			}
			return a.Fmt(cmd.Context(), opts)
		}),
	}
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Rewrite files in place instead of printing them.")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "Re-encode files from the decoded graph. Drops comments.")
	return cmd
}

func programArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError(errors.New("requires at least one program path"))
	}
	return nil
}
