// Package command implements the modelxform command line.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	mgerrors "github.com/jacoelho/modelgraph/errors"
)

// CLI carries the global options and output streams shared by commands.
type CLI struct {
	Out io.Writer
	Err io.Writer

	Schemas     []string
	MinSeverity string
	FailOn      string
	Verbosity   int
	NoColor     bool

	logger logr.Logger
	sync   func()
}

// errFailed reports that diagnostics reached the --fail-on severity. The
// diagnostics were already printed.
var errFailed = errors.New("diagnostics reached the failure threshold")

// NewRootCommand returns the root command with every subcommand attached.
func NewRootCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelxform",
		Short: "Load, transform and compare conceptual UML models",
		Long: Highlight("Usage: modelxform [global options] <subcommand> [args]") + "\n\n" +
			"modelxform loads conceptual models from their XML serialization,\n" +
			"runs rule-gated transformation pipelines over them and compares\n" +
			"schema snapshots.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.configure()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.sync != nil {
				cli.sync()
			}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&cli.Schemas, "schema", nil, "application schemas to process (default: every schema)")
	flags.StringVar(&cli.MinSeverity, "min-severity", "warning", "lowest diagnostic severity printed (debug | info | warning | error)")
	flags.StringVar(&cli.FailOn, "fail-on", "", "exit with status 1 when a diagnostic reaches this severity")
	flags.CountVarP(&cli.Verbosity, "verbose", "v", "stream diagnostics as structured logs; repeat for more detail")
	flags.BoolVar(&cli.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewLoadCommand(cli),
		NewTransformCommand(cli),
		NewDiffCommand(cli),
		NewUnitsCommand(cli),
		NewVersionCommand(cli),
	)
	return cmd
}

// Execute runs the command line and returns the process exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	cli := &CLI{Out: stdout, Err: stderr}
	cmd := NewRootCommand(cli)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			_, _ = fmt.Fprintf(stderr, "%s %v\n", color.RedString("error:"), err)
		}
		return 1
	}
	return 0
}

func (cli *CLI) configure() error {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || cli.NoColor {
		color.NoColor = true
	}
	if _, err := parseSeverity(cli.MinSeverity); err != nil {
		return err
	}
	if cli.FailOn != "" {
		if _, err := parseSeverity(cli.FailOn); err != nil {
			return err
		}
	}
	cli.logger, cli.sync = newLogger(cli.Err, cli.Verbosity)
	return nil
}

// newLogger returns a console logger enabled up to logr verbosity
// verbosity-1. Without -v diagnostics are only printed as a report.
func newLogger(w io.Writer, verbosity int) (logr.Logger, func()) {
	if verbosity <= 0 {
		return logr.Discard(), nil
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.Level(-(verbosity - 1)))
	zl := zap.New(core)
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }
}

// check applies --fail-on to the recorded diagnostics.
func (cli *CLI) check(diags mgerrors.DiagnosticList) error {
	if cli.FailOn == "" {
		return nil
	}
	threshold, err := parseSeverity(cli.FailOn)
	if err != nil {
		return err
	}
	if len(diags.Filter(threshold)) > 0 {
		return errFailed
	}
	return nil
}

func parseSeverity(s string) (mgerrors.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return mgerrors.SeverityDebug, nil
	case "info":
		return mgerrors.SeverityInfo, nil
	case "warning", "warn":
		return mgerrors.SeverityWarning, nil
	case "error":
		return mgerrors.SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// Highlight renders text in the heading color.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}
