package command

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/jacoelho/modelgraph"
)

// NewUnitsCommand returns the units command.
func NewUnitsCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the transformation units, their rules and parameters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, u := range modelgraph.Units() {
				_, _ = fmt.Fprintln(cli.Out, Highlight("%s", u.Name))
				for _, r := range u.Rules {
					_, _ = fmt.Fprintf(cli.Out, "  rule  %s\n", r)
				}
				for _, p := range u.Params {
					def := ""
					if p.Default != "" {
						def = fmt.Sprintf(" (default %q)", p.Default)
					}
					_, _ = fmt.Fprintf(cli.Out, "  param %s%s: %s\n", p.Name, def, p.Doc)
				}
			}
		},
	}
}

// version is set at build time with -ldflags "-X ...command.version=...".
var version = ""

// NewVersionCommand returns the version command.
func NewVersionCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cli.Out, buildVersion())
		},
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
