package command

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/modelgraph"
)

// DiffOptions holds the flags of the diff command.
type DiffOptions struct {
	Kinds []string
}

// NewDiffCommand returns the diff command.
func NewDiffCommand(cli *CLI) *cobra.Command {
	opts := DiffOptions{}
	cmd := &cobra.Command{
		Use:   "diff <reference.xml> <current.xml>",
		Short: "Compare the schemas of two models",
		Long: Highlight("modelxform diff") + "\n\n" +
			"Compares every selected schema of the reference model with the\n" +
			"schema of the same name in the current model. Schema version\n" +
			"changes are always reported.\n",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := modelgraph.ParseDiffKinds(opts.Kinds...)
			if err != nil {
				return err
			}
			ref, err := cli.load(args[0])
			if err != nil {
				return err
			}
			cur, err := cli.load(args[1])
			if err != nil {
				return err
			}
			printDifferences(cli.Out, cur.Diff(ref, kinds...))
			if err := cli.report(ref); err != nil {
				return err
			}
			return cli.report(cur)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Kinds, "kinds", nil, "difference kinds to report, such as NAME,DOCUMENTATION (default: all)")
	return cmd
}
