package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jacoelho/modelgraph"
)

// TransformOptions holds the flags of the transform command.
type TransformOptions struct {
	Config string
}

// NewTransformCommand returns the transform command.
func NewTransformCommand(cli *CLI) *cobra.Command {
	opts := TransformOptions{}
	cmd := &cobra.Command{
		Use:   "transform <model.xml>",
		Short: "Run a transformation pipeline over a model",
		Long: Highlight("modelxform transform") + "\n\n" +
			"Loads a model and runs the pipeline described by the YAML\n" +
			"configuration file over the selected schemas.\n",
		Example: "  modelxform transform model.xml --config pipeline.yaml --schema Roads",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := modelgraph.LoadPipeline(os.DirFS(filepath.Dir(opts.Config)), filepath.Base(opts.Config))
			if err != nil {
				return err
			}
			doc, err := cli.load(args[0])
			if err != nil {
				return err
			}
			if err := doc.Transform(p); err != nil {
				return fmt.Errorf("transform %s: %w", args[0], err)
			}
			cli.summary(args[0], doc)
			return cli.report(doc)
		},
	}
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "pipeline configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
