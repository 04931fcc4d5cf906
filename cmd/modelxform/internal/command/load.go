package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoelho/modelgraph"
)

// NewLoadCommand returns the load command.
func NewLoadCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "load <model.xml>",
		Short: "Load a model and report its diagnostics",
		Long: Highlight("modelxform load") + "\n\n" +
			"Loads and resolves a model, prints a summary of its entities and\n" +
			"the diagnostics recorded while loading.\n",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := cli.load(args[0])
			if err != nil {
				return err
			}
			cli.summary(args[0], doc)
			return cli.report(doc)
		},
	}
}

func (cli *CLI) load(path string) (*modelgraph.Document, error) {
	doc, err := modelgraph.LoadFile(path, modelgraph.LoadOptions{
		Logger:          cli.logger,
		SelectedSchemas: cli.Schemas,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// report prints the diagnostics of doc and applies --fail-on.
func (cli *CLI) report(doc *modelgraph.Document) error {
	minimum, err := parseSeverity(cli.MinSeverity)
	if err != nil {
		return err
	}
	diags := doc.Diagnostics()
	printDiagnostics(cli.Err, diags.Filter(minimum))
	return cli.check(diags)
}
