package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/layout"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		selfID string
		output string
	)
	opts := layout.DefaultOptions("")

	cmd := &cobra.Command{
		Use:   "layout [people.json]",
		Short: "Compute card positions for a family graph",
		Long: `Compute card positions for a family graph.

The layout command takes a people.json file (a map of person id to
person) and computes where each relative's card goes: paternal side on
the left, maternal side on the right, one row per generation, you in
the center. The output is a layout.json file with absolute pixel
coordinates, parent-child edges, and canvas bounds.

The layout can be rendered to SVG using the 'render' command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], selfID, opts, output)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&selfID, "self", "s", "", "id of the person at the center (default: sole person, if the graph has one)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	// Layout flags
	cmd.Flags().IntVar(&opts.MaxAncestorDepth, "ancestors", opts.MaxAncestorDepth, "generations of ancestors to include")
	cmd.Flags().IntVar(&opts.MaxDescendantDepth, "descendants", opts.MaxDescendantDepth, "generations of descendants to include")
	cmd.Flags().Float64Var(&opts.CardWidth, "card-width", opts.CardWidth, "card width in pixels")
	cmd.Flags().Float64Var(&opts.CardHeight, "card-height", opts.CardHeight, "card height in pixels")
	cmd.Flags().BoolVar(&opts.AutoTune, "auto-tune", opts.AutoTune, "shrink cards when a generation gets crowded")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, selfID string, opts layout.Options, output string) error {
	g, err := person.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	opts.SelfID, err = resolveSelf(g, selfID)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	res := layout.Build(g, opts)
	if res.Empty() {
		return fmt.Errorf("person %q not found in %s", opts.SelfID, input)
	}
	p.done(fmt.Sprintf("Laid out %d people", len(res.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := writeLayoutFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(res.Nodes), len(res.Edges))
	printNewline()
	printNextStep("Render", "pedigree render "+input+" --self "+opts.SelfID)

	return nil
}

// resolveSelf picks the center person: an explicit id wins, otherwise
// a single-person graph centers on that person.
func resolveSelf(g person.Graph, selfID string) (string, error) {
	if selfID != "" {
		if g.Person(selfID) == nil {
			return "", fmt.Errorf("person %q not found", selfID)
		}
		return selfID, nil
	}
	if len(g) == 1 {
		for id := range g {
			return id, nil
		}
	}
	return "", fmt.Errorf("--self is required when the graph has more than one person")
}

// writeLayoutFile writes the layout result as indented JSON.
func writeLayoutFile(res layout.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
