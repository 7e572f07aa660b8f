package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/kinship"
	"github.com/pedigree-app/pedigree/pkg/layout"
	"github.com/pedigree-app/pedigree/pkg/person"
	"github.com/pedigree-app/pedigree/pkg/render"
)

const (
	vizCard     = "card"     // card diagram from the layout engine
	vizGraphviz = "graphviz" // node-link diagram via Graphviz

	formatSVG = "svg"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	selfID     string // center person id
	output     string // output file path
	vizType    string // "card" or "graphviz"
	format     string // "svg" or "dot"
	noLabels   bool   // omit kinship labels
	mergeEdges bool   // merge couple connectors into one elbow
}

// renderCommand creates the render command for generating diagrams.
// It supports the card diagram (the same geometry the layout command
// emits) and a Graphviz node-link diagram of the raw family graph.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		vizType:    vizCard,
		format:     formatSVG,
		mergeEdges: true,
	}

	cmd := &cobra.Command{
		Use:   "render [people.json]",
		Short: "Render a family graph to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateViz(opts.vizType, opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.selfID, "self", "s", "", "id of the person at the center")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "diagram type: card (default), graphviz")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit kinship labels")
	cmd.Flags().BoolVar(&opts.mergeEdges, "merge-edges", opts.mergeEdges, "merge couple connectors into one elbow (card)")

	return cmd
}

// validateViz rejects unknown types, formats, and their combinations.
// DOT output only makes sense for the Graphviz diagram.
func validateViz(vizType, format string) error {
	if vizType != vizCard && vizType != vizGraphviz {
		return fmt.Errorf("invalid type: %s (must be 'card' or 'graphviz')", vizType)
	}
	if format != formatSVG && format != formatDOT {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", format)
	}
	if vizType == vizCard && format == formatDOT {
		return fmt.Errorf("dot output requires --type graphviz")
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	g, err := person.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	logger.Debugf("Loaded graph: %d people", len(g))

	selfID, err := resolveSelf(g, opts.selfID)
	if err != nil {
		return err
	}

	var labels map[string]string
	if !opts.noLabels {
		labels = kinship.Labels(g, selfID)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s %s...", opts.vizType, opts.format))
	spinner.Start()

	var data []byte
	switch opts.vizType {
	case vizGraphviz:
		data, err = renderGraphviz(g, selfID, labels, opts.format)
	default:
		data, err = renderCard(g, selfID, labels, opts.mergeEdges)
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + opts.format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(len(g), 0)

	return nil
}

// renderCard lays out the graph and draws the card diagram.
func renderCard(g person.Graph, selfID string, labels map[string]string, mergeEdges bool) ([]byte, error) {
	res := layout.Build(g, layout.DefaultOptions(selfID))
	if res.Empty() {
		return nil, fmt.Errorf("person %q not found", selfID)
	}
	return render.CardSVG(res, g, render.CardOptions{
		SelfID:           selfID,
		Labels:           labels,
		MergeParentEdges: mergeEdges,
	}), nil
}

// renderGraphviz draws the node-link diagram, as DOT or rendered SVG.
func renderGraphviz(g person.Graph, selfID string, labels map[string]string, format string) ([]byte, error) {
	dot := render.ToDOT(g, render.DOTOptions{SelfID: selfID, Labels: labels})
	if format == formatDOT {
		return []byte(dot), nil
	}
	return render.RenderSVG(dot)
}
