package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/kinship"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// labelCommand creates the label command for printing kinship labels.
func (c *CLI) labelCommand() *cobra.Command {
	var (
		selfID    string
		showCodes bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "label [people.json]",
		Short: "Print how each person is related to you",
		Long: `Print a kinship label for every person in the graph, relative to
the person given with --self: father, maternal grandmother, cousin,
brother-in-law, and so on.

With --codes the raw relationship paths are shown as well. Each path is
a token string read left to right from you: F steps to a father, M to a
mother, S/D/C to a son, daughter, or child, and H/W/P to a husband,
wife, or partner. "MF" is your mother's father.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLabel(args[0], selfID, showCodes, asJSON)
		},
	}

	cmd.Flags().StringVarP(&selfID, "self", "s", "", "id of the person labels are relative to")
	cmd.Flags().BoolVar(&showCodes, "codes", false, "show raw relationship codes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the label map as JSON")

	return cmd
}

func (c *CLI) runLabel(input, selfID string, showCodes, asJSON bool) error {
	g, err := person.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	selfID, err = resolveSelf(g, selfID)
	if err != nil {
		return err
	}

	labels := kinship.Labels(g, selfID)
	if asJSON {
		data, err := json.MarshalIndent(labels, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	var codes map[string][]string
	if showCodes {
		codes = kinship.Codes(g, selfID)
	}

	ids := make([]string, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := g.Person(ids[i]), g.Person(ids[j])
		return a.Before(b)
	})

	for _, id := range ids {
		p := g.Person(id)
		line := fmt.Sprintf("%-24s %s", p.Name, StyleHighlight.Render(labels[id]))
		if showCodes {
			line += "  " + StyleDim.Render(fmt.Sprintf("%v", codes[id]))
		}
		fmt.Println(line)
	}

	unreachable := len(g) - len(labels)
	if unreachable > 0 {
		printNewline()
		printWarning("%d people are not connected to %s", unreachable, g.Person(selfID).Name)
	}

	return nil
}
