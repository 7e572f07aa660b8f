package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/kinship"
	"github.com/pedigree-app/pedigree/pkg/layout"
	"github.com/pedigree-app/pedigree/pkg/person"
)

var (
	treeSelfStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treePersonStyle = lipgloss.NewStyle().Foreground(colorWhite)
	treeLabelStyle  = lipgloss.NewStyle().Foreground(colorDim)
	treeRowStyle    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// treeCommand creates the tree command for printing a tree in the terminal.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		selfID      string
		ancestors   int
		descendants int
	)

	cmd := &cobra.Command{
		Use:   "tree [people.json]",
		Short: "Print a family tree in the terminal",
		Long: `Print the family tree as generation rows, oldest at the top.
People appear in the same left-to-right order the layout engine uses:
paternal side left, maternal side right, you in the center. Each person
is annotated with their kinship label.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(args[0], selfID, ancestors, descendants)
		},
	}

	cmd.Flags().StringVarP(&selfID, "self", "s", "", "id of the person at the center")
	cmd.Flags().IntVar(&ancestors, "ancestors", 3, "generations of ancestors to include")
	cmd.Flags().IntVar(&descendants, "descendants", 3, "generations of descendants to include")

	return cmd
}

func (c *CLI) runTree(input, selfID string, ancestors, descendants int) error {
	g, err := person.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	selfID, err = resolveSelf(g, selfID)
	if err != nil {
		return err
	}

	opts := layout.DefaultOptions(selfID)
	opts.MaxAncestorDepth = ancestors
	opts.MaxDescendantDepth = descendants
	res := layout.Build(g, opts)
	if res.Empty() {
		return fmt.Errorf("person %q not found in %s", selfID, input)
	}

	labels := kinship.Labels(g, selfID)

	for _, gen := range generations(res) {
		nodes := nodesInGeneration(res, gen)
		fmt.Println(treeRowStyle.Render(generationName(gen)))

		for _, n := range nodes {
			p := g.Person(n.ID)
			if p == nil {
				continue
			}
			name := treePersonStyle.Render(p.Name)
			if n.ID == selfID {
				name = treeSelfStyle.Render(p.Name)
			}
			label := labels[n.ID]
			fmt.Printf("  %s %s\n", name, treeLabelStyle.Render("("+label+")"))
		}
		printNewline()
	}

	return nil
}

// generations returns the distinct generation numbers present in the
// layout, oldest (most negative) first.
func generations(res layout.Result) []int {
	seen := map[int]bool{}
	var gens []int
	for i := range res.Nodes {
		g := res.Nodes[i].Generation
		if !seen[g] {
			seen[g] = true
			gens = append(gens, g)
		}
	}
	sort.Ints(gens)
	return gens
}

// nodesInGeneration returns the generation's nodes in left-to-right
// screen order.
func nodesInGeneration(res layout.Result, gen int) []layout.Node {
	var nodes []layout.Node
	for i := range res.Nodes {
		if res.Nodes[i].Generation == gen {
			nodes = append(nodes, res.Nodes[i])
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].X < nodes[j].X })
	return nodes
}

// generationName gives a readable heading for a generation row.
func generationName(gen int) string {
	switch gen {
	case 0:
		return "Your generation"
	case -1:
		return "Parents"
	case -2:
		return "Grandparents"
	case 1:
		return "Children"
	case 2:
		return "Grandchildren"
	}
	if gen < 0 {
		return strings.Repeat("Great-", -gen-2) + "Grandparents"
	}
	return strings.Repeat("Great-", gen-2) + "Grandchildren"
}
