package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pedigree-app/pedigree/pkg/kinship"
	"github.com/pedigree-app/pedigree/pkg/person"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command for interactive exploration.
func (c *CLI) browseCommand() *cobra.Command {
	var selfID string

	cmd := &cobra.Command{
		Use:   "browse [people.json]",
		Short: "Browse a family graph interactively",
		Long: `Open an interactive list of everyone in the graph. Navigate with
the arrow keys; the pane below the list shows the highlighted person's
parents, spouse, children, and kinship label.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(args[0], selfID)
		},
	}

	cmd.Flags().StringVarP(&selfID, "self", "s", "", "id of the person labels are relative to")

	return cmd
}

func (c *CLI) runBrowse(input, selfID string) error {
	g, err := person.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	selfID, err = resolveSelf(g, selfID)
	if err != nil {
		return err
	}

	model := NewPersonListModel(g, selfID)
	_, err = tea.NewProgram(model).Run()
	return err
}

// =============================================================================
// PersonListModel - Interactive person browser
// =============================================================================

// PersonListModel is the bubbletea model for browsing a family graph.
type PersonListModel struct {
	Graph  person.Graph
	SelfID string
	People []*person.Person
	Labels map[string]string
	Cursor int
	Height int
	Offset int
}

// NewPersonListModel creates a browser over the graph, people sorted
// the same way the layout engine sorts them.
func NewPersonListModel(g person.Graph, selfID string) PersonListModel {
	people := make([]*person.Person, 0, len(g))
	for _, p := range g {
		people = append(people, p)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Before(people[j]) })

	return PersonListModel{
		Graph:  g,
		SelfID: selfID,
		People: people,
		Labels: kinship.Labels(g, selfID),
		Height: 15,
	}
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.People)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.People) {
		end = len(m.People)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.People[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		relation := m.Labels[p.ID]
		if relation == "" {
			relation = "—"
		}

		born := "—"
		if p.BirthDate != nil {
			born = p.BirthDate.Format("Jan 2, 2006")
		}

		rows = append(rows, []string{cursor, p.Name, relation, genderGlyph(p.Gender), born})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Relation", "", "Born").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 3 || col == 4 {
				base = base.Foreground(colorDim)
			}
			if isCurrent {
				if actualIdx < len(m.People) && m.People[actualIdx].ID == m.SelfID {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.detailPane())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.People))))

	return b.String()
}

// detailPane renders the highlighted person's immediate family.
func (m PersonListModel) detailPane() string {
	if m.Cursor >= len(m.People) {
		return ""
	}
	p := m.People[m.Cursor]

	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(p.Name))
	if p.ID == m.SelfID {
		b.WriteString(listDimStyle.Render(" (you)"))
	}
	b.WriteString("\n")

	father, mother := m.Graph.Parents(p.ID)
	if father != nil {
		b.WriteString(detailLine("Father", father.Name))
	}
	if mother != nil {
		b.WriteString(detailLine("Mother", mother.Name))
	}
	if spouse := m.Graph.Spouse(p.ID); spouse != nil {
		b.WriteString(detailLine("Spouse", spouse.Name))
	}
	if children := m.Graph.Children(p.ID); len(children) > 0 {
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = c.Name
		}
		b.WriteString(detailLine("Children", strings.Join(names, ", ")))
	}
	if p.Note != "" {
		b.WriteString(detailLine("Note", p.Note))
	}

	return b.String()
}

func detailLine(key, value string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	return "  " + keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n"
}

func genderGlyph(g person.Gender) string {
	switch g {
	case person.GenderMale:
		return "♂"
	case person.GenderFemale:
		return "♀"
	default:
		return " "
	}
}
