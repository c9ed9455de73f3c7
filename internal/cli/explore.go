package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newExploreCmd creates the explore command, an interactive terminal browser
// for a saved dependency graph.
func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <graph.json>",
		Short: "Browse a dependency graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			res := layout.Compute(g.Nodes, g.Edges, layout.Config{})
			model := newExploreModel(layout.Decorate(g.Nodes, res), graph.NewDigraph(g.Nodes, g.Edges))

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// =============================================================================
// exploreModel - Interactive node browser
// =============================================================================

// exploreModel is the bubbletea model for browsing placed nodes. Nodes are
// shown ordered by level then ID; "/" filters by substring across ID, type,
// and group. The digraph index backs the neighbor detail line for the
// selected node.
type exploreModel struct {
	nodes    []layout.PositionedNode // all nodes, sorted
	visible  []layout.PositionedNode // nodes matching the filter
	index    *graph.Digraph          // adjacency lookups for the detail line
	cursor   int
	offset   int
	height   int
	filter   string
	entering bool // true while the user types a filter
}

func newExploreModel(nodes []layout.PositionedNode, index *graph.Digraph) exploreModel {
	sorted := make([]layout.PositionedNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Level != sorted[j].Level {
			return sorted[i].Level < sorted[j].Level
		}
		return sorted[i].ID < sorted[j].ID
	})
	m := exploreModel{nodes: sorted, index: index, height: 15}
	m.applyFilter()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.entering {
			return m.updateFilter(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "/":
			m.entering = true
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m exploreModel) updateFilter(msg tea.KeyMsg) exploreModel {
	switch msg.String() {
	case "enter", "esc":
		m.entering = false
		if msg.String() == "esc" {
			m.filter = ""
			m.applyFilter()
		}
	case "backspace":
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
	default:
		if len(msg.Runes) > 0 {
			m.filter += string(msg.Runes)
			m.applyFilter()
		}
	}
	return m
}

// applyFilter recomputes the visible node list and clamps the cursor.
func (m *exploreModel) applyFilter() {
	if m.filter == "" {
		m.visible = m.nodes
	} else {
		needle := strings.ToLower(m.filter)
		m.visible = nil
		for _, n := range m.nodes {
			haystack := strings.ToLower(n.ID + " " + n.Type + " " + n.Group)
			if strings.Contains(haystack, needle) {
				m.visible = append(m.visible, n)
			}
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.visible))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.visible[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		entry := ""
		if n.Meta.IsEntry {
			entry = "✓"
		}

		rows = append(rows, []string{
			cursor, n.ID, n.Type, fmt.Sprintf("%d", n.Level), n.Group, entry, n.File,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Type", "Level", "Group", "Entry", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.index != nil && len(m.visible) > 0 {
		sel := m.visible[m.cursor]
		b.WriteString(listDimStyle.Render(fmt.Sprintf(
			"  imports (%d): %s   imported by (%d): %s",
			m.index.OutDegree(sel.ID), neighborList(m.index.Children(sel.ID)),
			m.index.InDegree(sel.ID), neighborList(m.index.Parents(sel.ID)))))
	}
	b.WriteString("\n")

	status := fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.visible))
	if m.entering {
		status += "  filter: " + m.filter + "▎"
	} else if m.filter != "" {
		status += "  filter: " + m.filter
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}

// neighborList formats neighbor IDs for the detail line. Long lists are
// truncated to keep the line within a terminal row.
func neighborList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	if len(ids) > 4 {
		return strings.Join(ids[:4], ", ") + fmt.Sprintf(", +%d more", len(ids)-4)
	}
	return strings.Join(ids, ", ")
}
