package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topograph/pkg/render/nodelink"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "explore [snapshot.json]",
		Short: "Browse the topology and trace replication paths interactively",
		Long: `Browse the topology and trace replication paths interactively.

Moving the cursor hovers the node under it: its ancestors and descendants
stay lit and everything else is dimmed. Press esc to leave the node and q to
quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.buildLayout(cmd, args, &lf)
			if err != nil {
				return err
			}
			if len(res.Nodes) == 0 {
				printWarning("Snapshot is empty")
				return nil
			}
			printDiagnostics(res)
			_, err = tea.NewProgram(newExploreModel(res), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	lf.register(cmd)

	return cmd
}

// =============================================================================
// ExploreModel - Interactive hover over a layout
// =============================================================================

var (
	exploreFocusStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	exploreDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreHeader     = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// exploreModel is the bubbletea model for the explore command. The cursor
// row is the hovered node unless the user left it with esc.
type exploreModel struct {
	hl     *highlight.Highlighter
	rows   []layout.PositionedNode
	state  highlight.State
	cursor int
	offset int
	height int
}

func newExploreModel(res *layout.Result) exploreModel {
	m := exploreModel{
		hl:     highlight.New(res),
		rows:   treeOrder(res),
		height: 15,
	}
	m.state = m.hl.State()
	return m
}

// treeOrder lists nodes depth-first from each root, children left to right.
func treeOrder(res *layout.Result) []layout.PositionedNode {
	children := make(map[topology.NodeID][]topology.NodeID)
	for _, n := range res.Nodes {
		if n.Parent != "" {
			children[n.Parent] = append(children[n.Parent], n.Node.ID)
		}
	}

	out := make([]layout.PositionedNode, 0, len(res.Nodes))
	var visit func(id topology.NodeID)
	visit = func(id topology.NodeID) {
		n, ok := res.Node(id)
		if !ok {
			return
		}
		out = append(out, n)
		for _, c := range children[id] {
			visit(c)
		}
	}
	for _, r := range res.Roots {
		visit(r)
	}
	return out
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = m.hl.HoverLeave()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.hover()
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			m.hover()
		case "enter", " ":
			m.hover()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	m.scroll()
	return m, nil
}

func (m *exploreModel) hover() {
	if len(m.rows) == 0 {
		return
	}
	if st, err := m.hl.HoverEnter(m.rows[m.cursor].Node.ID); err == nil {
		m.state = st
	}
}

func (m *exploreModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Replication Topology"))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("↑/↓ hover  esc leave  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		name := strings.Repeat("  ", n.Depth) + n.Node.Label()
		rows = append(rows, []string{cursor, name, string(n.Node.Role()), n.Node.Host, replicationStatus(n.Node)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Role", "Host", "Replication").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return exploreHeader
			}
			idx := m.offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			return m.rowStyle(m.rows[idx].Node)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.pathLine())
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}

// rowStyle colours a row by role, dimmed when the node is off the hovered path.
func (m exploreModel) rowStyle(n topology.GraphNode) lipgloss.Style {
	if m.state.Focus == n.ID {
		return exploreFocusStyle
	}
	if v, ok := m.state.Node(n.ID); ok && v.Opacity < highlight.OpacityFull {
		return exploreDimStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(nodelink.RoleColor(n.Role())))
}

// pathLine describes the hovered replication path.
func (m exploreModel) pathLine() string {
	if !m.state.Focused() {
		return exploreDimStyle.Render("  no node hovered")
	}
	join := func(ids []topology.NodeID) string {
		if len(ids) == 0 {
			return "none"
		}
		s := make([]string, len(ids))
		for i, id := range ids {
			s[i] = string(id)
		}
		return strings.Join(s, ", ")
	}
	return fmt.Sprintf("  %s %s\n  %s %s",
		StyleDim.Render("upstream:  "), StyleValue.Render(join(m.state.Ancestors)),
		StyleDim.Render("downstream:"), StyleValue.Render(join(m.state.Descendants)))
}

func replicationStatus(n topology.GraphNode) string {
	switch {
	case n.Source == "":
		return "-"
	case n.ReplicationRunning:
		return "running from " + n.Source
	default:
		return "stopped (" + n.Source + ")"
	}
}
