package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/editor"
	"github.com/matzehuels/bteditor/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Browse Command
// =============================================================================

// browseCommand creates the browse command, an interactive outline of one
// or more tree documents.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [files...]",
		Short: "Browse tree documents interactively",
		Long: `Open each document as a tree and show its nodes as an indented outline.
Use tab to switch between trees.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args)
		},
	}
}

func (c *CLI) runBrowse(ctx context.Context, paths []string) error {
	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := importTrees(ed, paths); err != nil {
		return err
	}

	_, err = tea.NewProgram(NewOutlineModel(buildOutlines(ed)), tea.WithContext(ctx)).Run()
	return err
}

// importTrees imports the first path into the active tree and each further
// path into a new tree.
func importTrees(ed *editor.Editor, paths []string) error {
	for i, path := range paths {
		if i > 0 {
			ed.CreateTree()
		}
		if err := ed.ImportFile(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// =============================================================================
// Outlines
// =============================================================================

// outline is the flattened, root-reachable structure of one tree.
type outline struct {
	title string
	rows  []outlineRow
	// loose counts the blocks not reachable from the root.
	loose int
}

type outlineRow struct {
	depth int
	block *graph.Block
}

// buildOutlines flattens every tree of ed in depth-first order.
func buildOutlines(ed *editor.Editor) []outline {
	s := ed.Session()
	var out []outline
	for _, t := range s.Trees() {
		o := outline{title: s.Title(t)}
		graph.Walk(s.Root(t), func(b *graph.Block, depth int) bool {
			o.rows = append(o.rows, outlineRow{depth: depth, block: b})
			return true
		})
		o.loose = len(s.Graph(t).Blocks) - len(o.rows)
		out = append(out, o)
	}
	return out
}

// =============================================================================
// OutlineModel - Interactive tree outline
// =============================================================================

// OutlineModel is the bubbletea model for browsing tree outlines.
type OutlineModel struct {
	Trees  []outline
	Tree   int
	Cursor int
	Height int
	Offset int
}

// NewOutlineModel creates a new outline model showing the first tree.
func NewOutlineModel(trees []outline) OutlineModel {
	return OutlineModel{Trees: trees, Height: 15}
}

func (m OutlineModel) Init() tea.Cmd {
	return nil
}

func (m OutlineModel) rows() []outlineRow {
	if len(m.Trees) == 0 {
		return nil
	}
	return m.Trees[m.Tree].rows
}

func (m OutlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.rows())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			if len(m.Trees) > 1 {
				m.Tree = (m.Tree + 1) % len(m.Trees)
				m.Cursor, m.Offset = 0, 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m OutlineModel) View() string {
	var b strings.Builder

	if len(m.Trees) == 0 {
		return listDimStyle.Render("No trees") + "\n"
	}
	o := m.Trees[m.Tree]

	b.WriteString(StyleTitle.Render(o.title))
	if len(m.Trees) > 1 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  tree %d/%d", m.Tree+1, len(m.Trees))))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab next tree  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(o.rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := o.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := r.block.Title
		if label == "" {
			label = r.block.Type
		}
		rows = append(rows, []string{cursor, strings.Repeat("  ", r.depth) + label, r.block.Type, string(r.block.Category)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Node", "Type", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			case col == 3:
				return categoryStyle(o.rows[m.Offset+row].block.Category)
			case col == 2:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.Cursor < len(o.rows) {
		b.WriteString(blockDetail(o.rows[m.Cursor].block))
	}
	if o.loose > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  %d unconnected blocks not shown", o.loose)))
		b.WriteString("\n")
	}

	return b.String()
}

// blockDetail renders the description and properties of b, one per line.
func blockDetail(b *graph.Block) string {
	var s strings.Builder
	if b.Description != "" {
		s.WriteString("  " + StyleValue.Render(b.Description) + "\n")
	}
	keys := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render(k+":"), StyleHighlight.Render(fmt.Sprint(b.Properties[k]))))
	}
	return s.String()
}
