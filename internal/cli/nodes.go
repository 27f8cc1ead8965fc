package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// nodesOpts holds the command-line flags for the nodes command.
type nodesOpts struct {
	custom bool   // list user-defined types only
	export string // write the user-defined types as a TOML catalog
}

// nodesCommand creates the nodes command, which lists the node types known
// after loading the catalog and the given documents.
func (c *CLI) nodesCommand() *cobra.Command {
	var opts nodesOpts

	cmd := &cobra.Command{
		Use:   "nodes [files...]",
		Short: "List node types",
		Long: `List the registered node types.

Types used by the given documents and not yet known are registered as they
are imported. Use --export to collect them into a TOML catalog that can be
passed to --catalog later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNodes(cmd.Context(), args, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.custom, "custom", false, "list user-defined types only")
	cmd.Flags().StringVar(&opts.export, "export", "", "write user-defined types to a TOML catalog file")

	return cmd
}

func (c *CLI) runNodes(ctx context.Context, paths []string, opts nodesOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)

	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := importTrees(ed, paths); err != nil {
		return err
	}
	logger.Debug("node types loaded", "documents", len(paths), "types", ed.Registry().Len())

	if opts.export != "" {
		cat := nodetype.Catalog{Nodes: ed.Registry().Custom()}
		if err := writeFileWith(opts.export, func(w io.Writer) error { return nodetype.WriteCatalog(w, cat) }); err != nil {
			return err
		}
		printSuccess("Exported %d node types", len(cat.Nodes))
		printFile(opts.export)
		return nil
	}

	var types []*nodetype.NodeType
	for _, t := range ed.Nodes() {
		if opts.custom && t.Builtin {
			continue
		}
		types = append(types, t)
	}
	fmt.Fprintln(stdout, nodeTable(types))
	return nil
}

// nodeTable renders types as a table of name, title, category and default
// properties.
func nodeTable(types []*nodetype.NodeType) string {
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t.Name, t.DisplayTitle(), string(t.Category), fmtProperties(t.Properties)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Name", "Title", "Category", "Properties").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case types[row].Builtin:
				return listDimStyle
			case col == 0:
				return StyleHighlight
			case col == 2:
				return categoryStyle(types[row].Category)
			}
			return listNormalStyle
		}).
		Render()
}

// fmtProperties formats a property map as sorted "k=v" pairs.
func fmtProperties(props map[string]any) string {
	pairs := make([]string, 0, len(props))
	for k, v := range props {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	slices.Sort(pairs)
	return strings.Join(pairs, " ")
}
