package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/project"
)

// projectCommand creates the project command and its subcommands. The
// store flags are shared by every subcommand.
func (c *CLI) projectCommand() *cobra.Command {
	var store storeOpts

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Save, list and export editing projects",
		Long: `A project holds several trees and the node types they use.

Projects live in a file store by default. Use --store redis or
--store mongo to share them with a running server.`,
	}
	store.bind(cmd)

	cmd.AddCommand(c.projectSaveCommand(&store))
	cmd.AddCommand(c.projectListCommand(&store))
	cmd.AddCommand(c.projectExportCommand(&store))
	cmd.AddCommand(c.projectDeleteCommand(&store))

	return cmd
}

// withStore opens the selected store, runs fn and closes the store.
func withStore(ctx context.Context, opts *storeOpts, fn func(project.Store) error) error {
	s, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// projectSaveCommand creates the "project save" subcommand.
func (c *CLI) projectSaveCommand(store *storeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [files...]",
		Short: "Save documents as one project",
		Long:  `Import each document as a tree and save all trees under name, replacing any project of that name.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), store, func(s project.Store) error {
				return c.runProjectSave(cmd.Context(), s, args[0], args[1:])
			})
		},
	}
}

func (c *CLI) runProjectSave(ctx context.Context, s project.Store, name string, paths []string) error {
	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := importTrees(ed, paths); err != nil {
		return err
	}
	spinner := startSpinner(ctx, os.Stderr, "Saving project...")
	if err := ed.SaveProject(ctx, s, name); err != nil {
		spinner.StopWithError("Save failed")
		return err
	}
	spinner.StopWithSuccess("Saved project " + StyleHighlight.Render(name))
	printStats(blockCount(ed.Project(name)), 0, len(ed.Trees()))
	printNextStep("Export it again", fmt.Sprintf("%s project export %s", appName, name))
	return nil
}

// blockCount counts the nodes of every tree in p, including each root.
func blockCount(p *project.Project) int {
	n := 0
	for _, d := range p.Trees {
		n += 1 + d.Root.Count()
	}
	return n
}

// projectListCommand creates the "project list" subcommand.
func (c *CLI) projectListCommand(store *storeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), store, func(s project.Store) error {
				return runProjectList(cmd.Context(), s, cmd.OutOrStdout())
			})
		},
	}
}

func runProjectList(ctx context.Context, s project.Store, stdout io.Writer) error {
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printInfo("No projects")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

// projectExportCommand creates the "project export" subcommand.
func (c *CLI) projectExportCommand(store *storeOpts) *cobra.Command {
	var (
		out string
		to  string
	)

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write each tree of a project as a document",
		Long: `Write one document per tree of the project into --out. Files are named
after the tree title, or after the tree position when titles collide.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(to)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), store, func(s project.Store) error {
				return c.runProjectExport(cmd.Context(), s, args[0], out, f)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&to, "to", "t", string(document.FormatJSON), "output format: json, yaml")

	return cmd
}

func (c *CLI) runProjectExport(ctx context.Context, s project.Store, name, dir string, f document.Format) error {
	logger := loggerFromContext(ctx)

	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := ed.LoadProject(ctx, s, name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	trees := ed.Trees()
	files := treeFileNames(ed.Project(name), f)
	for i, t := range trees {
		d, err := ed.ExportTree(t.ID)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, files[i])
		if err := writeFileWith(path, func(w io.Writer) error { return document.Write(w, d, f) }); err != nil {
			return err
		}
		logger.Debug("tree exported", "tree", t.ID, "path", path)
		printFile(path)
	}
	printSuccess("Exported %d trees of %s", len(trees), StyleHighlight.Render(name))
	return nil
}

// treeFileNames returns one file name per tree of p: the slugged tree name,
// or "tree-N" when the name is empty or already taken.
func treeFileNames(p *project.Project, f document.Format) []string {
	seen := make(map[string]bool)
	names := make([]string, len(p.Trees))
	for i, d := range p.Trees {
		base := slug(d.Name)
		if base == "" || seen[base] {
			base = fmt.Sprintf("tree-%d", i+1)
		}
		seen[base] = true
		names[i] = base + "." + string(f)
	}
	return names
}

// slug lowercases s and replaces runs of characters other than letters and
// digits with a single dash.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// projectDeleteCommand creates the "project delete" subcommand.
func (c *CLI) projectDeleteCommand(store *storeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), store, func(s project.Store) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted project %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}
