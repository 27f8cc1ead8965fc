package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/errors"
)

// formatOpts holds the command-line flags for the format command.
type formatOpts struct {
	output string // output file; stdout when empty
	to     string // output format; from the output or input extension when empty
}

// formatCommand creates the format command, which round-trips a document
// through the editor and writes it back in canonical form.
func (c *CLI) formatCommand() *cobra.Command {
	var opts formatOpts

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Rewrite a tree document in canonical form",
		Long: `Import a tree document and export it again.

The output always lists description and scripts, uses "control" for
composite nodes and "module" nodes with their path, so two documents
describing the same tree format identically. Use --to to convert
between JSON and YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFormat(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "output format: json, yaml (default: from file extension)")

	return cmd
}

func (c *CLI) runFormat(ctx context.Context, path string, opts formatOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)

	f := document.FormatFromPath(path)
	if opts.output != "" {
		f = document.FormatFromPath(opts.output)
	}
	if opts.to != "" {
		var err error
		if f, err = document.ParseFormat(opts.to); err != nil {
			return err
		}
	}

	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := ed.ImportFile(path); err != nil {
		return err
	}
	logger.Debug("document imported", "path", path, "blocks", ed.Store().Len())

	if opts.output == "" {
		return ed.Export(stdout, f)
	}
	if err := writeFileWith(opts.output, func(w io.Writer) error { return ed.Export(w, f) }); err != nil {
		return err
	}
	printSuccess("Formatted %s", path)
	printFile(opts.output)
	return nil
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check tree documents without importing them",
		Long: `Check that each document can be imported: every node has a type and a
name, module nodes have a valid path, and the node structure matches the
node categories. Types from --catalog are taken into account.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args)
		},
	}
}

func (c *CLI) runValidate(ctx context.Context, paths []string) error {
	logger := loggerFromContext(ctx)

	ed, err := c.newEditor()
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		d, err := document.ReadFile(path)
		if err == nil {
			err = document.Validate(d, ed.Registry())
		}
		if err != nil {
			failed++
			printError("%s: %s", path, errors.UserMessage(err))
			logger.Debug("validation failed", "path", path, "code", errors.GetCode(err))
			continue
		}
		printSuccess("%s", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents invalid", failed, len(paths))
	}
	return nil
}
