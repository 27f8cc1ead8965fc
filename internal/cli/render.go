package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/cache"
	"github.com/matzehuels/bteditor/pkg/render/nodelink"
)

const (
	formatSVG = nodelink.FormatSVG
	formatPDF = nodelink.FormatPDF
	formatPNG = nodelink.FormatPNG
	formatDOT = "dot"

	defaultScale = 2.0            // PNG pixel density
	renderTTL    = 24 * time.Hour // lifetime of cached renderings
)

// validFormats is the set of supported render formats.
var validFormats = map[string]bool{formatSVG: true, formatPDF: true, formatPNG: true, formatDOT: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file; derived from the input when empty
	format   string  // svg, pdf, png or dot
	detailed bool    // include type, description and properties in node labels
	scale    float64 // PNG scale factor
	noCache  bool    // bypass the rendering cache
}

// renderCommand creates the render command, which draws the root-reachable
// tree of a document as a Graphviz diagram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, scale: defaultScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a tree document as a diagram",
		Long: `Render the nodes reachable from the root of a tree document.

Unconnected nodes are left out. Renderings are cached by diagram content
in the user cache directory; use --no-cache to bypass it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, pdf, png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node type, description and properties")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rendering cache")

	return cmd
}

// validateFormat checks that the format is one of validFormats.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'svg', 'pdf', 'png', or 'dot')", f)
	}
	return nil
}

// outputPath returns output, or input with its extension replaced by format.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	ed, err := c.newEditor()
	if err != nil {
		return err
	}
	if err := ed.ImportFile(input); err != nil {
		return err
	}

	dot := nodelink.ToDOT(ed.Root(), nodelink.Options{Detailed: opts.detailed})
	logger.Debugf("Generated DOT: %d bytes", len(dot))

	data := []byte(dot)
	if opts.format != formatDOT {
		if data, err = c.renderCached(ctx, dot, opts); err != nil {
			return err
		}
	}

	path := outputPath(opts.output, input, opts.format)
	if err := writeFileWith(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printStats(ed.Store().Len(), len(ed.Store().Connections()), 1)
	printFile(path)
	return nil
}

// renderCached renders dot to opts.format through the file cache.
func (c *CLI) renderCached(ctx context.Context, dot string, opts renderOpts) ([]byte, error) {
	store, err := newCache(opts.noCache)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	keyOpts := cache.ArtifactKeyOpts{Format: opts.format, Detailed: opts.detailed}
	if opts.format == formatPNG {
		keyOpts.Scale = opts.scale
	}
	key := cache.DefaultKeyer{}.ArtifactKey(cache.Hash([]byte(dot)), keyOpts)

	spinner := startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", strings.ToUpper(opts.format)))
	data, err := cache.Fetch(ctx, store, opts.format, key, renderTTL, func() ([]byte, error) {
		return nodelink.Render(ctx, dot, opts.format, opts.scale)
	})
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, err
	}
	spinner.Stop()
	return data, nil
}
