package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/cache"
	"github.com/matzehuels/bteditor/pkg/editor"
	"github.com/matzehuels/bteditor/pkg/observability"
	"github.com/matzehuels/bteditor/pkg/project"
	"github.com/matzehuels/bteditor/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	project  string // project to open at start and save at shutdown
	readOnly bool   // do not save the project at shutdown
	noCache  bool
	store    storeOpts
}

// serveCommand creates the serve command, which exposes one editor over
// HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an editor over HTTP",
		Long: `Serve a JSON API for one editor, with Prometheus metrics on /metrics.

With --project the named project is opened from the store at start (a
missing project starts empty) and saved back on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.project, "project", "", "project to open and save")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "do not save the project on shutdown")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rendering cache")
	opts.store.bind(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetEditorHooks(hooks)
	observability.SetStoreHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ed, err := c.newEditor()
	if err != nil {
		return err
	}

	var store project.Store
	if opts.project != "" {
		if store, err = opts.store.open(ctx); err != nil {
			return err
		}
		defer store.Close()
		if err := openOrCreate(ctx, ed, store, opts.project); err != nil {
			return err
		}
	}

	artifacts, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	srv := server.New(ed,
		server.WithLogger(logger),
		server.WithCache(artifacts, renderTTL),
		server.WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), "serve:")),
		server.WithMetrics(reg),
	)

	progress := newProgress(logger)
	logger.Debug("serving editor", "addr", opts.addr)
	printInfo("Serving editor")
	printKeyValue("API", StyleLink.Render(serverURL(opts.addr)+"/trees"))
	printKeyValue("Metrics", StyleLink.Render(serverURL(opts.addr)+"/metrics"))
	printKeyValue("Trees", StyleNumber.Render(fmt.Sprint(len(ed.Trees()))))
	if err := srv.ListenAndServe(ctx, opts.addr); err != nil {
		return err
	}
	progress.done("Server stopped", "addr", opts.addr)

	if store != nil && !opts.readOnly {
		// ctx is cancelled by now.
		if err := ed.SaveProject(context.WithoutCancel(ctx), store, opts.project); err != nil {
			return err
		}
		printSuccess("Saved project %s", StyleHighlight.Render(opts.project))
	}
	return nil
}

// openOrCreate opens the named project, or leaves ed with its fresh tree if
// the project does not exist yet.
func openOrCreate(ctx context.Context, ed *editor.Editor, store project.Store, name string) error {
	logger := loggerFromContext(ctx)
	err := ed.LoadProject(ctx, store, name)
	if errors.Is(err, project.ErrNotFound) {
		logger.Info("Starting new project", "name", name)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Opened project", "name", name, "trees", len(ed.Trees()))
	return nil
}

// serverURL returns the base URL a client reaches addr at. A bare port
// listens on all interfaces and is shown as localhost.
func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
