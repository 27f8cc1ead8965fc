// Package cli implements the bteditor command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bteditor/pkg/buildinfo"
	"github.com/matzehuels/bteditor/pkg/cache"
	"github.com/matzehuels/bteditor/pkg/editor"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/project"
	"github.com/matzehuels/bteditor/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bteditor"

	storeFile  = "file"
	storeRedis = "redis"
	storeMongo = "mongo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// settingsPath and catalogPath are bound to the persistent
	// --settings and --catalog flags.
	settingsPath string
	catalogPath  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bteditor edits behavior-tree documents",
		Long:         `bteditor validates, formats, renders and stores behavior-tree documents, and serves an editor over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.settingsPath, "settings", "", "TOML settings file")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "TOML node catalog to register before loading documents")

	root.AddCommand(c.formatCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Editor Factory
// =============================================================================

// newEditor creates an editor configured from the --settings and --catalog
// flags that logs through the CLI logger.
func (c *CLI) newEditor(opts ...editor.Option) (*editor.Editor, error) {
	s := settings.New()
	if c.settingsPath != "" {
		if err := s.LoadFile(c.settingsPath); err != nil {
			return nil, err
		}
		c.Logger.Debug("settings loaded", "path", c.settingsPath)
	}

	opts = append([]editor.Option{editor.WithLogger(c.Logger), editor.WithSettings(s)}, opts...)
	ed, err := editor.New(opts...)
	if err != nil {
		return nil, err
	}

	if c.catalogPath != "" {
		cat, err := nodetype.ReadCatalogFile(c.catalogPath)
		if err != nil {
			return nil, err
		}
		skipped, err := ed.LoadCatalog(cat)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("catalog loaded", "path", c.catalogPath, "types", len(cat.Nodes), "skipped", len(skipped))
		if len(skipped) > 0 {
			printWarning("Catalog redefines known types: %s", strings.Join(skipped, ", "))
		}
	}
	return ed, nil
}

// =============================================================================
// Project Stores
// =============================================================================

// storeOpts selects and addresses a project store backend.
type storeOpts struct {
	backend   string
	dir       string
	redisAddr string
	redisDB   int
	mongoURI  string
}

func (o *storeOpts) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.backend, "store", storeFile, "project store: file, redis, mongo")
	cmd.PersistentFlags().StringVar(&o.dir, "dir", "", "project directory for the file store (default: XDG data dir)")
	cmd.PersistentFlags().StringVar(&o.redisAddr, "redis-addr", "localhost:6379", "Redis address")
	cmd.PersistentFlags().IntVar(&o.redisDB, "redis-db", 0, "Redis database")
	cmd.PersistentFlags().StringVar(&o.mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
}

// open connects to the selected backend. The Redis password is read from
// BTEDITOR_REDIS_PASSWORD.
func (o *storeOpts) open(ctx context.Context) (project.Store, error) {
	switch o.backend {
	case storeFile:
		dir := o.dir
		if dir == "" {
			d, err := dataDir()
			if err != nil {
				return nil, fmt.Errorf("get data dir: %w", err)
			}
			dir = filepath.Join(d, "projects")
		}
		s, err := project.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storeRedis:
		return project.NewRedisStore(o.redisAddr, os.Getenv("BTEDITOR_REDIS_PASSWORD"), o.redisDB), nil
	case storeMongo:
		s, err := project.NewMongoStore(ctx, o.mongoURI)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("invalid store: %s (must be 'file', 'redis', or 'mongo')", o.backend)
}

// =============================================================================
// Caches
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bteditor/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/bteditor/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Files
// =============================================================================

// writeFileWith creates path and lets write fill it. The file is closed
// before returning and its close error is reported.
func writeFileWith(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
