package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/bteditor/pkg/cache"
)

func TestClearCacheMissingDir(t *testing.T) {
	if err := clearCache(filepath.Join(t.TempDir(), "none")); err != nil {
		t.Errorf("clearCache() error: %v", err)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}

	if err := clearCache(dir); err != nil {
		t.Fatalf("clearCache() error: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "k"); ok {
		t.Error("entry survived clear")
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	c := newTestCLI()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", appName) + "\n"; out.String() != want {
		t.Errorf("cache path = %q, want %q", out.String(), want)
	}
}

func TestCacheUsage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := fc.Set(ctx, k, []byte("data"), 0); err != nil {
			t.Fatal(err)
		}
	}

	entries, size, err := cacheUsage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if entries != 2 || size == 0 {
		t.Errorf("cacheUsage() = %d, %d", entries, size)
	}
}

func TestFmtBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1536:    "1.5 KiB",
		3 << 20: "3.0 MiB",
	}
	for n, want := range tests {
		if got := fmtBytes(n); got != want {
			t.Errorf("fmtBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
