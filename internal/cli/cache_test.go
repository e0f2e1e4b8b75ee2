package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDirDefault(t *testing.T) {
	c, _ := testCLI(t, nil)
	cacheHome := os.Getenv("XDG_CACHE_HOME")

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(cacheHome, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c, _ := testCLI(t, nil)
	custom := t.TempDir()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, c, "cache", "path", "--config", path)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != custom {
		t.Errorf("cache path = %q, want %q", out, custom)
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := testCLI(t, nil)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(dir, "ab", "entry.json")
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, c, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared cache") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Error("cache entry should be removed")
	}
}

func TestCacheClearOtherBackend(t *testing.T) {
	c, _ := testCLI(t, nil)

	out, err := run(t, c, "cache", "clear", "--no-cache")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "cannot be cleared") {
		t.Errorf("output = %q", out)
	}
}
