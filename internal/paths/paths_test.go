// Tests for cache directory path construction.
package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDirLog(t *testing.T) {
	d := CacheDir{Root: filepath.Join("tmp", "cache")}
	want := filepath.Join("tmp", "cache", LogFile)
	if got := d.Log(); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}
}

func TestDefaultCacheDir(t *testing.T) {
	got := DefaultCacheDir()
	if got == "" {
		t.Fatal("DefaultCacheDir() returned empty string")
	}
	if !strings.HasSuffix(got, CacheDirRel) {
		t.Errorf("DefaultCacheDir() = %q, expected to end with %q", got, CacheDirRel)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("DefaultCacheDir() = %q, expected an absolute path", got)
	}
}
