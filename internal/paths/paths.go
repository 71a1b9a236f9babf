// Package paths centralizes file and directory names used across the project.
// Diagnostic output lives under the user cache directory so the monitored
// file's directory and the working directory stay untouched.
package paths

import (
	"os"
	"path/filepath"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Cache directory file names.
const (
	LogFile     = "dlwatch.log"
	BinaryName  = "dlwatch"
	CacheDirRel = "dlwatch" // relative to the user cache directory
)

// ///////////////////////////////////////////////
// CacheDir
// ///////////////////////////////////////////////

// CacheDir provides path construction methods rooted at a cache directory.
type CacheDir struct {
	Root string
}

// Log returns the full path to the diagnostic log file.
func (d CacheDir) Log() string { return filepath.Join(d.Root, LogFile) }

// DefaultCacheDir returns the platform default cache directory for dlwatch,
// typically ~/.cache/dlwatch on Linux. Falls back to a directory under the
// system temp dir if the user cache directory cannot be determined.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), CacheDirRel)
	}
	return filepath.Join(base, CacheDirRel)
}
