// Package main implements dlwatch, which polls the on-disk size of a single
// file once per second to estimate download progress and throughput, printing
// a live status line and a final summary.
//
// It is meant for watching a download in progress (a browser or downloader
// writing to a file) when the transferring process itself is out of reach.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"tools.zach/dev/dlwatch/internal/logger"
	"tools.zach/dev/dlwatch/internal/monitor"
	"tools.zach/dev/dlwatch/internal/paths"
	"tools.zach/dev/dlwatch/internal/update"
	"tools.zach/dev/dlwatch/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically, so dev builds get a useful version string
// without needing git at runtime.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Argument Parsing
// ///////////////////////////////////////////////

// parseArgs validates the command line: exactly one positional argument, the
// path to monitor. Returns the path, or an error whose message is the usage
// line for stderr.
func parseArgs(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("Usage: %s <file_path>", filepath.Base(args[0]))
	}
	return args[1], nil
}

// ///////////////////////////////////////////////
// Diagnostics Setup
// ///////////////////////////////////////////////

// setupLogging initializes the rotating diagnostic log in the user cache
// directory and installs it as the slog default. Logging is best-effort: on
// any failure diagnostics are discarded and the monitor runs without them,
// since stdout belongs to the status line and stderr to usage errors only.
// The returned closer may be nil.
func setupLogging() func() {
	cacheDir := paths.CacheDir{Root: paths.DefaultCacheDir()}
	if err := os.MkdirAll(cacheDir.Root, 0o755); err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}
	}
	log, closer := logger.NewLogger(cacheDir.Log(), slog.LevelInfo)
	slog.SetDefault(log)
	return func() { _ = closer.Close() }
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	filePath, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	closeLog := setupLogging()
	defer closeLog()

	ver := resolveVersion()
	slog.Info("dlwatch starting", "version", ver, "path", filePath)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("update check panic", "error", r)
			}
		}()
		update.Check(ver)
	}()

	stop := signalChannel()

	// Appearance watcher: wakes the loop as soon as a not-yet-existing file
	// is created, instead of waiting out the current tick. Best-effort; the
	// poll loop works without it.
	var appeared <-chan struct{}
	if aw, watchErr := watch.New(filePath); watchErr == nil {
		defer aw.Close()
		appeared = aw.Events()
		if aw.Polling() {
			slog.Info("using polling mode for appearance watching")
		}
	} else {
		slog.Warn("appearance watcher unavailable", "error", watchErr)
	}

	m := monitor.New(monitor.Config{Path: filePath})
	summary := m.Run(stop, appeared)
	summary.Print(os.Stdout)

	slog.Info("monitor finished",
		"reason", summary.Reason.String(),
		"total", summary.TotalDownloaded(),
		"final_size", summary.FinalSize,
	)
}
