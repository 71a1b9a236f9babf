// Package monitor implements the polling loop that watches a file's on-disk
// size to estimate download progress, plus the final summary it produces.
//
// The loop observes the file once per tick, renders a status line over the
// previous one, and stops on one of three conditions: an external interrupt,
// five consecutive ticks without growth, or the file becoming inaccessible
// after it was read at least once. All three end with a summary.
package monitor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"tools.zach/dev/dlwatch/internal/format"
)

// ///////////////////////////////////////////////
// Stop Reasons
// ///////////////////////////////////////////////

// Reason identifies which stop condition ended the monitor loop.
type Reason int

const (
	// ReasonInterrupt means an external interrupt signal was received.
	ReasonInterrupt Reason = iota
	// ReasonIdle means the idle limit of consecutive zero-growth ticks was hit.
	ReasonIdle
	// ReasonFileGone means the file became inaccessible after a successful read.
	ReasonFileGone
)

// String returns a short human-readable name for the stop reason.
func (r Reason) String() string {
	switch r {
	case ReasonInterrupt:
		return "interrupt"
	case ReasonIdle:
		return "idle timeout"
	case ReasonFileGone:
		return "file inaccessible"
	default:
		return "unknown"
	}
}

// ///////////////////////////////////////////////
// Configuration
// ///////////////////////////////////////////////

// Fixed monitoring parameters. Neither is user-configurable; the Config
// fields exist so tests can run on a fast clock.
const (
	DefaultInterval  = time.Second
	DefaultIdleLimit = 5
)

// Config carries the monitor's target and its injectable edges.
type Config struct {
	// Path is the file whose size is monitored.
	Path string
	// Out receives status lines and announcements. Defaults to os.Stdout.
	Out io.Writer
	// Interval is the poll cadence. Defaults to [DefaultInterval].
	Interval time.Duration
	// IdleLimit is the number of consecutive zero-delta ticks that triggers
	// the idle stop. Defaults to [DefaultIdleLimit].
	IdleLimit int
	// Stat returns the current size of the file at a path. Defaults to an
	// os.Stat-based implementation; injectable for tests.
	Stat func(path string) (int64, error)
	// Width returns the terminal width used to pad status lines. Defaults to
	// the platform terminal query; injectable for tests.
	Width func() int
}

// statSize reads a file's current size from the filesystem.
func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ///////////////////////////////////////////////
// Monitor
// ///////////////////////////////////////////////

// Monitor owns all loop state. Nothing here is shared with other goroutines;
// the stop and appearance channels passed to [Monitor.Run] are the only
// cross-goroutine touch points.
type Monitor struct {
	cfg Config

	// initialSize is the first successfully observed size. Set at most once.
	initialSize int64
	// haveInitial records whether initialSize has been set.
	haveInitial bool
	// previousSize is the size observed at the prior tick.
	previousSize int64
	// havePrevious records whether any successful read has happened yet.
	havePrevious bool
	// lastKnownSize is the most recent successfully observed size, reported
	// as the final size if the file later becomes inaccessible.
	lastKnownSize int64
	// noChangeCount counts consecutive ticks with zero delta.
	noChangeCount int
	// start is fixed when [Monitor.Run] begins.
	start time.Time
}

// New creates a Monitor for the given config, applying defaults for any
// zero-valued optional field.
func New(cfg Config) *Monitor {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.IdleLimit <= 0 {
		cfg.IdleLimit = DefaultIdleLimit
	}
	if cfg.Stat == nil {
		cfg.Stat = statSize
	}
	if cfg.Width == nil {
		cfg.Width = terminalWidth
	}
	return &Monitor{cfg: cfg}
}

// Run executes the monitor loop until a stop condition holds and returns the
// resulting [Summary]. The stop channel delivers external interrupts; the
// optional appeared channel (may be nil) hints that the awaited file was just
// created, letting the loop re-check immediately instead of waiting out the
// current tick. Appearance hints are ignored once the file has been read.
func (m *Monitor) Run(stop <-chan os.Signal, appeared <-chan struct{}) Summary {
	m.start = time.Now()

	idleSecs := int64(m.cfg.Interval.Seconds()) * int64(m.cfg.IdleLimit)
	fmt.Fprintf(m.cfg.Out, "Monitoring download speed for: %s\n", m.cfg.Path)
	fmt.Fprintf(m.cfg.Out, "Press Ctrl+C to stop (auto-exits after %s of no activity)\n\n",
		format.Duration(idleSecs))

	if done, reason := m.step(); done {
		return m.summarize(reason)
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			slog.Info("interrupt received, stopping monitor")
			return m.summarize(ReasonInterrupt)

		case <-appeared:
			// Only useful while still waiting for the first read.
			if m.havePrevious {
				continue
			}
			if done, reason := m.step(); done {
				return m.summarize(reason)
			}

		case <-ticker.C:
			if done, reason := m.step(); done {
				return m.summarize(reason)
			}
		}
	}
}

// step performs one observation of the file and updates loop state. It
// returns done=true with the stop reason when a stop condition holds.
func (m *Monitor) step() (done bool, reason Reason) {
	size, err := m.cfg.Stat(m.cfg.Path)
	if err != nil {
		if m.havePrevious {
			// The file was readable before; losing it ends the run.
			slog.Warn("file no longer accessible", "path", m.cfg.Path, "error", err)
			fmt.Fprintf(m.cfg.Out, "\nFile no longer accessible: %v\n", err)
			return true, ReasonFileGone
		}
		// Not created yet; keep polling.
		m.renderStatus("Waiting for file to appear...")
		return false, 0
	}

	m.lastKnownSize = size

	if !m.haveInitial {
		m.initialSize = size
		m.haveInitial = true
		slog.Info("first observation", "path", m.cfg.Path, "size", size)
	}

	if m.havePrevious {
		// Size is assumed monotonically non-decreasing; an apparent shrink
		// (filesystem metadata jitter) counts as zero growth, never as a
		// negative speed.
		delta := size - m.previousSize
		if delta < 0 {
			delta = 0
		}

		if delta == 0 {
			m.noChangeCount++
			m.renderStatus(fmt.Sprintf("Size: %s | Speed: 0 B/s (idle %d/%d)",
				format.Bytes(size), m.noChangeCount, m.cfg.IdleLimit))
			if m.noChangeCount >= m.cfg.IdleLimit {
				slog.Info("idle limit reached", "ticks", m.noChangeCount)
				m.previousSize = size
				return true, ReasonIdle
			}
		} else {
			m.noChangeCount = 0
			m.renderStatus(fmt.Sprintf("Size: %s | Speed: %s",
				format.Bytes(size), format.Speed(m.bytesPerSecond(delta))))
		}
	} else {
		fmt.Fprintf(m.cfg.Out, "Initial size: %s\n", format.Bytes(size))
	}

	m.previousSize = size
	m.havePrevious = true
	return false, 0
}

// bytesPerSecond converts a per-tick byte delta into a per-second rate. With
// the fixed 1-second interval the rate equals the delta.
func (m *Monitor) bytesPerSecond(delta int64) int64 {
	secs := m.cfg.Interval.Seconds()
	if secs <= 0 {
		return delta
	}
	return int64(float64(delta) / secs)
}

// summarize captures the loop's final state into a [Summary].
func (m *Monitor) summarize(reason Reason) Summary {
	s := Summary{
		FinalSize: m.lastKnownSize,
		Elapsed:   time.Since(m.start),
		Reason:    reason,
	}
	if m.haveInitial {
		s.InitialSize = m.initialSize
		s.HasInitial = true
	}
	return s
}
