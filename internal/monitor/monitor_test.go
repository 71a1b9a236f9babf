// Tests for the monitor loop: idle detection, shrink clamping, waiting and
// file-gone behavior, and end-to-end runs over a scripted filesystem.
package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// scriptedStat returns a Stat function that replays the given observations in
// order, then repeats the last one. An entry with err != nil simulates a
// failed read.
type observation struct {
	size int64
	err  error
}

func scriptedStat(obs []observation) func(string) (int64, error) {
	i := 0
	return func(string) (int64, error) {
		o := obs[i]
		if i < len(obs)-1 {
			i++
		}
		return o.size, o.err
	}
}

// newTestMonitor builds a Monitor writing to buf with a scripted Stat and a
// fixed 80-column width.
func newTestMonitor(buf *bytes.Buffer, obs []observation) *Monitor {
	m := New(Config{
		Path:  "download.bin",
		Out:   buf,
		Stat:  scriptedStat(obs),
		Width: func() int { return 80 },
	})
	m.start = time.Now()
	return m
}

// ///////////////////////////////////////////////
// Idle Detection
// ///////////////////////////////////////////////

func TestIdleStopsOnFifthZeroDelta(t *testing.T) {
	var buf bytes.Buffer
	obs := make([]observation, 8)
	for i := range obs {
		obs[i] = observation{size: 100}
	}
	m := newTestMonitor(&buf, obs)

	// Read 1 records the initial size; reads 2-5 accumulate four zero deltas.
	for i := 0; i < 5; i++ {
		done, _ := m.step()
		if done {
			t.Fatalf("stopped after %d reads; idle limit should need 5 zero deltas", i+1)
		}
	}
	if m.noChangeCount != 4 {
		t.Fatalf("noChangeCount = %d after 5 reads, want 4", m.noChangeCount)
	}

	// Read 6 is the fifth consecutive zero delta.
	done, reason := m.step()
	if !done {
		t.Fatal("expected stop on the fifth consecutive zero delta")
	}
	if reason != ReasonIdle {
		t.Errorf("reason = %v, want %v", reason, ReasonIdle)
	}
}

func TestIdleCounterResetsOnGrowth(t *testing.T) {
	var buf bytes.Buffer
	obs := []observation{
		{size: 100}, {size: 100}, {size: 100}, {size: 100}, {size: 100},
		{size: 200}, // growth on the 6th read
		{size: 200},
	}
	m := newTestMonitor(&buf, obs)

	for i := 0; i < 6; i++ {
		if done, _ := m.step(); done {
			t.Fatalf("unexpected stop at read %d", i+1)
		}
	}
	if m.noChangeCount != 0 {
		t.Errorf("noChangeCount = %d after growth, want 0", m.noChangeCount)
	}

	// One more idle read starts the count over at 1, not 5.
	if done, _ := m.step(); done {
		t.Fatal("stopped on the first zero delta after growth")
	}
	if m.noChangeCount != 1 {
		t.Errorf("noChangeCount = %d, want 1", m.noChangeCount)
	}
}

// ///////////////////////////////////////////////
// Delta Clamping
// ///////////////////////////////////////////////

func TestShrinkTreatedAsZeroDelta(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf, []observation{{size: 100}, {size: 80}})

	m.step() // initial
	buf.Reset()
	if done, _ := m.step(); done {
		t.Fatal("unexpected stop on shrink")
	}

	out := buf.String()
	if !strings.Contains(out, "Speed: 0 B/s") {
		t.Errorf("shrink should render as zero speed, got %q", out)
	}
	if strings.Contains(out, "-") {
		t.Errorf("shrink must never render a negative value, got %q", out)
	}
	if m.noChangeCount != 1 {
		t.Errorf("noChangeCount = %d, want 1 (shrink counts as idle)", m.noChangeCount)
	}
}

// ///////////////////////////////////////////////
// Initial Observation
// ///////////////////////////////////////////////

func TestFirstReadRecordsInitialSize(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf, []observation{{size: 4096}, {size: 4096}})

	if done, _ := m.step(); done {
		t.Fatal("unexpected stop on first read")
	}
	if !m.haveInitial || m.initialSize != 4096 {
		t.Errorf("initialSize = %d (have=%v), want 4096", m.initialSize, m.haveInitial)
	}
	if !strings.Contains(buf.String(), "Initial size: 4.00 KB") {
		t.Errorf("expected initial size announcement, got %q", buf.String())
	}
}

func TestInitialSizeSetOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf, []observation{{size: 100}, {size: 500}, {size: 900}})

	m.step()
	m.step()
	m.step()
	if m.initialSize != 100 {
		t.Errorf("initialSize = %d, want 100 (must not move after first read)", m.initialSize)
	}
}

// ///////////////////////////////////////////////
// Read Failures
// ///////////////////////////////////////////////

func TestWaitingBeforeFirstSuccess(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf, []observation{{err: os.ErrNotExist}})

	for i := 0; i < 3; i++ {
		done, _ := m.step()
		if done {
			t.Fatal("missing file before first success must not stop the loop")
		}
	}
	if !strings.Contains(buf.String(), "Waiting for file to appear...") {
		t.Errorf("expected waiting status, got %q", buf.String())
	}
	if m.havePrevious {
		t.Error("havePrevious should remain false while waiting")
	}
}

func TestFileGoneAfterSuccess(t *testing.T) {
	var buf bytes.Buffer
	readErr := errors.New("permission denied")
	m := newTestMonitor(&buf, []observation{{size: 2048}, {err: readErr}})

	m.step()
	done, reason := m.step()
	if !done {
		t.Fatal("expected stop when the file becomes inaccessible")
	}
	if reason != ReasonFileGone {
		t.Errorf("reason = %v, want %v", reason, ReasonFileGone)
	}
	if !strings.Contains(buf.String(), "File no longer accessible: permission denied") {
		t.Errorf("expected error announcement, got %q", buf.String())
	}

	s := m.summarize(reason)
	if s.FinalSize != 2048 {
		t.Errorf("FinalSize = %d, want last known size 2048", s.FinalSize)
	}
}

// ///////////////////////////////////////////////
// Run End-to-End
// ///////////////////////////////////////////////

func TestRunGrowThenIdle(t *testing.T) {
	// File exists at size 0, grows to 1024 over one tick, then stays constant.
	var buf bytes.Buffer
	obs := []observation{{size: 0}, {size: 1024}}
	for i := 0; i < 6; i++ {
		obs = append(obs, observation{size: 1024})
	}

	m := New(Config{
		Path:     "download.bin",
		Out:      &buf,
		Interval: 5 * time.Millisecond,
		Stat:     scriptedStat(obs),
		Width:    func() int { return 80 },
	})

	stop := make(chan os.Signal)
	s := m.Run(stop, nil)

	if s.Reason != ReasonIdle {
		t.Fatalf("Reason = %v, want %v", s.Reason, ReasonIdle)
	}
	if s.TotalDownloaded() != 1024 {
		t.Errorf("TotalDownloaded() = %d, want 1024", s.TotalDownloaded())
	}
	if s.FinalSize != 1024 {
		t.Errorf("FinalSize = %d, want 1024", s.FinalSize)
	}
	if !s.HasInitial || s.InitialSize != 0 {
		t.Errorf("InitialSize = %d (have=%v), want 0", s.InitialSize, s.HasInitial)
	}
	if !strings.Contains(buf.String(), "Monitoring download speed for: download.bin") {
		t.Errorf("expected header line, got %q", buf.String())
	}
}

func TestRunInterruptWhileWaiting(t *testing.T) {
	// The path never exists: repeated waiting statuses until interrupted,
	// then a summary with no initial size and zero totals.
	var buf bytes.Buffer
	m := New(Config{
		Path:     "never-exists.bin",
		Out:      &buf,
		Interval: 5 * time.Millisecond,
		Stat:     func(string) (int64, error) { return 0, os.ErrNotExist },
		Width:    func() int { return 80 },
	})

	stop := make(chan os.Signal, 1)
	go func() {
		time.Sleep(30 * time.Millisecond)
		stop <- os.Interrupt
	}()

	s := m.Run(stop, nil)

	if s.Reason != ReasonInterrupt {
		t.Fatalf("Reason = %v, want %v", s.Reason, ReasonInterrupt)
	}
	if s.HasInitial {
		t.Error("HasInitial = true for a file that never existed")
	}
	if s.FinalSize != 0 || s.TotalDownloaded() != 0 {
		t.Errorf("FinalSize = %d, TotalDownloaded = %d, want 0 and 0",
			s.FinalSize, s.TotalDownloaded())
	}
	if !strings.Contains(buf.String(), "Waiting for file to appear...") {
		t.Errorf("expected waiting status, got %q", buf.String())
	}
}

func TestRunAppearanceHintWakesWaitingLoop(t *testing.T) {
	var buf bytes.Buffer
	var exists atomic.Bool
	m := New(Config{
		Path: "download.bin",
		Out:  &buf,
		// Long interval so only the appearance hint can deliver the first
		// read within the test window.
		Interval: time.Hour,
		Stat: func(string) (int64, error) {
			if !exists.Load() {
				return 0, os.ErrNotExist
			}
			return 512, nil
		},
		Width: func() int { return 80 },
	})

	stop := make(chan os.Signal, 1)
	appeared := make(chan struct{}, 1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		exists.Store(true)
		appeared <- struct{}{}
		time.Sleep(50 * time.Millisecond)
		stop <- os.Interrupt
	}()

	s := m.Run(stop, appeared)

	if !s.HasInitial || s.InitialSize != 512 {
		t.Fatalf("InitialSize = %d (have=%v), want 512 via appearance hint",
			s.InitialSize, s.HasInitial)
	}
	if s.FinalSize != 512 {
		t.Errorf("FinalSize = %d, want 512", s.FinalSize)
	}
}

// ///////////////////////////////////////////////
// Real Filesystem Stat
// ///////////////////////////////////////////////

func TestStatSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download.bin")
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), 1234), 0o644); err != nil {
		t.Fatal(err)
	}

	size, err := statSize(path)
	if err != nil {
		t.Fatalf("statSize: %v", err)
	}
	if size != 1234 {
		t.Errorf("statSize = %d, want 1234", size)
	}

	if _, err := statSize(filepath.Join(dir, "missing")); err == nil {
		t.Error("statSize on a missing file should return an error")
	}
}

// ///////////////////////////////////////////////
// Reason Strings
// ///////////////////////////////////////////////

func TestReasonString(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonInterrupt, "interrupt"},
		{ReasonIdle, "idle timeout"},
		{ReasonFileGone, "file inaccessible"},
		{Reason(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Status Line Content
// ///////////////////////////////////////////////

func TestSpeedStatusLine(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf, []observation{{size: 0}, {size: 1536}})

	m.step()
	buf.Reset()
	m.step()

	out := buf.String()
	if !strings.HasPrefix(out, "\r") {
		t.Errorf("status line should start with a carriage return, got %q", out)
	}
	want := fmt.Sprintf("Size: %s | Speed: %s", "1.50 KB", "1.50 KB/s")
	if !strings.Contains(out, want) {
		t.Errorf("status line = %q, want it to contain %q", out, want)
	}
}
