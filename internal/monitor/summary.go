package monitor

import (
	"fmt"
	"io"
	"time"

	"tools.zach/dev/dlwatch/internal/format"
)

// ///////////////////////////////////////////////
// Summary
// ///////////////////////////////////////////////

// Summary is the result of a completed monitor run.
type Summary struct {
	// InitialSize is the first successfully observed size. Only meaningful
	// when HasInitial is true.
	InitialSize int64
	// HasInitial is false when the file was never successfully read.
	HasInitial bool
	// FinalSize is the last successfully observed size, or 0 if none.
	FinalSize int64
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
	// Reason records which stop condition ended the run.
	Reason Reason
}

// TotalDownloaded returns the growth observed over the run: the final size
// minus the initial size (taken as 0 when the file was never read), clamped
// to non-negative.
func (s Summary) TotalDownloaded() int64 {
	var initial int64
	if s.HasInitial {
		initial = s.InitialSize
	}
	total := s.FinalSize - initial
	if total < 0 {
		total = 0
	}
	return total
}

// Print writes the multi-line summary block to w. The average speed line is
// omitted when no whole second has elapsed, since a rate over a zero-length
// window is meaningless.
func (s Summary) Print(w io.Writer) {
	total := s.TotalDownloaded()
	elapsedSecs := int64(s.Elapsed.Seconds())

	fmt.Fprintf(w, "\n\n--- Download Summary ---\n")
	fmt.Fprintf(w, "Total downloaded: %s\n", format.Bytes(total))
	fmt.Fprintf(w, "Final size: %s\n", format.Bytes(s.FinalSize))
	fmt.Fprintf(w, "Duration: %s\n", format.Duration(elapsedSecs))

	if elapsedSecs > 0 {
		fmt.Fprintf(w, "Average speed: %s\n", format.Speed(total/elapsedSecs))
	}
}
