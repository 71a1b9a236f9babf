// Package format renders byte counts and durations as human-readable strings
// for the status line and the download summary. All functions are pure.
package format

import "fmt"

// ///////////////////////////////////////////////
// Units
// ///////////////////////////////////////////////

// Binary (1024-based) size units.
const (
	KB int64 = 1024
	MB int64 = KB * 1024
	GB int64 = MB * 1024
)

// ///////////////////////////////////////////////
// Bytes
// ///////////////////////////////////////////////

// Bytes formats a byte count using the largest binary unit in which the value
// is at least 1. KB/MB/GB values render with two decimal places; plain bytes
// render as an integer. Negative inputs are clamped to 0.
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Speed formats a per-second byte rate, e.g. "1.50 MB/s".
func Speed(bytesPerSec int64) string {
	return Bytes(bytesPerSec) + "/s"
}

// ///////////////////////////////////////////////
// Duration
// ///////////////////////////////////////////////

// Duration formats a second count as "Xh Ym Zs", omitting leading zero fields:
// hours appear only for durations of an hour or more, minutes only for a
// minute or more. The rendered components always recombine to exactly the
// input (h*3600 + m*60 + s == secs). Negative inputs are clamped to 0.
func Duration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs >= 3600:
		return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
	case secs >= 60:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
