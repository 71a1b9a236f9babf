// Unix/Darwin terminal width detection via the TIOCGWINSZ ioctl.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).

//go:build !windows

package monitor

import (
	"os"

	"golang.org/x/sys/unix"
)

// ///////////////////////////////////////////////
// Terminal Width
// ///////////////////////////////////////////////

// terminalWidth returns the column count of the terminal attached to stdout,
// or [defaultWidth] when stdout is not a terminal (e.g. piped output).
func terminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return defaultWidth
	}
	return int(ws.Col)
}
