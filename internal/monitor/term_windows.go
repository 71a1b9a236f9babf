// Windows terminal width detection via the console API.

//go:build windows

package monitor

import (
	"os"

	"golang.org/x/sys/windows"
)

// ///////////////////////////////////////////////
// Terminal Width
// ///////////////////////////////////////////////

// terminalWidth returns the column count of the console attached to stdout,
// or [defaultWidth] when stdout is not a console (e.g. piped output).
func terminalWidth() int {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(os.Stdout.Fd()), &info); err != nil {
		return defaultWidth
	}
	w := int(info.Window.Right-info.Window.Left) + 1
	if w <= 0 {
		return defaultWidth
	}
	return w
}
