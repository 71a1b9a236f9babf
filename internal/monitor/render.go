package monitor

import (
	"fmt"
	"strings"
)

// ///////////////////////////////////////////////
// Status Line Rendering
// ///////////////////////////////////////////////

// defaultWidth is used when the terminal width cannot be determined.
const defaultWidth = 80

// renderStatus overwrites the current terminal line with text. The line is
// padded with spaces to the terminal width so remnants of a longer previous
// status never show through, and truncated if it would wrap.
func (m *Monitor) renderStatus(text string) {
	fmt.Fprintf(m.cfg.Out, "\r%s", fitToWidth(text, m.cfg.Width()))
}

// fitToWidth pads text with trailing spaces up to width-1 columns, or
// truncates it to fit. One column is reserved so the cursor never spills
// onto the next line.
func fitToWidth(text string, width int) string {
	if width <= 1 {
		width = defaultWidth
	}
	max := width - 1
	if len(text) > max {
		return text[:max]
	}
	return text + strings.Repeat(" ", max-len(text))
}
