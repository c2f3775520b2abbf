package console

import (
	"os"

	"golang.org/x/term"
)

// terminalWidth reports the column count of stdout, or 0 when stdout is
// not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
