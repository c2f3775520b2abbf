package render

import (
	"bufio"
	"fmt"

	"repairboard/internal/storage"
)

// History writes journal entries oldest first, one per line.
func (r *Renderer) History(entries []storage.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := bufio.NewWriter(r.out)
	if len(entries) == 0 {
		fmt.Fprintln(w, r.paint("  (journal is empty)", mutedColor, false))
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-14s %s", e.At.Local().Format("01/02 15:04:05"), e.Action, e.TaskID)
		if e.Name != "" {
			line += " (" + trunc(e.Name, 20) + ")"
		}
		if e.Field != "" {
			line += fmt.Sprintf(" %s=%q", e.Field, trunc(e.Value, 40))
		}
		if e.Error != "" {
			line += "  " + r.paint(e.Error, deadlineColor, false)
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
