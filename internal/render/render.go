// Package render draws a session view as a text table with a Gantt chart
// to its right.
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"repairboard/internal/board"
	"repairboard/internal/photo"
	"repairboard/internal/session"
)

const (
	dayWidth     = 3
	barRune      = "█"
	markerRune   = "▼"
	overflowRune = "›"
	emptyDay     = " · "
	separator    = " │ "

	photoNone = "◌"
	photoSet  = "▣"

	deadlineColor = "#ff1744"
	mutedColor    = "#9e9e9e"
)

type column struct {
	title string
	width int
	right bool
	field board.Field
}

var columns = []column{
	{title: "", width: 1},
	{title: "ID", width: 8, field: board.FieldID},
	{title: "", width: 1, field: board.FieldPhotoURL},
	{title: "NAME", width: 16, field: board.FieldName},
	{title: "PHONE", width: 11, field: board.FieldPhone},
	{title: "STATUS", width: 13, field: board.FieldStatus},
	{title: "DEADLINE", width: 10, field: board.FieldDeadline},
	{title: "HOURS", width: 6, right: true, field: board.FieldEstimatedHours},
}

func dataWidth() int {
	w := len(columns) - 1
	for _, c := range columns {
		w += c.width
	}
	return w
}

// TableWidth is the display width of the data columns and the separator.
func TableWidth() int { return dataWidth() + lipgloss.Width(separator) }

// Options control output. Width 0 means unlimited.
type Options struct {
	Color bool
	Width int
}

// Renderer is safe for concurrent use; output is serialized.
type Renderer struct {
	mu   sync.Mutex
	out  io.Writer
	lg   *lipgloss.Renderer
	opts Options
}

func New(out io.Writer, opts Options) *Renderer {
	return &Renderer{out: out, lg: lipgloss.NewRenderer(out), opts: opts}
}

func (r *Renderer) SetOptions(opts Options) {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
}

func (r *Renderer) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

func (r *Renderer) paint(s, color string, bold bool) string {
	if !r.opts.Color {
		return s
	}
	st := r.lg.NewStyle().Foreground(lipgloss.Color(color))
	if bold {
		st = st.Bold(true)
	}
	return st.Render(s)
}

// visibleDays is how many axis columns fit next to the table.
func (r *Renderer) visibleDays(axisLen int) int {
	if r.opts.Width <= 0 {
		return axisLen
	}
	room := (r.opts.Width - TableWidth()) / dayWidth
	return max(0, min(axisLen, room))
}

// Board writes the full view: headers, one line per row, the detail block
// of the row open for editing, and a status line.
func (r *Renderer) Board(v session.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := bufio.NewWriter(r.out)
	days := r.visibleDays(len(v.Axis))
	axis := v.Axis[:days]
	trimmed := days < len(v.Axis)

	monthLine, dayLine := r.axisHeader(axis)
	blank := strings.Repeat(" ", dataWidth())
	if days > 0 {
		fmt.Fprintf(w, "%s%s%s\n", blank, separator, monthLine)
	}
	fmt.Fprintf(w, "%s", r.tableHeader(v.Sort))
	if days > 0 {
		fmt.Fprintf(w, "%s%s", separator, dayLine)
	}
	fmt.Fprintln(w)

	for _, row := range v.Rows {
		cells := row.Cells
		if trimmed {
			cells = board.PlaceBar(axis, row.Task)
		}
		fmt.Fprint(w, r.tableRow(row))
		if days > 0 {
			fmt.Fprint(w, separator+r.gantt(cells))
		}
		fmt.Fprintln(w)
		if row.Editing {
			r.details(w, row.Task)
		}
	}
	if len(v.Rows) == 0 {
		fmt.Fprintln(w, r.paint("  (no tasks)", mutedColor, false))
	}
	fmt.Fprintln(w, r.paint(statusLine(v, days), mutedColor, false))
	return w.Flush()
}

func (r *Renderer) axisHeader(axis []string) (string, string) {
	var months, days strings.Builder
	for i, d := range axis {
		mm, dd := d[5:7], d[8:10]
		if i == 0 || dd == "01" {
			months.WriteString(mm + "/")
		} else {
			months.WriteString("   ")
		}
		days.WriteString(dd + " ")
	}
	return strings.TrimRight(months.String(), " "), strings.TrimRight(days.String(), " ")
}

func (r *Renderer) tableHeader(sort *board.SortSpec) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		title := c.title
		if sort != nil && c.field != "" && sort.Key == c.field {
			if sort.Asc {
				title += "↑"
			} else {
				title += "↓"
			}
		}
		if c.right {
			parts[i] = padLeft(title, c.width)
		} else {
			parts[i] = pad(title, c.width)
		}
	}
	return r.paint(strings.Join(parts, " "), mutedColor, true)
}

func (r *Renderer) tableRow(row session.Row) string {
	t := row.Task
	mark := " "
	if row.Editing {
		mark = ">"
	}
	icon := photoNone
	if t.PhotoURL != "" {
		icon = photoSet
	}
	deadline := t.Deadline
	if deadline == "" {
		deadline = "unset"
	}
	parts := []string{
		mark,
		pad(t.ID, columns[1].width),
		icon,
		pad(t.Name, columns[3].width),
		pad(t.Phone, columns[4].width),
		r.paint(pad(t.Status.String(), columns[5].width), t.Status.Color(), false),
		pad(deadline, columns[6].width),
		padLeft(FormatHours(t.EstimatedHours), columns[7].width),
	}
	return strings.Join(parts, " ")
}

// gantt draws one character triple per column; a bar of span n is drawn
// as one run of n*3 characters.
func (r *Renderer) gantt(cells []board.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		switch c.Kind {
		case board.CellBar:
			b.WriteString(r.bar(c))
		case board.CellCovered:
			// drawn by the bar
		case board.CellDeadline:
			b.WriteString(" " + r.paint(markerRune, deadlineColor, true) + " ")
		default:
			b.WriteString(r.paint(emptyDay, mutedColor, false))
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func (r *Renderer) bar(c board.Cell) string {
	width := c.Span * dayWidth
	runes := make([]string, width)
	for i := range runes {
		runes[i] = r.paint(barRune, c.Color, false)
	}
	if c.Marker {
		pos := int(math.Floor(c.MarkerOffset * float64(width)))
		// centre the marker in its day
		pos = min(width-1, pos+dayWidth/2)
		runes[pos] = r.paint(markerRune, deadlineColor, true)
	}
	if c.Overflow {
		runes[width-1] = r.paint(overflowRune, c.Color, true)
	}
	return strings.Join(runes, "")
}

func (r *Renderer) details(w io.Writer, t board.Task) {
	line := func(label, value string) {
		fmt.Fprintf(w, "    %s %s\n", r.paint(pad(label+":", 14), mutedColor, false), value)
	}
	line("id", t.ID)
	line("email", t.Email)
	line("span", t.Start+" .. "+t.End)
	ph := "none"
	if t.PhotoURL != "" {
		if mime := photo.MIME(t.PhotoURL); mime != "" {
			ph = fmt.Sprintf("%s, %d bytes", mime, len(t.PhotoURL))
		} else {
			ph = trunc(t.PhotoURL, 48)
		}
	}
	line("photo", ph)
	for _, f := range []board.Field{board.FieldMenu, board.FieldMemo, board.FieldAssignee, board.FieldModelNumber} {
		v := t.Text(f)
		if v == "" {
			v = r.paint("-", mutedColor, false)
		}
		line(string(f), v)
	}
}

func statusLine(v session.View, days int) string {
	parts := []string{fmt.Sprintf("%d of %d tasks", len(v.Rows), v.Total)}
	if strings.TrimSpace(v.Search) != "" {
		parts = append(parts, fmt.Sprintf("search %q", strings.TrimSpace(v.Search)))
	}
	if v.Sort != nil {
		dir := "asc"
		if !v.Sort.Asc {
			dir = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", v.Sort.Key, dir))
	}
	window := fmt.Sprintf("from %s, %d days", v.Today, v.Days)
	if days < len(v.Axis) {
		window += fmt.Sprintf(" (%d shown)", days)
	}
	parts = append(parts, window)
	return "  " + strings.Join(parts, " · ")
}

// FormatHours prints hours without a trailing ".0".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
