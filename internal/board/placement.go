package board

// CellKind tells the presentation what to draw in one date column.
type CellKind int

const (
	CellEmpty    CellKind = iota
	CellBar                // first column of a merged bar spanning Span columns
	CellCovered            // absorbed into the bar to its left; draw nothing
	CellDeadline           // standalone deadline marker outside the bar
)

func (k CellKind) String() string {
	switch k {
	case CellBar:
		return "bar"
	case CellCovered:
		return "covered"
	case CellDeadline:
		return "deadline"
	default:
		return "empty"
	}
}

// Cell is the rendering directive for one axis column of one task.
type Cell struct {
	Kind CellKind
	Date string

	// Bar only.
	Span     int
	Color    string
	Overflow bool // the job continues past the last visible day

	// Marker is set when the deadline falls inside the bar; MarkerOffset is
	// its horizontal position as a fraction of the bar width, in [0, 1).
	Marker       bool
	MarkerOffset float64
}

// PlaceBar maps a task onto the axis, one Cell per column.
//
// A task whose start is not visible gets no bar. A task that starts inside
// the window but ends after it is clipped to the last column and flagged
// Overflow. A visible deadline outside the bar renders on its own column.
func PlaceBar(axis []string, t Task) []Cell {
	cells := make([]Cell, len(axis))
	for i, d := range axis {
		cells[i] = Cell{Kind: CellEmpty, Date: d}
	}
	if len(axis) == 0 {
		return cells
	}

	startIdx := IndexOf(axis, t.Start)
	endIdx := IndexOf(axis, t.End)
	deadlineIdx := IndexOf(axis, t.Deadline)

	overflow := false
	// YYYY-MM-DD strings order like the dates they spell
	if startIdx >= 0 && endIdx < 0 && t.End > axis[len(axis)-1] {
		endIdx = len(axis) - 1
		overflow = true
	}

	hasBar := startIdx >= 0 && endIdx >= startIdx
	if hasBar {
		span := endIdx - startIdx + 1
		bar := &cells[startIdx]
		bar.Kind = CellBar
		bar.Span = span
		bar.Color = t.Status.Color()
		bar.Overflow = overflow
		for i := startIdx + 1; i <= endIdx; i++ {
			cells[i].Kind = CellCovered
		}
		if deadlineIdx >= startIdx && deadlineIdx <= endIdx {
			bar.Marker = true
			bar.MarkerOffset = float64(deadlineIdx-startIdx) / float64(span)
		}
	}

	if deadlineIdx >= 0 && (!hasBar || deadlineIdx < startIdx || deadlineIdx > endIdx) {
		cells[deadlineIdx].Kind = CellDeadline
	}
	return cells
}
