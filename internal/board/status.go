package board

import (
	"fmt"
	"strings"
)

// Status is the progress of a repair job. The declaration order is
// significant: sorting by status uses it, and so does the bar color.
type Status int

const (
	StatusNotStarted Status = iota
	StatusPartsOrdered
	StatusPartsArrived
	StatusOnHold
	StatusInProgress
	StatusDone
)

type statusInfo struct {
	key   string
	label string
	color string
}

var statusTable = [...]statusInfo{
	StatusNotStarted:   {key: "not_started", label: "Not Started", color: "#ff5252"},
	StatusPartsOrdered: {key: "parts_ordered", label: "Parts Ordered", color: "#ffd600"},
	StatusPartsArrived: {key: "parts_arrived", label: "Parts Arrived", color: "#8dbbff"},
	StatusOnHold:       {key: "on_hold", label: "On Hold", color: "#ff9800"},
	StatusInProgress:   {key: "in_progress", label: "In Progress", color: "#039be5"},
	StatusDone:         {key: "done", label: "Done", color: "#4caf50"},
}

// UnknownStatusColor is used for values outside the enumeration.
const UnknownStatusColor = "#bdbdbd"

// Statuses returns every status in display order.
func Statuses() []Status {
	out := make([]Status, len(statusTable))
	for i := range statusTable {
		out[i] = Status(i)
	}
	return out
}

func (s Status) valid() bool { return s >= 0 && int(s) < len(statusTable) }

func (s Status) String() string {
	if !s.valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusTable[s].label
}

// Key is the snake_case identifier used in configs, events and commands.
func (s Status) Key() string {
	if !s.valid() {
		return ""
	}
	return statusTable[s].key
}

// Color is the bar color of the status as a #rrggbb string.
func (s Status) Color() string {
	if !s.valid() {
		return UnknownStatusColor
	}
	return statusTable[s].color
}

// ParseStatus accepts a key ("in_progress"), a label ("In Progress") or the
// position in the enumeration ("4"). Matching ignores case and treats spaces,
// dashes and underscores alike.
func ParseStatus(raw string) (Status, error) {
	norm := normalizeStatus(raw)
	if norm == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidStatus)
	}
	for i, st := range statusTable {
		if norm == st.key || norm == normalizeStatus(st.label) {
			return Status(i), nil
		}
	}
	if len(norm) == 1 && norm[0] >= '0' && int(norm[0]-'0') < len(statusTable) {
		return Status(norm[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.Key()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
