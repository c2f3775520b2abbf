package board

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortSpec orders the projection by one field.
type SortSpec struct {
	Key Field
	Asc bool
}

// Toggle mimics clicking a column header: a new key starts ascending, the
// current key flips direction. A nil receiver behaves like "no sort yet".
func (s *SortSpec) Toggle(key Field) *SortSpec {
	if s == nil || s.Key != key {
		return &SortSpec{Key: key, Asc: true}
	}
	return &SortSpec{Key: key, Asc: !s.Asc}
}

// ParseSortKey validates a sortable field name.
func ParseSortKey(raw string) (Field, error) {
	f, err := ParseField(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, raw)
	}
	return f, nil
}

// Project filters tasks by name and sorts the result. The input is not
// modified. A blank search keeps every task; a nil sort keeps input order.
// Sorting is stable.
func Project(tasks []Task, search string, sort *SortSpec) []Task {
	term := strings.TrimSpace(search)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if term == "" || strings.Contains(t.Name, term) {
			out = append(out, t)
		}
	}
	if sort == nil || sort.Key == "" {
		return out
	}
	key, asc := sort.Key, sort.Asc
	slices.SortStableFunc(out, func(a, b Task) int {
		return compareBy(key, a, b, asc)
	})
	return out
}

// sortValue is a field reduced to something comparable. null marks an absent
// optional value.
type sortValue struct {
	null  bool
	isNum bool
	num   float64
	str   string
}

func valueOf(t Task, f Field) sortValue {
	switch f {
	case FieldEstimatedHours:
		return sortValue{num: t.EstimatedHours, isNum: true}
	case FieldStatus:
		return sortValue{num: float64(t.Status), isNum: true}
	case FieldDeadline, FieldStart, FieldEnd:
		// unset dates compare as "", ahead of every real date
		return sortValue{str: t.Text(f)}
	case FieldMenu, FieldMemo, FieldAssignee, FieldModelNumber:
		if p := t.annotation(f); *p == nil {
			return sortValue{null: true}
		}
	}
	return sortValue{str: t.Text(f)}
}

// compareBy applies the null rule before the direction flip: a null sorts
// after a non-null ascending and before it descending.
func compareBy(f Field, a, b Task, asc bool) int {
	va, vb := valueOf(a, f), valueOf(b, f)
	switch {
	case va.null && vb.null:
		return 0
	case va.null:
		if asc {
			return 1
		}
		return -1
	case vb.null:
		if asc {
			return -1
		}
		return 1
	}

	var c int
	if va.isNum {
		c = cmp.Compare(va.num, vb.num)
	} else {
		c = strings.Compare(va.str, vb.str)
	}
	if !asc {
		c = -c
	}
	return c
}
