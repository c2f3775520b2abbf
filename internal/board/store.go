package board

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// hyphenLike are the characters a phone number must not contain: ASCII
// hyphen-minus, the Unicode hyphen and dash family, the minus sign, the
// full-width forms and the katakana prolonged sound mark that Japanese IMEs
// produce for "-".
const hyphenLike = "-‐‑‒–—―−ーｰ－﹣"

// ContainsHyphen reports whether s contains any hyphen-like character.
func ContainsHyphen(s string) bool { return strings.ContainsAny(s, hyphenLike) }

// Store is the ordered, in-memory task collection. It is the only place
// tasks are mutated.
//
// Store is not safe for concurrent use; the session event loop owns it.
type Store struct {
	tasks   []*Task
	editing string

	windowStart string
	created     int

	newID func() string
}

type StoreOption func(*Store)

// WithIDGenerator replaces the UUID generator, e.g. for deterministic tests.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithWindowStart sets the date new tasks start on.
func WithWindowStart(date string) StoreOption {
	return func(s *Store) { s.windowStart = date }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		newID:       uuid.NewString,
		windowStart: FormatDate(time.Now()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetWindowStart moves the default start date for tasks created afterwards.
// Existing tasks are untouched.
func (s *Store) SetWindowStart(date string) { s.windowStart = date }

func (s *Store) WindowStart() string { return s.windowStart }

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// Create appends a task with default values and returns a copy of it.
func (s *Store) Create() Task {
	s.created++
	t := &Task{
		ID:             s.newID(),
		Name:           fmt.Sprintf("New customer %d", s.created),
		Status:         StatusNotStarted,
		EstimatedHours: 1,
		Start:          s.windowStart,
	}
	end, err := EndDate(t.Start, t.EstimatedHours)
	if err != nil {
		// an unparseable window start only happens through a bad option;
		// fall back to an empty span on the same day
		end = t.Start
	}
	t.End = end
	s.tasks = append(s.tasks, t)
	return t.Clone()
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	if t := s.find(id); t != nil {
		return t.Clone(), true
	}
	return Task{}, false
}

// Tasks returns copies of all tasks in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) find(id string) *Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Edit sets one field of one task from its textual value.
//
//   - estimatedHours and start also recompute End.
//   - phone is rejected when it contains a hyphen-like character.
//   - status, deadline and dates are parsed; other fields are stored raw.
//
// Any returned error means the task was left unchanged.
func (s *Store) Edit(id string, field Field, value string) error {
	t := s.find(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	switch field {
	case FieldID, FieldEnd:
		return fmt.Errorf("%w: %s", ErrReadOnlyField, field)

	case FieldEstimatedHours:
		hours, err := ParseHours(value)
		if err != nil {
			return err
		}
		end, err := EndDate(t.Start, hours)
		if err != nil {
			return err
		}
		t.EstimatedHours, t.End = hours, end

	case FieldStart:
		start, err := ParseDate(value)
		if err != nil {
			return err
		}
		date := FormatDate(start)
		end, err := EndDate(date, t.EstimatedHours)
		if err != nil {
			return err
		}
		t.Start, t.End = date, end

	case FieldPhone:
		if ContainsHyphen(value) {
			return fmt.Errorf("%w: %q", ErrPhoneHyphen, value)
		}
		t.Phone = value

	case FieldStatus:
		st, err := ParseStatus(value)
		if err != nil {
			return err
		}
		t.Status = st

	case FieldDeadline:
		if strings.TrimSpace(value) == "" {
			t.Deadline = ""
			return nil
		}
		d, err := ParseDate(value)
		if err != nil {
			return err
		}
		t.Deadline = FormatDate(d)

	case FieldName:
		t.Name = value
	case FieldEmail:
		t.Email = value
	case FieldPhotoURL:
		t.PhotoURL = value

	case FieldMenu, FieldMemo, FieldAssignee, FieldModelNumber:
		v := value
		*t.annotation(field) = &v

	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Delete removes the task with the given id and reports whether it existed.
// Deleting the task open for editing clears the selection.
func (s *Store) Delete(id string) bool {
	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		s.tasks = slices.Delete(s.tasks, i, i+1)
		if s.editing == id {
			s.editing = ""
		}
		return true
	}
	return false
}

// Editing returns the id of the task open for editing, or "".
func (s *Store) Editing() string { return s.editing }

// ToggleEditing opens id for editing, or closes it when it already is.
// Unknown ids are ignored. Only one task is open at a time.
func (s *Store) ToggleEditing(id string) {
	if s.editing == id {
		s.editing = ""
		return
	}
	if s.find(id) != nil {
		s.editing = id
	}
}
