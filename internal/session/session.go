// Package session owns the board for one user. Every read and write goes
// through a single event loop goroutine, so the store needs no locking.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"repairboard/internal/board"
	"repairboard/internal/eventbus"
	logx "repairboard/pkg/logx"
)

var (
	ErrClosed      = errors.New("session closed")
	ErrAmbiguousID = errors.New("ambiguous task id")
)

// Session is the single-user board state: tasks, search term, sort order,
// the visible window and the row open for editing.
type Session struct {
	store *board.Store
	bus   eventbus.Bus
	log   logx.Logger
	now   func() time.Time

	cmds chan func()
	done chan struct{}

	photoMax atomic.Int64

	// loop-owned
	today   string
	search  string
	sort    *board.SortSpec
	days    int
	minDays int
	maxDays int
}

type Option func(*Session)

func WithBus(b eventbus.Bus) Option {
	return func(s *Session) {
		if b != nil {
			s.bus = b
		}
	}
}

func WithLogger(log logx.Logger) Option {
	return func(s *Session) {
		if !log.IsZero() {
			s.log = log
		}
	}
}

// WithClock replaces time.Now when picking the initial "today".
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStore replaces the task store, e.g. one with deterministic ids.
func WithStore(st *board.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// WithWindow sets the window length and its bounds.
func WithWindow(days, minDays, maxDays int) Option {
	return func(s *Session) {
		s.minDays, s.maxDays = minDays, maxDays
		s.days = days
	}
}

func WithPhotoMaxBytes(n int64) Option {
	return func(s *Session) { s.photoMax.Store(n) }
}

func New(opts ...Option) *Session {
	s := &Session{
		bus:     eventbus.Nop{},
		log:     logx.Nop(),
		now:     time.Now,
		cmds:    make(chan func()),
		done:    make(chan struct{}),
		days:    30,
		minDays: 7,
		maxDays: 365,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(logx.String("comp", "session"))
	s.today = board.FormatDate(s.now())
	if s.store == nil {
		s.store = board.NewStore(board.WithWindowStart(s.today))
	} else {
		s.store.SetWindowStart(s.today)
	}
	s.minDays = max(1, s.minDays)
	s.maxDays = max(s.minDays, s.maxDays)
	s.days = s.clamp(s.days)
	return s
}

// Run serves requests until ctx ends. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.log.Debug("session loop started", logx.String("today", s.today), logx.Int("days", s.days))
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.cmds:
			fn()
		}
	}
}

// do runs fn on the loop and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

func (s *Session) publish(typ string, data any) {
	s.bus.Publish(eventbus.Event{Type: typ, Data: data})
}

func (s *Session) clamp(n int) int { return max(s.minDays, min(n, s.maxDays)) }

// CreateTask appends a task with default values.
func (s *Session) CreateTask(ctx context.Context) (board.Task, error) {
	var t board.Task
	err := s.do(ctx, func() {
		t = s.store.Create()
	})
	if err != nil {
		return board.Task{}, err
	}
	s.log.Info("task created", logx.String("id", t.ID))
	s.publish(eventbus.TaskCreated, eventbus.TaskChange{TaskID: t.ID, Name: t.Name})
	return t, nil
}

// EditTask applies one field edit. A rejected edit leaves the task as it
// was; the returned error says why.
func (s *Session) EditTask(ctx context.Context, id string, field board.Field, value string) error {
	var editErr error
	var name string
	err := s.do(ctx, func() {
		editErr = s.store.Edit(id, field, value)
		if t, ok := s.store.Get(id); ok {
			name = t.Name
		}
	})
	if err != nil {
		return err
	}
	change := eventbus.TaskChange{TaskID: id, Name: name, Field: string(field), Value: auditValue(field, value)}
	if editErr != nil {
		change.Error = editErr.Error()
		s.log.Debug("edit rejected", logx.String("id", id), logx.String("field", string(field)), logx.Err(editErr))
		s.publish(eventbus.TaskRejected, change)
		return editErr
	}
	s.publish(eventbus.TaskEdited, change)
	return nil
}

// auditValue keeps photo payloads out of events.
func auditValue(f board.Field, v string) string {
	if f == board.FieldPhotoURL && len(v) > 64 {
		return fmt.Sprintf("%s… (%d bytes)", v[:32], len(v))
	}
	return v
}

// DeleteTask removes a task. It reports false for an unknown id.
func (s *Session) DeleteTask(ctx context.Context, id string) (bool, error) {
	var (
		ok   bool
		name string
	)
	err := s.do(ctx, func() {
		if t, found := s.store.Get(id); found {
			name = t.Name
		}
		ok = s.store.Delete(id)
	})
	if err != nil || !ok {
		return false, err
	}
	s.log.Info("task deleted", logx.String("id", id))
	s.publish(eventbus.TaskDeleted, eventbus.TaskChange{TaskID: id, Name: name})
	return true, nil
}

// ToggleEditing opens the row for editing, or closes it if already open.
func (s *Session) ToggleEditing(ctx context.Context, id string) (string, error) {
	var editing string
	err := s.do(ctx, func() {
		s.store.ToggleEditing(id)
		editing = s.store.Editing()
	})
	if err != nil {
		return "", err
	}
	s.publish(eventbus.EditingToggled, eventbus.TaskChange{TaskID: editing})
	return editing, nil
}

// Task returns a copy of one task.
func (s *Session) Task(ctx context.Context, id string) (board.Task, bool, error) {
	var (
		t  board.Task
		ok bool
	)
	err := s.do(ctx, func() { t, ok = s.store.Get(id) })
	return t, ok, err
}

// ResolveID expands a unique id prefix to the full id. An exact match wins
// over longer ids that share it as a prefix.
func (s *Session) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", board.ErrTaskNotFound
	}
	var matches []string
	err := s.do(ctx, func() {
		for _, t := range s.store.Tasks() {
			if t.ID == prefix {
				matches = []string{t.ID}
				return
			}
			if strings.HasPrefix(t.ID, prefix) {
				matches = append(matches, t.ID)
			}
		}
	})
	switch {
	case err != nil:
		return "", err
	case len(matches) == 0:
		return "", fmt.Errorf("%w: %s", board.ErrTaskNotFound, prefix)
	case len(matches) > 1:
		return "", fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguousID, prefix, len(matches))
	}
	return matches[0], nil
}

func (s *Session) viewChange() eventbus.ViewChange {
	vc := eventbus.ViewChange{Search: s.search, Days: s.days}
	if s.sort != nil {
		vc.SortKey, vc.SortAsc = string(s.sort.Key), s.sort.Asc
	}
	return vc
}

// SetSearch replaces the name filter.
func (s *Session) SetSearch(ctx context.Context, term string) error {
	var vc eventbus.ViewChange
	err := s.do(ctx, func() {
		s.search = term
		vc = s.viewChange()
	})
	if err == nil {
		s.publish(eventbus.ViewChanged, vc)
	}
	return err
}

// ToggleSort sorts by key ascending, or flips the direction if the board is
// already sorted by key.
func (s *Session) ToggleSort(ctx context.Context, key board.Field) (board.SortSpec, error) {
	var (
		spec board.SortSpec
		vc   eventbus.ViewChange
	)
	err := s.do(ctx, func() {
		s.sort = s.sort.Toggle(key)
		spec = *s.sort
		vc = s.viewChange()
	})
	if err == nil {
		s.publish(eventbus.ViewChanged, vc)
	}
	return spec, err
}

// SetSort replaces the sort order; nil means insertion order.
func (s *Session) SetSort(ctx context.Context, spec *board.SortSpec) error {
	var vc eventbus.ViewChange
	err := s.do(ctx, func() {
		if spec == nil {
			s.sort = nil
		} else {
			cp := *spec
			s.sort = &cp
		}
		vc = s.viewChange()
	})
	if err == nil {
		s.publish(eventbus.ViewChanged, vc)
	}
	return err
}

// ClearSort returns the board to insertion order.
func (s *Session) ClearSort(ctx context.Context) error {
	var vc eventbus.ViewChange
	err := s.do(ctx, func() {
		s.sort = nil
		vc = s.viewChange()
	})
	if err == nil {
		s.publish(eventbus.ViewChanged, vc)
	}
	return err
}

// SetWindowDays changes the window length, clamped to the bounds, and
// returns the value applied.
func (s *Session) SetWindowDays(ctx context.Context, n int) (int, error) {
	var (
		applied int
		vc      eventbus.ViewChange
	)
	err := s.do(ctx, func() {
		s.days = s.clamp(n)
		applied = s.days
		vc = s.viewChange()
	})
	if err == nil {
		s.publish(eventbus.ViewChanged, vc)
	}
	return applied, err
}

// SetWindowBounds replaces the window bounds and re-clamps the length.
func (s *Session) SetWindowBounds(ctx context.Context, minDays, maxDays int) error {
	return s.do(ctx, func() {
		s.minDays = max(1, minDays)
		s.maxDays = max(s.minDays, maxDays)
		s.days = s.clamp(s.days)
	})
}

func (s *Session) SetPhotoMaxBytes(n int64) { s.photoMax.Store(n) }

// Reanchor moves "today" (the first axis day and the start of new tasks).
func (s *Session) Reanchor(ctx context.Context, date string) error {
	d, err := board.ParseDate(date)
	if err != nil {
		return err
	}
	date = board.FormatDate(d)
	var from string
	err = s.do(ctx, func() {
		from = s.today
		s.today = date
		s.store.SetWindowStart(date)
	})
	if err != nil || from == date {
		return err
	}
	s.log.Info("window moved", logx.String("from", from), logx.String("to", date))
	s.publish(eventbus.WindowMoved, eventbus.WindowMove{From: from, To: date})
	return nil
}

// Row is one visible task and its Gantt cells.
type Row struct {
	Task    board.Task
	Cells   []board.Cell
	Editing bool
}

// View is a consistent snapshot of everything the presentation needs.
type View struct {
	Today   string
	Days    int
	MinDays int
	MaxDays int
	Axis    []string
	Search  string
	Sort    *board.SortSpec
	Editing string
	Total   int
	Rows    []Row
}

// View projects the board: filter, sort, then place every visible task on
// the axis.
func (s *Session) View(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func() {
		today, _ := board.ParseDate(s.today)
		v = View{
			Today:   s.today,
			Days:    s.days,
			MinDays: s.minDays,
			MaxDays: s.maxDays,
			Axis:    board.BuildAxis(today, s.days),
			Search:  s.search,
			Editing: s.store.Editing(),
			Total:   s.store.Len(),
		}
		if s.sort != nil {
			spec := *s.sort
			v.Sort = &spec
		}
		tasks := board.Project(s.store.Tasks(), s.search, s.sort)
		v.Rows = make([]Row, len(tasks))
		for i, t := range tasks {
			v.Rows[i] = Row{Task: t, Cells: board.PlaceBar(v.Axis, t), Editing: t.ID == v.Editing}
		}
	})
	return v, err
}

// IngestPhoto loads the image at path off the loop and stores it as the
// task's photo. The channel yields one result and is then closed.
func (s *Session) IngestPhoto(ctx context.Context, id, path string) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		err := s.ingestPhoto(ctx, id, path)
		out <- err
	}()
	return out
}
