package rollover

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"repairboard/internal/board"
	logx "repairboard/pkg/logx"
)

// Anchorer moves the board's "today" to date (YYYY-MM-DD).
type Anchorer interface {
	Reanchor(ctx context.Context, date string) error
}

// Service checks the calendar date on a schedule and re-anchors the board
// when it has changed.
type Service struct {
	log    logx.Logger
	target Anchorer
	now    func() time.Time

	mu     sync.Mutex
	loc    *time.Location
	sched  Schedule
	last   string
	runCtx context.Context
	c      *cron.Cron
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(target Anchorer, log logx.Logger, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	sched, _ := ParseSchedule("0 0 * * *")
	s := &Service{
		log:    log.With(logx.String("comp", "rollover")),
		target: target,
		now:    time.Now,
		loc:    time.Local,
		sched:  sched,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configure swaps the schedule and timezone. A running engine is rebuilt.
func (s *Service) Configure(schedule string, loc *time.Location) error {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return err
	}
	if loc == nil {
		loc = time.Local
	}
	s.mu.Lock()
	s.sched, s.loc = sched, loc
	old := s.c
	s.c = nil
	if s.runCtx != nil && s.runCtx.Err() == nil {
		s.c = s.startLocked()
	}
	s.mu.Unlock()

	if old != nil {
		<-old.Stop().Done()
	}
	s.log.Info("rollover configured", logx.String("schedule", schedule), logx.String("kind", sched.Kind.String()), logx.String("tz", loc.String()))
	return nil
}

// Run checks once, then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.c = s.startLocked()
	s.mu.Unlock()

	s.Check(ctx)
	<-ctx.Done()

	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	return nil
}

func (s *Service) startLocked() *cron.Cron {
	ctx := s.runCtx
	job := cron.FuncJob(func() { s.Check(ctx) })
	c := cron.New(cron.WithParser(parser), cron.WithLocation(s.loc))
	switch s.sched.Kind {
	case KindInterval:
		c.Schedule(cron.Every(s.sched.Every), job)
	default:
		if _, err := c.AddJob(s.sched.Cron, job); err != nil {
			// ParseSchedule already validated the expression
			s.log.Error("cron rejected schedule", logx.String("cron", s.sched.Cron), logx.Err(err))
		}
	}
	c.Start()
	return c
}

// Today is the current calendar date in the configured zone.
func (s *Service) Today() string {
	s.mu.Lock()
	loc := s.loc
	s.mu.Unlock()
	return board.FormatDate(s.now().In(loc))
}

// Check re-anchors the board if the date differs from the last check.
// It reports whether the board was moved.
func (s *Service) Check(ctx context.Context) bool {
	today := s.Today()
	s.mu.Lock()
	if today == s.last {
		s.mu.Unlock()
		return false
	}
	prev := s.last
	s.last = today
	s.mu.Unlock()

	if err := s.target.Reanchor(ctx, today); err != nil {
		s.log.Warn("re-anchor failed", logx.String("date", today), logx.Err(err))
		s.mu.Lock()
		s.last = prev
		s.mu.Unlock()
		return false
	}
	s.log.Debug("date checked", logx.String("today", today), logx.String("previous", prev))
	return true
}
