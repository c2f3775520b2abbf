// Package audit writes board events to the storage journal.
package audit

import (
	"context"
	"strings"
	"time"

	"repairboard/internal/eventbus"
	"repairboard/internal/storage"
	logx "repairboard/pkg/logx"
)

// Recorder subscribes to the bus and appends one journal entry per event.
type Recorder struct {
	bus   eventbus.Bus
	store storage.Store
	log   logx.Logger
	ch    <-chan eventbus.Event
	unsub func()
}

// New subscribes immediately so no event published after New is missed.
// A nil store records nothing.
func New(bus eventbus.Bus, store storage.Store, log logx.Logger) *Recorder {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Recorder{bus: bus, store: store, log: log.With(logx.String("comp", "audit"))}
	r.ch, r.unsub = bus.Subscribe(256)
	return r
}

// Run drains the subscription until ctx ends or the bus closes it.
func (r *Recorder) Run(ctx context.Context) error {
	defer r.unsub()
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return nil
		case e, ok := <-r.ch:
			if !ok {
				return nil
			}
			r.record(ctx, e)
		}
	}
}

// flush writes whatever is already buffered.
func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		select {
		case e, ok := <-r.ch:
			if !ok {
				return
			}
			r.record(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) record(ctx context.Context, e eventbus.Event) {
	entry, ok := Entry(e)
	if !ok || r.store == nil {
		return
	}
	if err := r.store.Append(ctx, entry); err != nil {
		r.log.Warn("journal append failed", logx.String("action", entry.Action), logx.Err(err))
	}
}

// Recent returns the last n journal entries.
func (r *Recorder) Recent(ctx context.Context, n int) ([]storage.Entry, error) {
	if r.store == nil {
		return nil, storage.ErrDisabled
	}
	return r.store.Recent(ctx, n)
}

// Entry maps an event to a journal entry. View changes are not journaled.
func Entry(e eventbus.Event) (storage.Entry, bool) {
	out := storage.Entry{At: e.Time, Action: e.Type}
	switch d := e.Data.(type) {
	case eventbus.TaskChange:
		out.TaskID, out.Name, out.Field, out.Value, out.Error = d.TaskID, d.Name, d.Field, d.Value, d.Error
	case eventbus.WindowMove:
		out.Field, out.Value = "today", d.To
	case []string:
		// config.reloaded carries the changed sections
		out.Value = strings.Join(d, ",")
	default:
		if e.Type != eventbus.ConfigReloaded {
			return storage.Entry{}, false
		}
	}
	if e.Type == eventbus.EditingToggled || e.Type == eventbus.ViewChanged {
		return storage.Entry{}, false
	}
	return out, true
}
