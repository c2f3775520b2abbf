// Package app wires the board: configuration, logging, the session loop,
// the audit journal, date rollover and the console.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"repairboard/internal/audit"
	"repairboard/internal/config"
	"repairboard/internal/console"
	"repairboard/internal/eventbus"
	"repairboard/internal/render"
	"repairboard/internal/rollover"
	"repairboard/internal/runtime/supervisor"
	"repairboard/internal/session"
	"repairboard/internal/storage"
	logx "repairboard/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	sess *session.Session
	rec  *audit.Recorder
	roll *rollover.Service
	rend *render.Renderer
	con  *console.Console

	demo bool

	rollMu     sync.Mutex
	rollCancel context.CancelFunc
	rollDone   chan struct{}
}

type Option func(*options)

type options struct {
	in   io.Reader
	out  io.Writer
	demo bool
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		if in != nil {
			o.in = in
		}
		if out != nil {
			o.out = out
		}
	}
}

// WithDemo seeds the sample jobs even if board.demo is off.
func WithDemo(on bool) Option { return func(o *options) { o.demo = o.demo || on } }

func NewApp(cfgPath string, opts ...Option) (*App, error) {
	o := options{in: os.Stdin, out: os.Stdout}
	for _, fn := range opts {
		fn(&o)
	}

	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()

	logSvc, log := logx.New(mapLogConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	// Storage (optional)
	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log)
		if err != nil {
			return nil, err
		}
		store = st
		log.Info("journal enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	sess := session.New(
		session.WithBus(bus),
		session.WithLogger(log),
		session.WithClock(func() time.Time { return time.Now().In(loc) }),
		session.WithWindow(cfg.Board.WindowDays, cfg.Board.MinWindowDays, cfg.Board.MaxWindowDays),
		session.WithPhotoMaxBytes(cfg.Photo.MaxBytes),
	)

	roll := rollover.New(sess, log)
	if err := roll.Configure(cfg.Rollover.Schedule, loc); err != nil {
		return nil, err
	}

	rec := audit.New(bus, store, log)
	rend := render.New(o.out, render.Options{Color: cfg.ColorEnabled(), Width: cfg.Render.Width})

	conOpts := []console.Option{
		console.WithLogger(log),
		console.WithToday(roll.Today),
		console.WithDisplay(displayFor(cfg)),
	}
	if store != nil {
		conOpts = append(conOpts, console.WithJournal(rec))
	}
	con := console.New(sess, rend, o.in, o.out, conOpts...)

	return &App{
		cfgm:  cfgm,
		log:   log,
		logs:  logSvc,
		bus:   bus,
		store: store,
		sess:  sess,
		rec:   rec,
		roll:  roll,
		rend:  rend,
		con:   con,
		demo:  o.demo || cfg.Board.Demo,
	}, nil
}

func displayFor(cfg *config.Config) console.Display {
	return console.Display{
		Color:            cfg.ColorEnabled(),
		Width:            cfg.Render.Width,
		ResizeRatePerSec: cfg.Render.ResizeRatePerSec,
	}
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Session exposes the board session, mainly for tests.
func (a *App) Session() *session.Session { return a.sess }

// Start launches the background loops. The console is not started; see Run.
func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error { return validate(cfg) })

	a.sup.Go("session", a.sess.Run)
	a.sup.Go("audit", a.rec.Run)

	if a.demo {
		if err := a.sess.SeedDemo(a.sup.Context()); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
		a.log.Info("demo tasks seeded")
	}

	if a.cfgm.Get().RolloverEnabled() {
		a.startRollover()
	}

	// debug trace of every event
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	// hot reload config fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// keep only the latest config of a burst
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.applyConfig(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	if a.cfgm.Path() != "" {
		a.sup.GoRestart("config.watch", a.cfgm.Watch,
			supervisor.WithRestartBackoff(time.Second, 30*time.Second),
			supervisor.WithMaxRestarts(10))
	}

	a.log.Info("app started", logx.String("config", a.cfgm.Path()))
	return nil
}

// startRollover runs the rollover service under its own cancel so config
// reloads can switch it off and on.
func (a *App) startRollover() {
	a.rollMu.Lock()
	defer a.rollMu.Unlock()
	if a.rollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(a.sup.Context())
	done := make(chan struct{})
	a.rollCancel, a.rollDone = cancel, done
	a.sup.Go("rollover", func(context.Context) error {
		defer close(done)
		return a.roll.Run(ctx)
	})
}

// stopRollover waits for Run to return so a following start never shares
// the service with a stopping run.
func (a *App) stopRollover() {
	a.rollMu.Lock()
	defer a.rollMu.Unlock()
	if a.rollCancel == nil {
		return
	}
	a.rollCancel()
	<-a.rollDone
	a.rollCancel, a.rollDone = nil, nil
}

// Run starts the app, serves the console until the user quits, input
// ends, ctx is canceled or a component fails, and then stops.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		a.Stop(context.Background(), StopFatalError)
		return err
	}
	conErr := a.con.Run(a.sup.Context())

	reason := StopQuit
	switch {
	case a.Err() != nil:
		reason = StopFatalError
	case ctx.Err() != nil:
		reason = StopSignal
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Stop(stopCtx, reason)

	if err := a.Err(); err != nil {
		return err
	}
	if conErr != nil && !errors.Is(conErr, context.Canceled) {
		return conErr
	}
	return nil
}

// Stop cancels every loop, waits for them (the journal is flushed on the
// way out) and then closes storage and logging.
func (a *App) Stop(ctx context.Context, reason StopReason) {
	if a.sup == nil {
		return
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	a.sup.Cancel()

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name), logx.Duration("elapsed", time.Since(start)))
		}
	}

	step("supervisor", 3*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	step("storage", time.Second, func(context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

// applyConfig pushes a committed config into the running components.
// Storage changes need a restart.
func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	changed := func(name string) bool {
		for _, s := range sections {
			if s == name {
				return true
			}
		}
		return false
	}

	if changed("logging") {
		a.logs.Apply(mapLogConfig(newCfg))
	}
	if changed("storage") {
		a.log.Warn("storage config changed; restart required for changes to take effect")
	}
	if changed("board") {
		b := newCfg.Board
		if err := a.sess.SetWindowBounds(ctx, b.MinWindowDays, b.MaxWindowDays); err != nil {
			a.log.Warn("apply window bounds failed", logx.Err(err))
		}
		if b.WindowDays != oldCfg.Board.WindowDays {
			if _, err := a.sess.SetWindowDays(ctx, b.WindowDays); err != nil {
				a.log.Warn("apply window days failed", logx.Err(err))
			}
		}
	}
	if changed("photo") {
		a.sess.SetPhotoMaxBytes(newCfg.Photo.MaxBytes)
	}
	if changed("rollover") || newCfg.Board.Timezone != oldCfg.Board.Timezone {
		loc, _ := newCfg.Location()
		if err := a.roll.Configure(newCfg.Rollover.Schedule, loc); err != nil {
			a.log.Warn("invalid rollover config; keeping previous", logx.Err(err))
		}
		switch {
		case newCfg.RolloverEnabled() && !oldCfg.RolloverEnabled():
			a.log.Info("rollover enabled via config")
			a.startRollover()
		case !newCfg.RolloverEnabled() && oldCfg.RolloverEnabled():
			a.log.Info("rollover disabled via config")
			a.stopRollover()
		}
	}
	if changed("render") {
		a.con.SetDisplay(displayFor(newCfg))
	}

	a.bus.Publish(eventbus.Event{Type: eventbus.ConfigReloaded, Data: sections})
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}
