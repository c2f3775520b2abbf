// Package console is the line-oriented front end: it reads commands,
// applies them to a session and redraws the board.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"repairboard/internal/render"
	"repairboard/internal/session"
	"repairboard/internal/storage"
	logx "repairboard/pkg/logx"
)

const prompt = "board> "

var errQuit = errors.New("quit")

// Journal is the read side of the audit journal.
type Journal interface {
	Recent(ctx context.Context, n int) ([]storage.Entry, error)
}

// Display holds the hot-reloadable presentation settings.
type Display struct {
	Color bool
	// Width overrides the terminal width; 0 measures the terminal.
	Width int
	// ResizeRatePerSec caps redraws caused by terminal resizes.
	ResizeRatePerSec float64
}

type photoResult struct {
	id   string
	path string
	err  error
}

type Console struct {
	sess    *session.Session
	rend    *render.Renderer
	journal Journal
	today   func() string
	probe   func() int
	log     logx.Logger

	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	display Display
	limiter *rate.Limiter

	photos  chan photoResult
	pending int

	cmds  []*command
	index map[string]*command
}

type Option func(*Console)

func WithJournal(j Journal) Option { return func(c *Console) { c.journal = j } }

// WithToday supplies the date "today" re-anchors to when given no argument.
func WithToday(fn func() string) Option {
	return func(c *Console) {
		if fn != nil {
			c.today = fn
		}
	}
}

// WithWidthProbe replaces the terminal width measurement.
func WithWidthProbe(fn func() int) Option {
	return func(c *Console) {
		if fn != nil {
			c.probe = fn
		}
	}
}

func WithLogger(log logx.Logger) Option {
	return func(c *Console) {
		if !log.IsZero() {
			c.log = log
		}
	}
}

func WithDisplay(d Display) Option { return func(c *Console) { c.display = d } }

func New(sess *session.Session, rend *render.Renderer, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		sess:    sess,
		rend:    rend,
		in:      in,
		out:     out,
		today:   func() string { return time.Now().Format("2006-01-02") },
		probe:   terminalWidth,
		log:     logx.Nop(),
		display: Display{Color: true, ResizeRatePerSec: 4},
		photos:  make(chan photoResult, 8),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	c.log = c.log.With(logx.String("comp", "console"))
	c.limiter = rate.NewLimiter(limitFor(c.display.ResizeRatePerSec), 1)
	c.register(builtins()...)
	return c
}

func limitFor(perSec float64) rate.Limit {
	if perSec <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSec)
}

// SetDisplay applies new presentation settings; the next redraw uses them.
func (c *Console) SetDisplay(d Display) {
	c.mu.Lock()
	c.display = d
	c.mu.Unlock()
	c.limiter.SetLimit(limitFor(d.ResizeRatePerSec))
}

func (c *Console) width() int {
	c.mu.Lock()
	d := c.display
	c.mu.Unlock()
	if d.Width > 0 {
		return d.Width
	}
	return c.probe()
}

// Redraw renders the current view.
func (c *Console) Redraw(ctx context.Context) error {
	v, err := c.sess.View(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	color := c.display.Color
	c.mu.Unlock()
	c.rend.SetOptions(render.Options{Color: color, Width: c.width()})
	return c.rend.Board(v)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Run draws the board and then serves commands until quit, end of input
// or ctx cancellation. Photo loads still in flight at end of input are
// waited for.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	resize := resizeSignals(ctx)
	var redrawAfter <-chan time.Time

	if err := c.Redraw(ctx); err != nil {
		return err
	}
	c.printf(prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				c.drainPhotos(ctx)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if c.Exec(ctx, line) {
				return nil
			}
			c.printf(prompt)
		case res := <-c.photos:
			c.pending--
			c.photoDone(ctx, res)
			c.printf(prompt)
		case <-resize:
			if redrawAfter != nil {
				continue
			}
			r := c.limiter.Reserve()
			if d := r.Delay(); d > 0 {
				redrawAfter = time.After(d)
				continue
			}
			c.resized(ctx)
		case <-redrawAfter:
			redrawAfter = nil
			c.resized(ctx)
		}
	}
}

func (c *Console) resized(ctx context.Context) {
	c.printf("\n")
	if err := c.Redraw(ctx); err != nil {
		c.log.Warn("redraw failed", logx.Err(err))
	}
	c.printf(prompt)
}

func (c *Console) drainPhotos(ctx context.Context) {
	for c.pending > 0 {
		select {
		case res := <-c.photos:
			c.pending--
			c.photoDone(ctx, res)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Console) photoDone(ctx context.Context, res photoResult) {
	if res.err != nil {
		c.printf("\nphoto %s: %v\n", res.path, res.err)
		return
	}
	c.printf("\nphoto attached to %s\n", res.id)
	if err := c.Redraw(ctx); err != nil {
		c.log.Warn("redraw failed", logx.Err(err))
	}
}

// startPhoto hands the load to the session and forwards the result to the
// Run loop.
func (c *Console) startPhoto(ctx context.Context, id, path string) {
	c.pending++
	ch := c.sess.IngestPhoto(ctx, id, path)
	go func() {
		err := <-ch
		select {
		case c.photos <- photoResult{id: id, path: path, err: err}:
		case <-ctx.Done():
		}
	}()
}

// Exec runs one command line and reports whether the console should stop.
func (c *Console) Exec(ctx context.Context, line string) bool {
	args := tokenize(line)
	if len(args) == 0 {
		return false
	}
	name := strings.ToLower(args[0])
	cmd, ok := c.index[name]
	if !ok {
		c.printf("unknown command %q, try help\n", args[0])
		return false
	}
	err := cmd.run(ctx, c, args[1:])
	switch {
	case errors.Is(err, errQuit):
		return true
	case errors.Is(err, errUsage):
		c.printf("usage: %s\n", cmd.usage)
		return false
	case err != nil:
		c.log.Debug("command failed", logx.String("cmd", cmd.name), logx.Err(err))
		c.printf("error: %v\n", err)
		return false
	}
	if cmd.redraw {
		if err := c.Redraw(ctx); err != nil {
			c.printf("error: %v\n", err)
		}
	}
	return false
}
