package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"repairboard/internal/board"
	"repairboard/internal/eventbus"
	"repairboard/internal/photo"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC) }

func testStore(prefix string) *board.Store {
	n := 0
	return board.NewStore(board.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}))
}

func startSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithClock(fixedNow), WithStore(testStore("t"))}
	s := New(append(base, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestViewScenario(t *testing.T) {
	t.Parallel()
	s := startSession(t, WithWindow(3, 1, 365))
	ctx := context.Background()

	task, err := s.CreateTask(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EditTask(ctx, task.ID, board.FieldEstimatedHours, "16"); err != nil {
		t.Fatal(err)
	}
	if err := s.EditTask(ctx, task.ID, board.FieldDeadline, "2024-01-15"); err != nil {
		t.Fatal(err)
	}

	v, err := s.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(v.Axis, ",") != "2024-01-10,2024-01-11,2024-01-12" {
		t.Fatalf("axis = %v", v.Axis)
	}
	if len(v.Rows) != 1 {
		t.Fatalf("rows = %d", len(v.Rows))
	}
	cells := v.Rows[0].Cells
	if cells[0].Kind != board.CellBar || cells[0].Span != 2 || cells[1].Kind != board.CellCovered || cells[2].Kind != board.CellEmpty {
		t.Fatalf("cells = %+v", cells)
	}
	if v.Rows[0].Task.End != "2024-01-11" {
		t.Fatalf("End = %s", v.Rows[0].Task.End)
	}
}

func TestEditRejectedPublishes(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()
	s := startSession(t, WithBus(bus))
	ctx := context.Background()

	task, _ := s.CreateTask(ctx)
	err := s.EditTask(ctx, task.ID, board.FieldPhone, "090-1111-2222")
	if !errors.Is(err, board.ErrPhoneHyphen) {
		t.Fatalf("err = %v", err)
	}
	got, _, _ := s.Task(ctx, task.ID)
	if got.Phone != "" {
		t.Fatalf("Phone = %q, want unchanged", got.Phone)
	}

	want := []string{eventbus.TaskCreated, eventbus.TaskRejected}
	for _, typ := range want {
		select {
		case e := <-events:
			if e.Type != typ {
				t.Fatalf("event = %s, want %s", e.Type, typ)
			}
			if typ == eventbus.TaskRejected && e.Data.(eventbus.TaskChange).Error == "" {
				t.Fatal("rejection without reason")
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %s", typ)
		}
	}
}

func TestSearchAndSort(t *testing.T) {
	t.Parallel()
	s := startSession(t)
	ctx := context.Background()
	names := []string{"Tanaka", "Suzuki", "Tanabe"}
	hours := []string{"5", "1", "3"}
	for i := range names {
		task, _ := s.CreateTask(ctx)
		_ = s.EditTask(ctx, task.ID, board.FieldName, names[i])
		_ = s.EditTask(ctx, task.ID, board.FieldEstimatedHours, hours[i])
	}

	rowIDs := func() string {
		v, err := s.View(ctx)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]string, len(v.Rows))
		for i, r := range v.Rows {
			out[i] = r.Task.ID
		}
		return strings.Join(out, ",")
	}

	if got := rowIDs(); got != "t1,t2,t3" {
		t.Fatalf("insertion order = %s", got)
	}
	if spec, _ := s.ToggleSort(ctx, board.FieldEstimatedHours); !spec.Asc {
		t.Fatal("first toggle should be ascending")
	}
	if got := rowIDs(); got != "t2,t3,t1" {
		t.Fatalf("hours asc = %s", got)
	}
	_, _ = s.ToggleSort(ctx, board.FieldEstimatedHours)
	if got := rowIDs(); got != "t1,t3,t2" {
		t.Fatalf("hours desc = %s", got)
	}
	_ = s.SetSearch(ctx, " Tana ")
	if got := rowIDs(); got != "t1,t3" {
		t.Fatalf("filtered = %s", got)
	}
	if err := s.SetSort(ctx, &board.SortSpec{Key: board.FieldName, Asc: true}); err != nil {
		t.Fatal(err)
	}
	if got := rowIDs(); got != "t3,t1" {
		t.Fatalf("name asc = %s", got)
	}
	_ = s.ClearSort(ctx)
	_ = s.SetSearch(ctx, "")
	v, _ := s.View(ctx)
	if v.Sort != nil || v.Total != 3 || len(v.Rows) != 3 {
		t.Fatalf("view = sort %v, total %d, rows %d", v.Sort, v.Total, len(v.Rows))
	}
}

func TestSetWindowDaysClamps(t *testing.T) {
	t.Parallel()
	s := startSession(t, WithWindow(30, 7, 60))
	ctx := context.Background()
	for in, want := range map[int]int{1: 7, 14: 14, 500: 60} {
		got, err := s.SetWindowDays(ctx, in)
		if err != nil || got != want {
			t.Fatalf("SetWindowDays(%d) = %d, %v; want %d", in, got, err, want)
		}
		v, _ := s.View(ctx)
		if len(v.Axis) != want {
			t.Fatalf("axis len = %d, want %d", len(v.Axis), want)
		}
	}
	_, _ = s.SetWindowDays(ctx, 60)
	if err := s.SetWindowBounds(ctx, 20, 40); err != nil {
		t.Fatal(err)
	}
	v, _ := s.View(ctx)
	if v.Days != 40 || v.MinDays != 20 {
		t.Fatalf("after bounds: days %d min %d", v.Days, v.MinDays)
	}
}

func TestReanchor(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()
	s := startSession(t, WithBus(bus))
	ctx := context.Background()

	old, _ := s.CreateTask(ctx)
	if err := s.Reanchor(ctx, "2024-01-11"); err != nil {
		t.Fatal(err)
	}
	v, _ := s.View(ctx)
	if v.Today != "2024-01-11" || v.Axis[0] != "2024-01-11" {
		t.Fatalf("today = %s axis[0] = %s", v.Today, v.Axis[0])
	}
	if v.Rows[0].Cells[0].Kind != board.CellEmpty {
		t.Fatal("task starting before the window should have no bar")
	}
	fresh, _ := s.CreateTask(ctx)
	if fresh.Start != "2024-01-11" || old.Start != "2024-01-10" {
		t.Fatalf("starts = %s, %s", old.Start, fresh.Start)
	}
	if err := s.Reanchor(ctx, "soon"); !errors.Is(err, board.ErrInvalidDate) {
		t.Fatalf("err = %v", err)
	}

	var moved int
	for len(events) > 0 {
		if e := <-events; e.Type == eventbus.WindowMoved {
			moved++
			if m := e.Data.(eventbus.WindowMove); m.From != "2024-01-10" || m.To != "2024-01-11" {
				t.Fatalf("move = %+v", m)
			}
		}
	}
	if moved != 1 {
		t.Fatalf("window.moved events = %d", moved)
	}
}

func TestResolveID(t *testing.T) {
	t.Parallel()
	s := New(WithClock(fixedNow), WithStore(board.NewStore(board.WithIDGenerator(func() func() string {
		ids := []string{"abc1", "abc2", "abd", "ab"}
		return func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
	}()))))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	for i := 0; i < 4; i++ {
		_, _ = s.CreateTask(ctx)
	}
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{in: "abd", want: "abd"},
		{in: "abc1", want: "abc1"},
		{in: "ab", want: "ab"}, // exact match wins
		{in: "abc", err: ErrAmbiguousID},
		{in: "x", err: board.ErrTaskNotFound},
		{in: "", err: board.ErrTaskNotFound},
	}
	for _, tt := range tests {
		got, err := s.ResolveID(ctx, tt.in)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Fatalf("ResolveID(%q) err = %v, want %v", tt.in, err, tt.err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ResolveID(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestDeleteAndEditing(t *testing.T) {
	t.Parallel()
	s := startSession(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx)
	if editing, _ := s.ToggleEditing(ctx, a.ID); editing != a.ID {
		t.Fatalf("editing = %q", editing)
	}
	v, _ := s.View(ctx)
	if !v.Rows[0].Editing {
		t.Fatal("row not marked as editing")
	}
	if ok, _ := s.DeleteTask(ctx, "nope"); ok {
		t.Fatal("unknown id deleted")
	}
	if ok, _ := s.DeleteTask(ctx, a.ID); !ok {
		t.Fatal("delete failed")
	}
	v, _ = s.View(ctx)
	if v.Editing != "" || v.Total != 0 {
		t.Fatalf("after delete: editing %q total %d", v.Editing, v.Total)
	}
}

var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestIngestPhoto(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	img := filepath.Join(dir, "bike.png")
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(img, pngPixel, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txt, []byte("just text"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := startSession(t, WithPhotoMaxBytes(1024))
	ctx := context.Background()
	task, _ := s.CreateTask(ctx)

	if err := <-s.IngestPhoto(ctx, task.ID, img); err != nil {
		t.Fatalf("IngestPhoto: %v", err)
	}
	got, _, _ := s.Task(ctx, task.ID)
	if photo.MIME(got.PhotoURL) != "image/png" {
		t.Fatalf("PhotoURL = %.30s", got.PhotoURL)
	}

	if err := <-s.IngestPhoto(ctx, task.ID, txt); !errors.Is(err, photo.ErrNotImage) {
		t.Fatalf("text file err = %v", err)
	}
	if err := <-s.IngestPhoto(ctx, "gone", img); !errors.Is(err, board.ErrTaskNotFound) {
		t.Fatalf("missing task err = %v", err)
	}
	s.SetPhotoMaxBytes(8)
	if err := <-s.IngestPhoto(ctx, task.ID, img); !errors.Is(err, photo.ErrTooLarge) {
		t.Fatalf("oversize err = %v", err)
	}
	again, _, _ := s.Task(ctx, task.ID)
	if again.PhotoURL != got.PhotoURL {
		t.Fatal("failed ingestion replaced the photo")
	}
}

func TestSeedDemo(t *testing.T) {
	t.Parallel()
	s := startSession(t)
	ctx := context.Background()
	if err := s.SeedDemo(ctx); err != nil {
		t.Fatal(err)
	}
	v, _ := s.View(ctx)
	if v.Total != 2 {
		t.Fatalf("total = %d", v.Total)
	}
	a, b := v.Rows[0].Task, v.Rows[1].Task
	if a.Start != "2024-01-10" || a.Deadline != "2024-01-12" || a.End != "2024-01-10" {
		t.Fatalf("first demo task = %+v", a)
	}
	if b.Status != board.StatusInProgress || b.Start != "2024-01-11" || b.Deadline != "2024-01-14" {
		t.Fatalf("second demo task = %+v", b)
	}
}

func TestConcurrentCallers(t *testing.T) {
	t.Parallel()
	s := New(WithClock(fixedNow))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := s.CreateTask(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			_ = s.EditTask(ctx, task.ID, board.FieldEstimatedHours, "9")
			_, _ = s.View(ctx)
		}()
	}
	wg.Wait()
	v, _ := s.View(ctx)
	if v.Total != 20 {
		t.Fatalf("total = %d, want 20", v.Total)
	}
	for _, r := range v.Rows {
		if r.Task.End != "2024-01-11" {
			t.Fatalf("End = %s", r.Task.End)
		}
	}
}

func TestClosedSession(t *testing.T) {
	t.Parallel()
	s := New(WithClock(fixedNow))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	if _, err := s.CreateTask(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
