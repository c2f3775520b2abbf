package board

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestBuildAxisWindow(t *testing.T) {
	t.Parallel()
	got := BuildAxis(mustDate(t, "2024-01-10"), 3)
	want := []string{"2024-01-10", "2024-01-11", "2024-01-12"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("axis[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildAxisConsecutive(t *testing.T) {
	t.Parallel()
	// crosses a month end, a leap day and a year end
	for _, n := range []int{1, 7, 30, 365} {
		axis := BuildAxis(mustDate(t, "2023-12-20"), n)
		if len(axis) != n {
			t.Fatalf("n=%d: len = %d", n, len(axis))
		}
		for i := 1; i < len(axis); i++ {
			prev, cur := mustDate(t, axis[i-1]), mustDate(t, axis[i])
			if !cur.Equal(prev.AddDate(0, 0, 1)) {
				t.Fatalf("n=%d: %s does not follow %s", n, axis[i], axis[i-1])
			}
		}
	}
}

func TestBuildAxisIgnoresClockAndZone(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("JST", 9*3600)
	today := time.Date(2024, 3, 31, 23, 59, 0, 0, tokyo)
	axis := BuildAxis(today, 2)
	if axis[0] != "2024-03-31" || axis[1] != "2024-04-01" {
		t.Fatalf("axis = %v", axis)
	}
}

func TestDatesBetweenEdges(t *testing.T) {
	t.Parallel()
	d := mustDate(t, "2024-02-28")
	if got := DatesBetween(d, d); len(got) != 1 || got[0] != "2024-02-28" {
		t.Fatalf("single day = %v", got)
	}
	if got := DatesBetween(d, d.AddDate(0, 0, -1)); len(got) != 0 {
		t.Fatalf("end before start = %v, want empty", got)
	}
	if got := DatesBetween(d, d.AddDate(0, 0, 2)); got[1] != "2024-02-29" {
		t.Fatalf("leap day missing: %v", got)
	}
	if got := BuildAxis(d, 0); len(got) != 0 {
		t.Fatalf("zero window = %v", got)
	}
}

func TestIndexOf(t *testing.T) {
	t.Parallel()
	axis := []string{"2024-01-10", "2024-01-11"}
	if IndexOf(axis, "2024-01-11") != 1 {
		t.Fatal("expected index 1")
	}
	if IndexOf(axis, "2024-01-15") != -1 || IndexOf(axis, "") != -1 {
		t.Fatal("expected -1 for dates outside the axis")
	}
}
