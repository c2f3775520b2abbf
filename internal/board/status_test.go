package board

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()
	tests := map[string]Status{
		"not_started":   StatusNotStarted,
		"Parts Ordered": StatusPartsOrdered,
		"parts-arrived": StatusPartsArrived,
		" ON HOLD ":     StatusOnHold,
		"in_progress":   StatusInProgress,
		"5":             StatusDone,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "6", "finished"} {
		if _, err := ParseStatus(in); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("ParseStatus(%q) err = %v", in, err)
		}
	}
}

func TestStatusOrderAndColors(t *testing.T) {
	t.Parallel()
	all := Statuses()
	if len(all) != 6 || all[0] != StatusNotStarted || all[5] != StatusDone {
		t.Fatalf("Statuses = %v", all)
	}
	seen := map[string]bool{}
	for _, st := range all {
		if seen[st.Color()] {
			t.Fatalf("duplicate color %s", st.Color())
		}
		seen[st.Color()] = true
	}
	if Status(42).Color() != UnknownStatusColor {
		t.Fatal("unknown status should be grey")
	}
}

func TestStatusText(t *testing.T) {
	t.Parallel()
	b, err := StatusPartsArrived.MarshalText()
	if err != nil || string(b) != "parts_arrived" {
		t.Fatalf("MarshalText = %s, %v", b, err)
	}
	var st Status
	if err := st.UnmarshalText([]byte("on_hold")); err != nil || st != StatusOnHold {
		t.Fatalf("UnmarshalText = %v, %v", st, err)
	}
}
