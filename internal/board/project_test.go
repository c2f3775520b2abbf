package board

import (
	"strings"
	"testing"
)

func strp(s string) *string { return &s }

func ids(tasks []Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return strings.Join(out, ",")
}

func sampleTasks() []Task {
	return []Task{
		{ID: "a", Name: "Tanaka", Status: StatusInProgress, EstimatedHours: 3, Start: "2024-01-12", Deadline: "2024-01-20", Memo: strp("b")},
		{ID: "b", Name: "Suzuki", Status: StatusNotStarted, EstimatedHours: 10, Start: "2024-01-10"},
		{ID: "c", Name: "Tanabe", Status: StatusDone, EstimatedHours: 1, Start: "2024-01-11", Deadline: "2024-01-15", Memo: strp("a")},
		{ID: "d", Name: "sato", Status: StatusOnHold, EstimatedHours: 6, Start: "2024-01-13", Deadline: "2024-01-18"},
	}
}

func TestProjectSearch(t *testing.T) {
	t.Parallel()
	tasks := sampleTasks()
	tests := []struct {
		search string
		want   string
	}{
		{search: "", want: "a,b,c,d"},
		{search: "   ", want: "a,b,c,d"},
		{search: "Tana", want: "a,c"},
		{search: "  Tana ", want: "a,c"},
		{search: "Sato", want: ""}, // case-sensitive
		{search: "sato", want: "d"},
	}
	for _, tt := range tests {
		if got := ids(Project(tasks, tt.search, nil)); got != tt.want {
			t.Fatalf("search %q = %s, want %s", tt.search, got, tt.want)
		}
	}
}

func TestProjectSortKeys(t *testing.T) {
	t.Parallel()
	tasks := sampleTasks()
	tests := []struct {
		key  Field
		asc  string
		desc string
	}{
		{key: FieldEstimatedHours, asc: "c,a,d,b", desc: "b,d,a,c"},
		{key: FieldStatus, asc: "b,d,a,c", desc: "c,a,d,b"},
		{key: FieldStart, asc: "b,c,a,d", desc: "d,a,c,b"},
		{key: FieldName, asc: "b,c,a,d", desc: "d,a,c,b"},
		// unset deadline compares as "" and leads ascending
		{key: FieldDeadline, asc: "b,c,d,a", desc: "a,d,c,b"},
		// absent memo: after non-null ascending, before it descending
		{key: FieldMemo, asc: "c,a,b,d", desc: "b,d,a,c"},
	}
	for _, tt := range tests {
		if got := ids(Project(tasks, "", &SortSpec{Key: tt.key, Asc: true})); got != tt.asc {
			t.Fatalf("%s asc = %s, want %s", tt.key, got, tt.asc)
		}
		if got := ids(Project(tasks, "", &SortSpec{Key: tt.key, Asc: false})); got != tt.desc {
			t.Fatalf("%s desc = %s, want %s", tt.key, got, tt.desc)
		}
	}
}

func TestProjectNumericNotLexicographic(t *testing.T) {
	t.Parallel()
	tasks := []Task{{ID: "x", EstimatedHours: 10}, {ID: "y", EstimatedHours: 9}}
	if got := ids(Project(tasks, "", &SortSpec{Key: FieldEstimatedHours, Asc: true})); got != "y,x" {
		t.Fatalf("got %s, want y,x", got)
	}
}

func TestProjectStableOnTies(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		{ID: "1", Status: StatusDone},
		{ID: "2", Status: StatusNotStarted},
		{ID: "3", Status: StatusDone},
		{ID: "4", Status: StatusNotStarted},
		{ID: "5", Status: StatusDone},
	}
	asc := ids(Project(tasks, "", &SortSpec{Key: FieldStatus, Asc: true}))
	desc := ids(Project(tasks, "", &SortSpec{Key: FieldStatus, Asc: false}))
	if asc != "2,4,1,3,5" {
		t.Fatalf("asc = %s", asc)
	}
	if desc != "1,3,5,2,4" {
		t.Fatalf("desc = %s", desc)
	}
}

func TestProjectOppositeDirectionsReverse(t *testing.T) {
	t.Parallel()
	tasks := sampleTasks()
	asc := Project(tasks, "", &SortSpec{Key: FieldEstimatedHours, Asc: true})
	desc := Project(tasks, "", &SortSpec{Key: FieldEstimatedHours, Asc: false})
	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("asc %s is not the reverse of desc %s", ids(asc), ids(desc))
		}
	}
}

func TestProjectPermutationAndPurity(t *testing.T) {
	t.Parallel()
	tasks := sampleTasks()
	before := ids(tasks)
	got := Project(tasks, "", &SortSpec{Key: FieldName, Asc: false})
	if ids(tasks) != before {
		t.Fatal("input slice was reordered")
	}
	seen := map[string]int{}
	for _, task := range got {
		seen[task.ID]++
	}
	if len(got) != len(tasks) || len(seen) != len(tasks) {
		t.Fatalf("not a permutation: %s", ids(got))
	}
}

func TestProjectFiltersBeforeSorting(t *testing.T) {
	t.Parallel()
	got := Project(sampleTasks(), "Tana", &SortSpec{Key: FieldEstimatedHours, Asc: false})
	if ids(got) != "a,c" {
		t.Fatalf("got %s, want a,c", ids(got))
	}
}

func TestSortSpecToggle(t *testing.T) {
	t.Parallel()
	var s *SortSpec
	s = s.Toggle(FieldStatus)
	if s.Key != FieldStatus || !s.Asc {
		t.Fatalf("first click = %+v", s)
	}
	s = s.Toggle(FieldStatus)
	if s.Asc {
		t.Fatal("second click should flip to descending")
	}
	s = s.Toggle(FieldDeadline)
	if s.Key != FieldDeadline || !s.Asc {
		t.Fatalf("new key should start ascending, got %+v", s)
	}
}
