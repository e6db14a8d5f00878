package catalog

import "testing"

func lessonList(n int) []Lesson {
	out := make([]Lesson, n)
	for i := range out {
		out[i] = Lesson{ID: string(rune('a' + i)), OrderIndex: i}
	}
	return out
}

func TestDeriveLessonStatus(t *testing.T) {
	lessons := lessonList(4)

	cases := []struct {
		name     string
		recorded map[string]LessonStatus
		index    int
		want     LessonStatus
	}{
		{"first lesson never locked", nil, 0, StatusNotStarted},
		{"second locked until first completes", nil, 1, StatusLocked},
		{"second locked while first in progress",
			map[string]LessonStatus{"a": StatusInProgress}, 1, StatusLocked},
		{"second unlocks when first completed",
			map[string]LessonStatus{"a": StatusCompleted}, 1, StatusNotStarted},
		{"recorded in-progress wins",
			map[string]LessonStatus{"a": StatusCompleted, "b": StatusInProgress}, 1, StatusInProgress},
		{"recorded completed wins",
			map[string]LessonStatus{"a": StatusCompleted, "b": StatusCompleted}, 1, StatusCompleted},
		{"third still locked with gap",
			map[string]LessonStatus{"a": StatusCompleted}, 2, StatusLocked},
		{"out of range is locked", nil, 9, StatusLocked},
		{"negative index is locked", nil, -1, StatusLocked},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DeriveLessonStatus(c.index, lessons, c.recorded); got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]LessonStatus{
		{StatusNotStarted, StatusInProgress},
		{StatusInProgress, StatusCompleted},
	}
	for _, p := range allowed {
		if !CanTransition(p[0], p[1]) {
			t.Errorf("%v -> %v must be allowed", p[0], p[1])
		}
	}
	denied := [][2]LessonStatus{
		{StatusLocked, StatusInProgress},
		{StatusLocked, StatusCompleted},
		{StatusNotStarted, StatusCompleted}, // must pass through in-progress
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusNotStarted},
		{StatusInProgress, StatusNotStarted},
	}
	for _, p := range denied {
		if CanTransition(p[0], p[1]) {
			t.Errorf("%v -> %v must be denied", p[0], p[1])
		}
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []LessonStatus{StatusLocked, StatusNotStarted, StatusInProgress, StatusCompleted} {
		got, err := ParseLessonStatus(s.String())
		if err != nil {
			t.Fatalf("parse %q: %v", s.String(), err)
		}
		if got != s {
			t.Fatalf("round trip %v -> %v", s, got)
		}
	}
	if _, err := ParseLessonStatus("frozen"); err == nil {
		t.Fatal("unknown status must error")
	}
}
