package catalog

import "fmt"

// LessonStatus is the closed set of states a lesson can be in for a user.
// The wire form matches the store's string values.
type LessonStatus uint8

const (
	StatusLocked LessonStatus = iota
	StatusNotStarted
	StatusInProgress
	StatusCompleted
)

func (s LessonStatus) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

func (s LessonStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseLessonStatus maps a stored string back to the enum. Unknown values
// are an error rather than a silent default.
func ParseLessonStatus(v string) (LessonStatus, error) {
	switch v {
	case "locked":
		return StatusLocked, nil
	case "not-started":
		return StatusNotStarted, nil
	case "in-progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return StatusLocked, fmt.Errorf("unknown lesson status %q", v)
}

// CanTransition encodes the allowed moves: a lesson is started from
// not-started and completed only from in-progress. Locked lessons cannot
// move at all; unlocking happens by derivation, not by transition.
func CanTransition(from, to LessonStatus) bool {
	switch from {
	case StatusNotStarted:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}

// DeriveLessonStatus computes the effective status of the lesson at index in
// an ordered lesson list, given the statuses recorded for the user (by
// lesson id). The ordering is total:
//
//	recorded status (in-progress/completed) > unlocked not-started > locked
//
// The first lesson is never locked; every later lesson unlocks only once its
// predecessor is completed.
func DeriveLessonStatus(index int, lessons []Lesson, recorded map[string]LessonStatus) LessonStatus {
	if index < 0 || index >= len(lessons) {
		return StatusLocked
	}
	if st, ok := recorded[lessons[index].ID]; ok && st != StatusNotStarted && st != StatusLocked {
		return st
	}
	if index == 0 {
		return StatusNotStarted
	}
	if recorded[lessons[index-1].ID] == StatusCompleted {
		return StatusNotStarted
	}
	return StatusLocked
}
