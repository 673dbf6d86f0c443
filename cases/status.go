package cases

import "fmt"

// Status represents the lifecycle of a case.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// forward lists every permitted transition. Anything absent is rejected.
var forward = map[Status][]Status{
	StatusDraft:      {StatusSubmitted},
	StatusSubmitted:  {StatusAssigned},
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

// ParseStatus converts a stored or wire value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("cases: unknown status %q", raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanAdvanceTo reports whether next is a direct forward step from s.
func (s Status) CanAdvanceTo(next Status) bool {
	for _, candidate := range forward[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// HasExpert reports whether a case in this status must carry an expert.
func (s Status) HasExpert() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
