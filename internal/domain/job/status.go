// Application status graph:
//
//	SUBMITTED ──► VIEWED ──► INTERVIEWING ──► OFFERED
//	    │            │             │
//	    └────────────┴─────────────┴──► REJECTED
//
// OFFERED and REJECTED are terminal.
package job

import "fmt"

type Status string

const (
	StatusSubmitted    Status = "SUBMITTED"
	StatusViewed       Status = "VIEWED"
	StatusInterviewing Status = "INTERVIEWING"
	StatusOffered      Status = "OFFERED"
	StatusRejected     Status = "REJECTED"
)

var validTransitions = map[Status][]Status{
	StatusSubmitted:    {StatusViewed, StatusRejected},
	StatusViewed:       {StatusInterviewing, StatusRejected},
	StatusInterviewing: {StatusOffered, StatusRejected},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusSubmitted, StatusViewed, StatusInterviewing, StatusOffered, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusOffered || s == StatusRejected
}

// Withdrawable reports whether the applicant may still pull the application.
func Withdrawable(s Status) bool {
	return s == StatusSubmitted || s == StatusViewed
}
