// Package outcome models the four degrees of success of a check.
package outcome

import (
	"fmt"
	"strings"
)

// Degree is the 4-tier result of a check against a DC.
type Degree int

const (
	CriticalFailure Degree = iota
	Failure
	Success
	CriticalSuccess
)

// String returns a human-readable label.
func (d Degree) String() string {
	switch d {
	case CriticalSuccess:
		return "critical success"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CriticalFailure:
		return "critical failure"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the four degrees.
func (d Degree) Valid() bool { return d >= CriticalFailure && d <= CriticalSuccess }

// For determines the degree of a check total against dc. die is the natural
// d20 result: a 20 improves the degree one step and a 1 worsens it one step.
// Pass die 0 when the natural result is unknown.
//
// Postcondition: the result is Valid.
func For(total, dc, die int) Degree {
	var d Degree
	switch {
	case total >= dc+10:
		d = CriticalSuccess
	case total >= dc:
		d = Success
	case total > dc-10:
		d = Failure
	default:
		d = CriticalFailure
	}
	switch die {
	case 20:
		d = min(d+1, CriticalSuccess)
	case 1:
		d = max(d-1, CriticalFailure)
	}
	return d
}

// Parse reads a degree from its label, accepting spaces, hyphens, or
// underscores between words.
func Parse(s string) (Degree, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for d := CriticalFailure; d <= CriticalSuccess; d++ {
		if d.String() == norm {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown degree of success %q", s)
}
