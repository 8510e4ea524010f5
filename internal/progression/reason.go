package progression

import (
	"fmt"
)

// Reason explains why the adaptive rule picked a target.
type Reason int

const (
	ReasonFirstWeek Reason = iota + 1
	ReasonDeload
	ReasonHitMaxReps
	ReasonHitTarget
	ReasonHold
	ReasonRegress
)

var reasonNames = map[Reason]string{
	ReasonFirstWeek:  "first_week",
	ReasonDeload:     "deload",
	ReasonHitMaxReps: "hit_max_reps",
	ReasonHitTarget:  "hit_target",
	ReasonHold:       "hold",
	ReasonRegress:    "regress",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Describe returns a short human readable explanation.
func (r Reason) Describe() string {
	switch r {
	case ReasonFirstWeek:
		return "no previous performance, starting from base values"
	case ReasonDeload:
		return "deload week, reduced weight and volume"
	case ReasonHitMaxReps:
		return "top of the rep range reached, weight goes up"
	case ReasonHitTarget:
		return "target met, adding a rep"
	case ReasonHold:
		return "target missed, repeating the same load"
	case ReasonRegress:
		return "repeated failures at this weight, backing off"
	default:
		panic(fmt.Sprintf("progression: unhandled reason %d", int(r)))
	}
}

// MarshalText encodes the reason as its snake_case name.
func (r Reason) MarshalText() ([]byte, error) {
	name, ok := reasonNames[r]
	if !ok {
		return nil, fmt.Errorf("progression: invalid reason %d", int(r))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a snake_case reason name.
func (r *Reason) UnmarshalText(text []byte) error {
	for reason, name := range reasonNames {
		if name == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("progression: unknown reason %q", string(text))
}
