package slotfd

import (
	"errors"
	"fmt"
)

// Error kinds reported by the pipeline. Every typed error below unwraps to
// one of these, so callers can use errors.Is without knowing the details.
var (
	ErrMalformedGroup   = errors.New("malformed group")
	ErrInfeasible       = errors.New("no injective assignment exists")
	ErrUnknownItem      = errors.New("unknown item")
	ErrUnderconstrained = errors.New("answer is underconstrained")
	ErrSearchLimit      = errors.New("search limit reached")
)

// MalformedGroupError reports a group whose item and slot subsets cannot
// describe a bijection.
type MalformedGroupError struct {
	Group  int // index of the group in its input sequence, -1 if unknown
	Items  int // number of distinct items
	Slots  int // number of distinct slots
	Reason string
}

func (e *MalformedGroupError) Error() string {
	if e.Group >= 0 {
		return fmt.Sprintf("malformed group %d (%d items, %d slots): %s", e.Group, e.Items, e.Slots, e.Reason)
	}
	return fmt.Sprintf("malformed group (%d items, %d slots): %s", e.Items, e.Slots, e.Reason)
}

func (e *MalformedGroupError) Unwrap() error { return ErrMalformedGroup }

// InfeasibleError reports that propagation proved the domains admit no
// assignment in which every slot is used at most once.
type InfeasibleError struct {
	Strategy string
	Item     string // offending item, empty when the proof is global
	Slot     int    // offending slot, 0 when not applicable
	Reason   string
}

func (e *InfeasibleError) Error() string {
	msg := "infeasible"
	if e.Strategy != "" {
		msg += " (" + e.Strategy + ")"
	}
	if e.Item != "" {
		msg += fmt.Sprintf(": item %q", e.Item)
		if e.Slot > 0 {
			msg += fmt.Sprintf(" slot %d", e.Slot)
		}
	}
	return msg + ": " + e.Reason
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }

// UnknownItemError reports a queried item that has no domain.
type UnknownItemError struct {
	Item string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q: no constraint data", e.Item)
}

func (e *UnknownItemError) Unwrap() error { return ErrUnknownItem }

// UnderconstrainedError reports that the queried items may occupy more slots
// than there are items, i.e. the input does not pin down a unique answer.
type UnderconstrainedError struct {
	Slots     Domain
	Requested int
}

func (e *UnderconstrainedError) Error() string {
	return fmt.Sprintf("%d slots %s are plausible for %d requested items, more data is needed",
		e.Slots.Count(), e.Slots, e.Requested)
}

func (e *UnderconstrainedError) Unwrap() error { return ErrUnderconstrained }

// SearchLimitError reports that exhaustive search was stopped by a step
// budget or by context cancellation before visiting every assignment.
type SearchLimitError struct {
	Nodes int64
	Cause error // context error, nil when the step budget was exhausted
}

func (e *SearchLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search stopped after %d nodes: %v", e.Nodes, e.Cause)
	}
	return fmt.Sprintf("search stopped after %d nodes: step budget exhausted", e.Nodes)
}

// Unwrap exposes both the sentinel and the context cause.
func (e *SearchLimitError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrSearchLimit, e.Cause}
	}
	return []error{ErrSearchLimit}
}
