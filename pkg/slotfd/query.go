package slotfd

import "fmt"

// QueryMode decides how Query treats items without a domain.
type QueryMode int

const (
	// QueryStrict fails with an *UnknownItemError.
	QueryStrict QueryMode = iota
	// QueryLenient substitutes the unclaimed residual U minus all known
	// domains. Only meaningful once propagation has finished.
	QueryLenient
)

func (m QueryMode) String() string {
	switch m {
	case QueryStrict:
		return "strict"
	case QueryLenient:
		return "lenient"
	default:
		return fmt.Sprintf("QueryMode(%d)", int(m))
	}
}

// ParseQueryMode maps a configuration name to a query mode.
func ParseQueryMode(name string) (QueryMode, error) {
	switch name {
	case "", "strict":
		return QueryStrict, nil
	case "lenient":
		return QueryLenient, nil
	}
	return 0, fmt.Errorf("unknown query mode %q (want strict or lenient)", name)
}

// Answer is the result of a query: the slots the requested items may occupy.
type Answer struct {
	Slots     Domain
	Requested int // number of distinct requested items
}

// Check compares the number of slots with the number of requested items.
// More slots than items means the input under-determines the answer and
// yields an *UnderconstrainedError; fewer slots means the items cannot be
// placed on distinct slots and yields an *InfeasibleError. Only forward
// checking can leave a store in the latter state.
func (a *Answer) Check() error {
	switch got := a.Slots.Count(); {
	case got > a.Requested:
		return &UnderconstrainedError{Slots: a.Slots, Requested: a.Requested}
	case got < a.Requested:
		return &InfeasibleError{
			Reason: fmt.Sprintf("%d requested items share only %d slots %s", a.Requested, got, a.Slots),
		}
	}
	return nil
}

// Query returns the union of the domains of the wanted items. Duplicate
// names count once.
func (s *Store) Query(wanted []string, mode QueryMode) (*Answer, error) {
	union := Domain(NewEmptyDomain(s.Slots()))
	seen := make(map[string]struct{}, len(wanted))
	var residual Domain

	for _, item := range wanted {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}

		d, ok := s.domains[item]
		if !ok {
			if mode != QueryLenient {
				return nil, &UnknownItemError{Item: item}
			}
			if residual == nil {
				residual = s.Unclaimed()
			}
			d = residual
		}
		union = union.Union(d)
	}
	return &Answer{Slots: union, Requested: len(seen)}, nil
}
