package slotfd

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Strategy narrows the domains of a Store toward a fixpoint.
//
// Every strategy only removes slots that cannot appear in any assignment
// where each slot is used at most once, and fails with an *InfeasibleError
// when it proves that no such assignment exists. Strategies differ in how
// much they remove:
//
//	forward  ⊇  hall  ⊇  exact = matching
//
// where a larger set means weaker narrowing. After an error the store may
// already be partially narrowed, which is still sound; Exact is the
// exception and only writes its result once the search has finished.
type Strategy interface {
	// Name returns the configuration name of the strategy.
	Name() string

	// Propagate narrows s in place.
	Propagate(ctx context.Context, s *Store) error
}

// Strategy names accepted by NewStrategy.
const (
	StrategyForward  = "forward"
	StrategyHall     = "hall"
	StrategyExact    = "exact"
	StrategyMatching = "matching"
)

// StrategyNames lists every available strategy, weakest first.
func StrategyNames() []string {
	return []string{StrategyForward, StrategyHall, StrategyExact, StrategyMatching}
}

// EnumerationOrder selects the order in which exact enumeration assigns
// items. It affects running time only, never the narrowed domains.
type EnumerationOrder int

const (
	// OrderSmallestFirst assigns items with the fewest candidates first.
	OrderSmallestFirst EnumerationOrder = iota
	// OrderLargestFirst assigns items with the most candidates first.
	OrderLargestFirst
)

func (o EnumerationOrder) String() string {
	switch o {
	case OrderSmallestFirst:
		return "smallest-first"
	case OrderLargestFirst:
		return "largest-first"
	default:
		return fmt.Sprintf("EnumerationOrder(%d)", int(o))
	}
}

// ParseEnumerationOrder maps a configuration name to an order.
func ParseEnumerationOrder(name string) (EnumerationOrder, error) {
	switch name {
	case "", "smallest-first":
		return OrderSmallestFirst, nil
	case "largest-first":
		return OrderLargestFirst, nil
	}
	return 0, fmt.Errorf("unknown enumeration order %q (want smallest-first or largest-first)", name)
}

// NewStrategy builds the named strategy from cfg. A nil cfg uses
// DefaultSolverConfig; a nil logger discards output; a nil monitor records
// nothing.
func NewStrategy(name string, cfg *SolverConfig, logger *zap.Logger, monitor *SolverMonitor) (Strategy, error) {
	if cfg == nil {
		cfg = DefaultSolverConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	switch name {
	case StrategyForward:
		return &ForwardChecking{Logger: logger, Monitor: monitor}, nil
	case StrategyHall:
		return &HallSets{MaxItems: cfg.HallMaxItems, Logger: logger, Monitor: monitor}, nil
	case StrategyExact:
		return &Exact{Order: cfg.Order, StepBudget: cfg.StepBudget, Logger: logger, Monitor: monitor}, nil
	case StrategyMatching:
		return &Matching{Logger: logger, Monitor: monitor}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, StrategyNames())
}

// requireNonEmpty fails when some item already has no candidate slot.
func requireNonEmpty(strategy string, s *Store) error {
	for _, item := range s.order {
		if s.domains[item].Count() == 0 {
			return &InfeasibleError{Strategy: strategy, Item: item, Reason: "no candidate slot left"}
		}
	}
	return nil
}

// itemsBySize returns the store's items ordered by domain size. Ties keep
// the order of first appearance.
func itemsBySize(s *Store, order EnumerationOrder) []string {
	items := s.Items()
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := s.domains[items[i]].Count(), s.domains[items[j]].Count()
		if order == OrderLargestFirst {
			return ci > cj
		}
		return ci < cj
	})
	return items
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
