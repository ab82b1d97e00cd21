package slotfd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ForwardChecking is singleton forward-checking: whenever an item is forced
// onto a single slot, that slot is removed from every other item. Passes
// repeat until nothing changes.
//
// It is the weakest and cheapest strategy, O(items²) per pass and at most
// items·slots removals overall. It detects two items forced onto the same
// slot, but not larger pigeonhole conflicts such as three items sharing two
// slots.
type ForwardChecking struct {
	Logger  *zap.Logger
	Monitor *SolverMonitor
}

// Name implements Strategy.
func (f *ForwardChecking) Name() string { return StrategyForward }

// Propagate implements Strategy.
func (f *ForwardChecking) Propagate(ctx context.Context, s *Store) error {
	f.Monitor.StartPropagation()
	defer f.Monitor.EndPropagation()

	if err := requireNonEmpty(StrategyForward, s); err != nil {
		return err
	}
	removals, passes, err := forwardCheck(ctx, s, f.Monitor)
	nopIfNil(f.Logger).Debug("forward checking finished",
		zap.Int("items", s.Len()),
		zap.Int("passes", passes),
		zap.Int("removals", removals),
		zap.Error(err))
	return err
}

// forwardCheck runs singleton elimination to a fixpoint.
func forwardCheck(ctx context.Context, s *Store, monitor *SolverMonitor) (removals, passes int, err error) {
	items := s.order
	for changed := true; changed; {
		if err := ctx.Err(); err != nil {
			return removals, passes, &SearchLimitError{Cause: err}
		}
		changed = false
		passes++
		monitor.RecordPass()

		for _, owner := range items {
			d := s.domains[owner]
			if !d.IsSingleton() {
				continue
			}
			slot := d.SingletonValue()
			for _, other := range items {
				if other == owner {
					continue
				}
				od := s.domains[other]
				if !od.Has(slot) {
					continue
				}
				if od.IsSingleton() {
					return removals, passes, &InfeasibleError{
						Strategy: StrategyForward,
						Item:     other,
						Slot:     slot,
						Reason:   fmt.Sprintf("both %q and %q are forced onto the same slot", owner, other),
					}
				}
				s.domains[other] = od.Remove(slot)
				removals++
				monitor.RecordRemovals(1)
				changed = true
			}
		}
	}
	return removals, passes, nil
}
