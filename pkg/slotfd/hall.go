package slotfd

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"go.uber.org/zap"
)

// DefaultHallMaxItems is the largest item count for which HallSets searches
// the full power set.
const DefaultHallMaxItems = 16

// hallMaskLimit bounds MaxItems; the search keeps one union per subset.
const hallMaskLimit = 24

// HallSets is Hall-set elimination. For every subset S of items it compares
// the union D(S) of their domains with |S|:
//
//   - |D(S)| < |S|: the items of S cannot all be placed, infeasible.
//   - |D(S)| = |S|: S uses up all of D(S), so those slots are removed from
//     every item outside S.
//
// After any removal the subset search restarts, until a full sweep changes
// nothing. Singletons are the case |S| = 1, so this subsumes
// ForwardChecking. The search is exponential in the number of items; above
// MaxItems it falls back to forward checking followed by a matching-based
// feasibility check, which keeps infeasibility detection complete but loses
// the extra narrowing.
type HallSets struct {
	MaxItems int // 0 means DefaultHallMaxItems
	Logger   *zap.Logger
	Monitor  *SolverMonitor
}

// Name implements Strategy.
func (h *HallSets) Name() string { return StrategyHall }

func (h *HallSets) maxItems() int {
	switch {
	case h.MaxItems <= 0:
		return DefaultHallMaxItems
	case h.MaxItems > hallMaskLimit:
		return hallMaskLimit
	}
	return h.MaxItems
}

// Propagate implements Strategy.
func (h *HallSets) Propagate(ctx context.Context, s *Store) error {
	h.Monitor.StartPropagation()
	defer h.Monitor.EndPropagation()
	logger := nopIfNil(h.Logger)

	if err := requireNonEmpty(StrategyHall, s); err != nil {
		return err
	}

	n := s.Len()
	if n > h.maxItems() {
		logger.Warn("too many items for hall-set search, falling back to forward checking",
			zap.Int("items", n),
			zap.Int("max_items", h.maxItems()))
		return h.fallback(ctx, s)
	}

	removals, passes, err := h.eliminate(ctx, s)
	logger.Debug("hall-set elimination finished",
		zap.Int("items", n),
		zap.Int("passes", passes),
		zap.Int("removals", removals),
		zap.Error(err))
	return err
}

func (h *HallSets) fallback(ctx context.Context, s *Store) error {
	if _, _, err := forwardCheck(ctx, s, h.Monitor); err != nil {
		var inf *InfeasibleError
		if errors.As(err, &inf) {
			inf.Strategy = StrategyHall
		}
		return err
	}
	domains := make([]Domain, 0, s.Len())
	for _, item := range s.order {
		domains = append(domains, s.domains[item])
	}
	if !perfectMatchingExists(domains, s.Slots()) {
		return &InfeasibleError{
			Strategy: StrategyHall,
			Reason:   "some set of items has fewer candidate slots than members",
		}
	}
	return nil
}

// eliminate runs the power-set search to a fixpoint.
func (h *HallSets) eliminate(ctx context.Context, s *Store) (removals, passes int, err error) {
	items := s.order
	n := len(items)
	if n == 0 {
		return 0, 0, nil
	}
	full := uint64(1)<<uint(n) - 1
	unions := make([]Domain, full+1)
	unions[0] = NewEmptyDomain(s.Slots())

	for {
		passes++
		h.Monitor.RecordPass()
		changed := false

		var checked int64
		for mask := uint64(1); mask <= full; mask++ {
			if mask&0x3ff == 0 {
				if err := ctx.Err(); err != nil {
					h.Monitor.RecordSubsets(checked)
					return removals, passes, &SearchLimitError{Nodes: checked, Cause: err}
				}
			}
			checked++

			// D(S) = D(S without its lowest member) ∪ D(lowest member)
			low := bits.TrailingZeros64(mask)
			union := unions[mask&(mask-1)].Union(s.domains[items[low]])
			unions[mask] = union

			size := bits.OnesCount64(mask)
			slots := union.Count()
			if slots < size {
				h.Monitor.RecordSubsets(checked)
				return removals, passes, &InfeasibleError{
					Strategy: StrategyHall,
					Reason: fmt.Sprintf("items %v have only %d candidate slots %s",
						subsetItems(items, mask), slots, union),
				}
			}
			if slots > size || mask == full {
				continue
			}

			for j := 0; j < n; j++ {
				if mask&(1<<uint(j)) != 0 {
					continue
				}
				other := items[j]
				od := s.domains[other]
				nd := od.Difference(union)
				dropped := od.Count() - nd.Count()
				if dropped == 0 {
					continue
				}
				if nd.Count() == 0 {
					h.Monitor.RecordSubsets(checked)
					return removals, passes, &InfeasibleError{
						Strategy: StrategyHall,
						Item:     other,
						Reason: fmt.Sprintf("every candidate slot is reserved by items %v",
							subsetItems(items, mask)),
					}
				}
				s.domains[other] = nd
				removals += dropped
				h.Monitor.RecordRemovals(dropped)
				changed = true
			}
			if changed {
				break
			}
		}
		h.Monitor.RecordSubsets(checked)

		if !changed {
			return removals, passes, nil
		}
	}
}

func subsetItems(items []string, mask uint64) []string {
	var out []string
	for i, item := range items {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, item)
		}
	}
	return out
}
