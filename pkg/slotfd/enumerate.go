package slotfd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Exact enumerates every complete injective assignment and replaces each
// item's domain with the set of slots it receives in at least one of them.
// The result is the most precise narrowing possible: a slot survives iff
// some fully consistent assignment uses it.
//
// The search is an iterative depth-first walk with an explicit stack. Each
// frame assigns one item; a slot is taken when the frame picks it and
// released before the frame picks its next slot or is popped, so the shared
// assignment is always exactly the path from the root to the top frame.
// Every complete assignment must be visited, so the cost is exponential in
// the worst case. StepBudget and context cancellation bound it; when either
// stops the search the store is left unchanged.
type Exact struct {
	Order      EnumerationOrder
	StepBudget int64 // maximum search nodes, 0 for no limit
	Logger     *zap.Logger
	Monitor    *SolverMonitor
}

// Name implements Strategy.
func (e *Exact) Name() string { return StrategyExact }

// enumFrame is one level of the search. It assigns the item at its depth and
// holds that item's candidate slots and current slot (0 for none).
type enumFrame struct {
	choices []int
	next    int
	slot    int
}

// Propagate implements Strategy.
func (e *Exact) Propagate(ctx context.Context, s *Store) error {
	e.Monitor.StartPropagation()
	defer e.Monitor.EndPropagation()

	if err := requireNonEmpty(StrategyExact, s); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return &SearchLimitError{Cause: err}
	}
	items := itemsBySize(s, e.Order)
	n := len(items)
	if n == 0 {
		return nil
	}

	start := time.Now()
	possible, stats, err := e.search(ctx, s, items)
	e.Monitor.RecordSearchTime(time.Since(start))
	e.Monitor.RecordNodes(stats.nodes)
	e.Monitor.RecordBacktracks(stats.backtracks)
	e.Monitor.RecordSolutions(stats.solutions)
	e.Monitor.RecordDepth(stats.maxDepth)

	logger := nopIfNil(e.Logger)
	logger.Debug("exact enumeration finished",
		zap.Int("items", n),
		zap.Stringer("order", e.Order),
		zap.Int64("nodes", stats.nodes),
		zap.Int64("solutions", stats.solutions),
		zap.Error(err))
	if err != nil {
		return err
	}

	if stats.solutions == 0 {
		return &InfeasibleError{Strategy: StrategyExact, Reason: "no complete assignment exists"}
	}

	removals := 0
	for k, item := range items {
		old := s.domains[item]
		if dropped := old.Count() - possible[k].Count(); dropped > 0 {
			s.domains[item] = possible[k]
			removals += dropped
		}
	}
	e.Monitor.RecordRemovals(removals)
	return nil
}

type searchStats struct {
	nodes      int64
	backtracks int64
	solutions  int64
	maxDepth   int
}

// search walks all complete assignments of items and returns, per item, the
// slots used in at least one of them.
func (e *Exact) search(ctx context.Context, s *Store, items []string) ([]*BitSetDomain, searchStats, error) {
	var stats searchStats
	n := len(items)
	maxVal := s.Slots()

	choices := make([][]int, n)
	possible := make([]*BitSetDomain, n)
	for k, item := range items {
		choices[k] = s.domains[item].ToSlice()
		possible[k] = NewEmptyDomain(maxVal)
	}

	used := make([]bool, maxVal+1)
	assignment := make([]int, n)
	stack := make([]enumFrame, 0, n)
	stack = append(stack, enumFrame{choices: choices[0]})

	for len(stack) > 0 {
		depth := len(stack) - 1
		f := &stack[depth]

		// Release the slot chosen on the previous visit of this frame.
		if f.slot != 0 {
			used[f.slot] = false
			assignment[depth] = 0
			f.slot = 0
		}

		slot := 0
		for f.next < len(f.choices) {
			c := f.choices[f.next]
			f.next++
			if !used[c] {
				slot = c
				break
			}
		}
		if slot == 0 {
			stack = stack[:depth]
			stats.backtracks++
			continue
		}

		stats.nodes++
		if e.StepBudget > 0 && stats.nodes > e.StepBudget {
			return nil, stats, &SearchLimitError{Nodes: stats.nodes - 1}
		}
		if stats.nodes&0x3ff == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, &SearchLimitError{Nodes: stats.nodes, Cause: err}
			}
		}

		f.slot = slot
		used[slot] = true
		assignment[depth] = slot
		if depth+1 > stats.maxDepth {
			stats.maxDepth = depth + 1
		}

		if depth == n-1 {
			stats.solutions++
			for k, v := range assignment {
				possible[k].insert(v)
			}
			continue
		}
		stack = append(stack, enumFrame{choices: choices[depth+1]})
	}

	return possible, stats, nil
}
