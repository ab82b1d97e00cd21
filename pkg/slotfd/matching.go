package slotfd

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Matching filters domains with Régin's all-different algorithm.
//
// A slot stays in an item's domain iff the edge (item, slot) belongs to some
// matching that places every item on a distinct slot. That is exactly the set
// exhaustive enumeration computes, obtained here from one maximum bipartite
// matching and the strongly connected components of its alternating graph:
//
//	O(items·slots) edges, O(items · edges) for the matching
//
// The result is a fixpoint after a single pass.
type Matching struct {
	Logger  *zap.Logger
	Monitor *SolverMonitor
}

// Name implements Strategy.
func (m *Matching) Name() string { return StrategyMatching }

// Propagate implements Strategy.
func (m *Matching) Propagate(ctx context.Context, s *Store) error {
	m.Monitor.StartPropagation()
	defer m.Monitor.EndPropagation()

	if err := requireNonEmpty(StrategyMatching, s); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &SearchLimitError{Cause: err}
	}

	items := s.order
	n := len(items)
	if n == 0 {
		return nil
	}
	domains := make([]Domain, n)
	for i, item := range items {
		domains[i] = s.domains[item]
	}
	maxVal := s.Slots()
	m.Monitor.RecordPass()

	matchVar, matchVal, size := maxMatching(domains, maxVal)
	if size < n {
		return &InfeasibleError{
			Strategy: StrategyMatching,
			Reason:   fmt.Sprintf("only %d of %d items can be placed on distinct slots", size, n),
		}
	}

	g := buildAlternatingGraph(domains, matchVar, maxVal)
	sccs := g.components()

	// Slots reachable from a free slot lie on an even alternating path.
	reachable := make([]bool, g.size)
	stack := make([]int, 0, maxVal)
	for val := 1; val <= maxVal; val++ {
		if matchVal[val] == -1 {
			node := n + val - 1
			reachable[node] = true
			stack = append(stack, node)
		}
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range g.adj[v] {
			if !reachable[w] {
				reachable[w] = true
				stack = append(stack, w)
			}
		}
	}

	removals := 0
	for i, item := range items {
		supported := NewEmptyDomain(maxVal)
		domains[i].IterateValues(func(val int) {
			valNode := n + val - 1
			if matchVar[i] == val || sccs[i] == sccs[valNode] || reachable[valNode] {
				supported.insert(val)
			}
		})
		if dropped := domains[i].Count() - supported.Count(); dropped > 0 {
			s.domains[item] = supported
			removals += dropped
		}
	}
	m.Monitor.RecordRemovals(removals)

	nopIfNil(m.Logger).Debug("matching filter finished",
		zap.Int("items", n),
		zap.Int("removals", removals))
	return nil
}

// maxMatching computes a maximum bipartite matching between items (indices
// into domains) and slots. matchVar[i] is the slot of item i or -1;
// matchVal[v] is the item on slot v or -1. Items with small domains are
// tried first.
func maxMatching(domains []Domain, maxVal int) (matchVar, matchVal []int, size int) {
	n := len(domains)
	matchVar = make([]int, n)
	for i := range matchVar {
		matchVar[i] = -1
	}
	matchVal = make([]int, maxVal+1)
	for i := range matchVal {
		matchVal[i] = -1
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return domains[order[a]].Count() < domains[order[b]].Count()
	})

	visited := make([]bool, maxVal+1)
	var augment func(vi int) bool
	augment = func(vi int) bool {
		found := false
		domains[vi].IterateValues(func(val int) {
			if found || val < 1 || val > maxVal || visited[val] {
				return
			}
			visited[val] = true
			if matchVal[val] == -1 || augment(matchVal[val]) {
				matchVal[val] = vi
				matchVar[vi] = val
				found = true
			}
		})
		return found
	}

	for _, vi := range order {
		for i := range visited {
			visited[i] = false
		}
		if augment(vi) {
			size++
		}
	}
	return matchVar, matchVal, size
}

// perfectMatchingExists reports whether every domain can be given a
// distinct slot.
func perfectMatchingExists(domains []Domain, maxVal int) bool {
	_, _, size := maxMatching(domains, maxVal)
	return size == len(domains)
}

// alternatingGraph is the directed graph of Régin's algorithm.
//   - Nodes: items (0..n-1) and slots (n..n+maxVal-1)
//   - Matched edges:   item -> slot
//   - Unmatched edges: slot -> item
type alternatingGraph struct {
	adj  [][]int
	size int
}

func buildAlternatingGraph(domains []Domain, matchVar []int, maxVal int) *alternatingGraph {
	n := len(domains)
	g := &alternatingGraph{adj: make([][]int, n+maxVal), size: n + maxVal}
	for vi := 0; vi < n; vi++ {
		domains[vi].IterateValues(func(val int) {
			valNode := n + val - 1
			if val == matchVar[vi] {
				g.adj[vi] = append(g.adj[vi], valNode)
			} else {
				g.adj[valNode] = append(g.adj[valNode], vi)
			}
		})
	}
	return g
}

// components computes strongly connected components using Tarjan's
// algorithm. Returns scc[node] = component ID.
func (g *alternatingGraph) components() []int {
	scc := make([]int, g.size)
	indices := make([]int, g.size)
	lowlink := make([]int, g.size)
	onStack := make([]bool, g.size)
	for i := range indices {
		indices[i] = -1
		scc[i] = -1
	}
	var stack []int
	index, count := 0, 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if indices[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && indices[w] < lowlink[v] {
				lowlink[v] = indices[w]
			}
		}

		if lowlink[v] == indices[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc[w] = count
				if w == v {
					break
				}
			}
			count++
		}
	}

	for v := 0; v < g.size; v++ {
		if indices[v] == -1 {
			strongconnect(v)
		}
	}
	return scc
}
