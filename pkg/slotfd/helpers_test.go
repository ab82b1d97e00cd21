package slotfd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestStore ingests groups into a fresh store over {1..n}.
func newTestStore(t *testing.T, n int, groups ...Group) *Store {
	t.Helper()
	s := NewStore(n)
	require.NoError(t, s.IngestGroups(groups))
	return s
}

// storeFromDomains builds a store with the given domains directly, in the
// order listed.
func storeFromDomains(n int, items []string, domains [][]int) *Store {
	s := NewStore(n)
	for i, item := range items {
		s.set(item, NewBitSetDomainFromValues(n, domains[i]))
	}
	return s
}

// domainsOf flattens a store for cmp.Diff.
func domainsOf(s *Store) map[string][]int {
	out := make(map[string][]int, s.Len())
	for _, item := range s.Items() {
		d, _ := s.Domain(item)
		out[item] = d.ToSlice()
	}
	return out
}

func g(items []string, slots ...int) Group {
	return Group{Items: items, Slots: slots}
}

func allStrategies(t *testing.T) []Strategy {
	t.Helper()
	var out []Strategy
	for _, name := range StrategyNames() {
		st, err := NewStrategy(name, nil, nil, nil)
		require.NoError(t, err)
		out = append(out, st)
	}
	return out
}

// randomFeasibleProblem hides a random injective assignment of items to
// slots and reveals it through random groups, so at least one complete
// assignment always exists.
func randomFeasibleProblem(rng *rand.Rand, items, slots, groups int) *Problem {
	names := make([]string, items)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	hidden := rng.Perm(slots)[:items]

	p := &Problem{Slots: slots, Wanted: names}
	for k := 0; k < groups; k++ {
		size := 1 + rng.Intn(items)
		pick := rng.Perm(items)[:size]
		var grp Group
		for _, i := range pick {
			grp.Items = append(grp.Items, names[i])
			grp.Slots = append(grp.Slots, hidden[i]+1)
		}
		// the slot order inside a group carries no information
		rng.Shuffle(len(grp.Slots), func(a, b int) {
			grp.Slots[a], grp.Slots[b] = grp.Slots[b], grp.Slots[a]
		})
		p.Groups = append(p.Groups, grp)
	}
	return p
}

// randomDomains draws arbitrary non-empty domains; many of them are
// infeasible.
func randomDomains(rng *rand.Rand, items, slots int) *Store {
	s := NewStore(slots)
	for i := 0; i < items; i++ {
		var vals []int
		for v := 1; v <= slots; v++ {
			if rng.Intn(3) == 0 {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			vals = append(vals, 1+rng.Intn(slots))
		}
		s.set(string(rune('a'+i)), NewBitSetDomainFromValues(slots, vals))
	}
	return s
}
