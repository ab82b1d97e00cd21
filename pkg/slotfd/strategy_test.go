package slotfd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStrategy(t *testing.T) {
	for _, name := range StrategyNames() {
		st, err := NewStrategy(name, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, name, st.Name())
	}

	cfg := &SolverConfig{HallMaxItems: 5, StepBudget: 10, Order: OrderLargestFirst}
	st, err := NewStrategy(StrategyHall, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, st.(*HallSets).MaxItems)

	st, err = NewStrategy(StrategyExact, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.(*Exact).StepBudget)
	assert.Equal(t, OrderLargestFirst, st.(*Exact).Order)

	_, err = NewStrategy("magic", nil, nil, nil)
	assert.EqualError(t, err, `unknown strategy "magic" (want one of [forward hall exact matching])`)
}

// Singleton/Hall consistency: x={1,2}, y={2}, z={2,3} narrows to one slot
// each under every strategy.
func TestStrategies_SingletonScenario(t *testing.T) {
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			s := newTestStore(t, 3,
				g([]string{"x", "y"}, 1, 2),
				g([]string{"y", "z"}, 2, 3),
			)
			require.NoError(t, st.Propagate(context.Background(), s))

			want := map[string][]int{"x": {1}, "y": {2}, "z": {3}}
			if diff := cmp.Diff(want, domainsOf(s)); diff != "" {
				t.Errorf("narrowed domains (-want +got):\n%s", diff)
			}

			answer, err := s.Query([]string{"x", "y", "z"}, QueryStrict)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2, 3}, answer.Slots.ToSlice())
			assert.NoError(t, answer.Check())
		})
	}
}

// Two disjoint items forced onto the same singleton slot.
func TestStrategies_Infeasible(t *testing.T) {
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			s := newTestStore(t, 2,
				g([]string{"x"}, 1),
				g([]string{"y"}, 1),
			)
			err := st.Propagate(context.Background(), s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInfeasible))

			var inf *InfeasibleError
			require.ErrorAs(t, err, &inf)
			assert.Equal(t, st.Name(), inf.Strategy)
		})
	}
}

func TestStrategies_EmptyDomainIsInfeasible(t *testing.T) {
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			s := storeFromDomains(3, []string{"x", "y"}, [][]int{{1, 2}, {}})
			err := st.Propagate(context.Background(), s)

			var inf *InfeasibleError
			require.ErrorAs(t, err, &inf)
			assert.Equal(t, "y", inf.Item)
		})
	}
}

func TestStrategies_EmptyStore(t *testing.T) {
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			assert.NoError(t, st.Propagate(context.Background(), NewStore(3)))
		})
	}
}

// Three items sharing two slots: only forward checking misses it.
func TestStrategies_Pigeonhole(t *testing.T) {
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			s := storeFromDomains(3, []string{"a", "b", "c"}, [][]int{{1, 2}, {1, 2}, {1, 2}})
			err := st.Propagate(context.Background(), s)
			if st.Name() == StrategyForward {
				require.NoError(t, err)

				answer, qerr := s.Query([]string{"a", "b", "c"}, QueryStrict)
				require.NoError(t, qerr)
				assert.ErrorIs(t, answer.Check(), ErrInfeasible)
				return
			}
			assert.ErrorIs(t, err, ErrInfeasible)
		})
	}
}

// a,b share {1,2}, so c and d lose those slots. Only singleton reasoning
// cannot see it.
func TestStrategies_HallSetNarrowing(t *testing.T) {
	domains := [][]int{{1, 2}, {1, 2}, {1, 2, 3}, {2, 3, 4}}
	items := []string{"a", "b", "c", "d"}

	want := map[string]map[string][]int{
		StrategyForward:  {"a": {1, 2}, "b": {1, 2}, "c": {1, 2, 3}, "d": {2, 3, 4}},
		StrategyHall:     {"a": {1, 2}, "b": {1, 2}, "c": {3}, "d": {4}},
		StrategyExact:    {"a": {1, 2}, "b": {1, 2}, "c": {3}, "d": {4}},
		StrategyMatching: {"a": {1, 2}, "b": {1, 2}, "c": {3}, "d": {4}},
	}
	for _, st := range allStrategies(t) {
		t.Run(st.Name(), func(t *testing.T) {
			s := storeFromDomains(4, items, domains)
			require.NoError(t, st.Propagate(context.Background(), s))
			if diff := cmp.Diff(want[st.Name()], domainsOf(s)); diff != "" {
				t.Errorf("narrowed domains (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrategies_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(20240611))
	ctx := context.Background()

	for round := 0; round < 150; round++ {
		var base *Store
		if round%2 == 0 {
			p := randomFeasibleProblem(rng, 2+rng.Intn(6), 7, 1+rng.Intn(5))
			base = NewStore(p.Slots)
			require.NoError(t, base.IngestGroups(p.Groups))
			base.ExpandUnknown(p.Wanted, ResidualGlobalMinusClaimed)
		} else {
			base = randomDomains(rng, 2+rng.Intn(6), 6)
		}

		results := make(map[string]*Store)
		errs := make(map[string]error)
		for _, st := range allStrategies(t) {
			s := base.Clone()
			errs[st.Name()] = st.Propagate(ctx, s)
			results[st.Name()] = s
		}

		label := fmt.Sprintf("round %d: %v", round, domainsOf(base))
		exactErr := errs[StrategyExact]

		// hall and matching detect infeasibility exactly when exact does
		assert.Equal(t, exactErr == nil, errs[StrategyMatching] == nil, label)
		assert.Equal(t, exactErr == nil, errs[StrategyHall] == nil, label)
		// forward checking never fails on a feasible store
		if exactErr == nil {
			assert.NoError(t, errs[StrategyForward], label)
		}
		if round%2 == 0 {
			require.NoError(t, exactErr, label)
		}
		if exactErr != nil {
			assert.ErrorIs(t, exactErr, ErrInfeasible, label)
			continue
		}

		for _, item := range base.Items() {
			before, _ := base.Domain(item)
			fwd, _ := results[StrategyForward].Domain(item)
			hall, _ := results[StrategyHall].Domain(item)
			exact, _ := results[StrategyExact].Domain(item)
			match, _ := results[StrategyMatching].Domain(item)

			assert.True(t, fwd.IsSubsetOf(before), "%s: forward grew %q", label, item)
			assert.True(t, hall.IsSubsetOf(fwd), "%s: hall ⊄ forward for %q", label, item)
			assert.True(t, exact.IsSubsetOf(hall), "%s: exact ⊄ hall for %q", label, item)
			assert.True(t, exact.Equal(match), "%s: exact %s != matching %s for %q", label, exact, match, item)
		}

		for name, s := range results {
			assertInjectiveSingletons(t, s, label+" "+name)

			// a second run on the fixpoint changes nothing
			st, err := NewStrategy(name, nil, nil, nil)
			require.NoError(t, err)
			again := s.Clone()
			require.NoError(t, st.Propagate(ctx, again), label)
			assert.Equal(t, domainsOf(s), domainsOf(again), "%s: %s is not idempotent", label, name)
		}
	}
}

func assertInjectiveSingletons(t *testing.T, s *Store, label string) {
	t.Helper()
	owner := make(map[int]string)
	for _, item := range s.Items() {
		d, _ := s.Domain(item)
		if !d.IsSingleton() {
			continue
		}
		slot := d.SingletonValue()
		if prev, ok := owner[slot]; ok {
			t.Errorf("%s: %q and %q both own slot %d", label, prev, item, slot)
		}
		owner[slot] = item
	}
}

func TestItemsBySize(t *testing.T) {
	s := storeFromDomains(4, []string{"a", "b", "c", "d"}, [][]int{{1, 2}, {1}, {1, 2, 3}, {3}})
	assert.Equal(t, []string{"b", "d", "a", "c"}, itemsBySize(s, OrderSmallestFirst))
	assert.Equal(t, []string{"c", "a", "b", "d"}, itemsBySize(s, OrderLargestFirst))
}

func TestParseEnumerationOrder(t *testing.T) {
	for _, o := range []EnumerationOrder{OrderSmallestFirst, OrderLargestFirst} {
		got, err := ParseEnumerationOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseEnumerationOrder("random")
	assert.Error(t, err)
	assert.Equal(t, "EnumerationOrder(7)", EnumerationOrder(7).String())
}
