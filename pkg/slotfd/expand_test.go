package slotfd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandUnknown_Policies(t *testing.T) {
	tests := []struct {
		policy ResidualPolicy
		want   map[string][]int
		added  []string
	}{
		{
			policy: ResidualGlobalMinusClaimed,
			want:   map[string][]int{"x": {1}, "y": {2}, "p": {3, 4}, "q": {3, 4}},
			added:  []string{"p", "q"},
		},
		{
			policy: ResidualFullUniverse,
			want:   map[string][]int{"x": {1}, "y": {2}, "p": {1, 2, 3, 4}, "q": {1, 2, 3, 4}},
			added:  []string{"p", "q"},
		},
		{
			policy: ResidualNone,
			want:   map[string][]int{"x": {1}, "y": {2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			s := newTestStore(t, 4, g([]string{"x"}, 1), g([]string{"y"}, 2))
			added := s.ExpandUnknown([]string{"x", "p", "q", "p", ""}, tt.policy)

			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.want, domainsOf(s))
		})
	}
}

// The residual is fixed before the first unknown item is added, so later
// unknown items do not see earlier ones as claimed.
func TestExpandUnknown_ResidualComputedOnce(t *testing.T) {
	s := newTestStore(t, 3, g([]string{"x"}, 1))
	s.ExpandUnknown([]string{"p", "q"}, ResidualGlobalMinusClaimed)

	p, _ := s.Domain("p")
	q, _ := s.Domain("q")
	assert.Equal(t, []int{2, 3}, p.ToSlice())
	assert.True(t, p.Equal(q))
}

func TestExpandUnknown_EverythingClaimed(t *testing.T) {
	s := newTestStore(t, 2, g([]string{"x", "y"}, 1, 2))
	s.ExpandUnknown([]string{"z"}, ResidualGlobalMinusClaimed)

	z, ok := s.Domain("z")
	require.True(t, ok)
	assert.Equal(t, 0, z.Count())
}

func TestParseResidualPolicy(t *testing.T) {
	for _, p := range []ResidualPolicy{ResidualGlobalMinusClaimed, ResidualFullUniverse, ResidualNone} {
		got, err := ParseResidualPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseResidualPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ResidualGlobalMinusClaimed, got)

	_, err = ParseResidualPolicy("everything")
	assert.EqualError(t, err, `unknown residual policy "everything" (want global_minus_claimed, full_universe or none)`)
}
