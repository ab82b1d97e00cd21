package slotfd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSetDomain_Basics(t *testing.T) {
	d := NewBitSetDomain(5)
	assert.Equal(t, 5, d.Count())
	assert.Equal(t, 5, d.MaxValue())
	assert.True(t, d.Has(1))
	assert.True(t, d.Has(5))
	assert.False(t, d.Has(0))
	assert.False(t, d.Has(6))
	assert.False(t, d.IsSingleton())

	empty := NewEmptyDomain(5)
	assert.Equal(t, 0, empty.Count())
	assert.Equal(t, []int{}, empty.ToSlice())
	assert.Equal(t, "{}", empty.String())
}

func TestBitSetDomain_SpansWords(t *testing.T) {
	d := NewBitSetDomainFromValues(130, []int{1, 64, 65, 128, 130, 131, 0})
	assert.Equal(t, []int{1, 64, 65, 128, 130}, d.ToSlice())
	assert.Equal(t, 5, d.Count())

	full := NewBitSetDomain(130)
	assert.Equal(t, 130, full.Count())
	assert.True(t, d.IsSubsetOf(full))
	assert.Equal(t, 125, full.Difference(d).Count())
}

func TestBitSetDomain_FullWordBoundaries(t *testing.T) {
	for _, n := range []int{3, 63, 64, 65, 128, 129} {
		d := NewBitSetDomain(n)
		assert.Equal(t, n, d.Count(), "n=%d", n)
		assert.True(t, d.Has(n), "n=%d", n)
		assert.False(t, d.Has(n+1), "n=%d", n)
		assert.True(t, d.Equal(NewEmptyDomain(n).Union(d)), "n=%d", n)
		assert.Equal(t, fmt.Sprintf("{1..%d}", n), d.String())
	}
}

func TestBitSetDomain_RemoveIsImmutable(t *testing.T) {
	d := NewBitSetDomain(3)
	r := d.Remove(2)

	assert.Equal(t, []int{1, 2, 3}, d.ToSlice(), "receiver must not change")
	assert.Equal(t, []int{1, 3}, r.ToSlice())
	assert.Same(t, r, r.Remove(2), "removing an absent slot returns the receiver")
	assert.Same(t, d, d.Remove(99))
}

func TestBitSetDomain_Singleton(t *testing.T) {
	d := NewBitSetDomainFromValues(70, []int{67})
	require.True(t, d.IsSingleton())
	assert.Equal(t, 67, d.SingletonValue())

	assert.Panics(t, func() { NewEmptyDomain(3).SingletonValue() })
}

func TestBitSetDomain_SetAlgebra(t *testing.T) {
	a := NewBitSetDomainFromValues(6, []int{1, 2, 3, 4})
	b := NewBitSetDomainFromValues(6, []int{3, 4, 5})

	tests := []struct {
		name string
		got  Domain
		want []int
	}{
		{"intersect", a.Intersect(b), []int{3, 4}},
		{"union", a.Union(b), []int{1, 2, 3, 4, 5}},
		{"difference", a.Difference(b), []int{1, 2}},
		{"difference reversed", b.Difference(a), []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.ToSlice())
		})
	}

	assert.True(t, a.Intersect(b).IsSubsetOf(a))
	assert.False(t, a.IsSubsetOf(b))
	assert.True(t, a.Equal(NewBitSetDomainFromValues(6, []int{4, 3, 2, 1})))
	assert.False(t, a.Equal(b))
}

func TestBitSetDomain_DifferentUniverses(t *testing.T) {
	a := NewBitSetDomain(3)
	b := NewBitSetDomain(4)

	assert.Equal(t, 0, a.Intersect(b).Count())
	assert.Same(t, a, a.Union(b))
	assert.Same(t, a, a.Difference(b))
	assert.False(t, a.Equal(b))
	assert.False(t, a.IsSubsetOf(b))
	assert.True(t, NewEmptyDomain(3).IsSubsetOf(b))
}

func TestBitSetDomain_String(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{nil, "{}"},
		{[]int{5}, "{5}"},
		{[]int{1, 2}, "{1,2}"},
		{[]int{1, 2, 3}, "{1..3}"},
		{[]int{1, 3, 5}, "{1,3,5}"},
		{[]int{2, 3, 4, 5, 6}, "{2..6}"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBitSetDomainFromValues(10, tt.values).String())
		})
	}
}

func TestBitSetDomain_ZeroUniverse(t *testing.T) {
	d := NewBitSetDomain(0)
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, 0, d.MaxValue())
	assert.False(t, d.Has(1))
	assert.True(t, d.Equal(NewEmptyDomain(-3)))
}
