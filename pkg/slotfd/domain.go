// Package slotfd provides finite-domain reasoning for injective item-to-slot
// assignment problems.
// This file defines the Domain abstraction: the set of slots an item may
// still occupy.
package slotfd

import (
	"fmt"
	"math/bits"
	"strings"
)

// Domain represents a finite set of slots that an item can take.
// Slots are 1-indexed integers in the range [1, MaxValue].
//
// Domain implementations are immutable: operations that change the set
// return a new domain rather than modifying the receiver. The Store replaces
// its entries with the returned values, which keeps earlier snapshots valid.
type Domain interface {
	// Count returns the number of slots in the domain.
	// An empty domain (Count() == 0) represents an infeasible item.
	Count() int

	// Has returns true if the domain contains the given slot.
	Has(value int) bool

	// Remove returns a new domain with the specified slot removed.
	Remove(value int) Domain

	// IsSingleton returns true if the domain contains exactly one slot.
	IsSingleton() bool

	// SingletonValue returns the single slot if IsSingleton() is true.
	SingletonValue() int

	// IterateValues calls f for each slot in ascending order.
	IterateValues(f func(value int))

	// Intersect returns the slots present in both domains.
	Intersect(other Domain) Domain

	// Union returns the slots present in either domain.
	Union(other Domain) Domain

	// Difference returns the slots of this domain that are not in other.
	Difference(other Domain) Domain

	// IsSubsetOf reports whether every slot of this domain is in other.
	IsSubsetOf(other Domain) bool

	// Equal returns true if both domains contain exactly the same slots.
	Equal(other Domain) bool

	// MaxValue returns the size of the universe the domain is drawn from.
	MaxValue() int

	// ToSlice returns the slots in ascending order.
	ToSlice() []int

	// String returns a human-readable representation of the domain.
	String() string
}

// BitSetDomain is a compact implementation of Domain using bitsets.
// Values are 1-indexed in the range [1, maxValue]; bit i of the word array
// represents slot i+1.
//
// Memory usage: (maxValue + 63) / 64 * 8 bytes.
type BitSetDomain struct {
	maxValue int
	words    []uint64
}

func numWords(maxValue int) int {
	if maxValue <= 0 {
		return 0
	}
	return (maxValue + 63) / 64
}

// NewBitSetDomain creates a domain containing every slot from 1 to maxValue.
func NewBitSetDomain(maxValue int) *BitSetDomain {
	if maxValue <= 0 {
		return &BitSetDomain{}
	}
	d := &BitSetDomain{maxValue: maxValue, words: make([]uint64, numWords(maxValue))}
	for i := range d.words {
		d.words[i] = ^uint64(0)
	}
	if rem := maxValue % 64; rem != 0 {
		d.words[len(d.words)-1] = 1<<uint(rem) - 1
	}
	return d
}

// NewEmptyDomain creates a domain over [1, maxValue] holding no slots.
func NewEmptyDomain(maxValue int) *BitSetDomain {
	if maxValue <= 0 {
		return &BitSetDomain{}
	}
	return &BitSetDomain{maxValue: maxValue, words: make([]uint64, numWords(maxValue))}
}

// NewBitSetDomainFromValues creates a domain containing only the specified slots.
// Values outside [1, maxValue] are ignored.
func NewBitSetDomainFromValues(maxValue int, values []int) *BitSetDomain {
	d := NewEmptyDomain(maxValue)
	for _, v := range values {
		d.insert(v)
	}
	return d
}

// Count returns the number of slots in the domain.
// Uses hardware popcount, O(number of words).
func (d *BitSetDomain) Count() int {
	count := 0
	for _, word := range d.words {
		count += bits.OnesCount64(word)
	}
	return count
}

// Has returns true if the domain contains the slot. O(1).
func (d *BitSetDomain) Has(value int) bool {
	if value < 1 || value > d.maxValue {
		return false
	}
	return (d.words[(value-1)/64]>>uint((value-1)%64))&1 == 1
}

// Remove returns a new domain without the specified slot.
// If the slot is not present the receiver is returned unchanged.
func (d *BitSetDomain) Remove(value int) Domain {
	if !d.Has(value) {
		return d
	}
	nd := d.clone()
	nd.words[(value-1)/64] &^= 1 << uint((value-1)%64)
	return nd
}

// IsSingleton returns true if the domain contains exactly one slot.
func (d *BitSetDomain) IsSingleton() bool {
	return d.Count() == 1
}

// SingletonValue returns the lowest slot in the domain.
// Panics on an empty domain.
func (d *BitSetDomain) SingletonValue() int {
	for i, word := range d.words {
		if word != 0 {
			return i*64 + bits.TrailingZeros64(word) + 1
		}
	}
	panic("SingletonValue called on empty domain")
}

// IterateValues calls f for each slot in ascending order.
func (d *BitSetDomain) IterateValues(f func(value int)) {
	for wordIdx, word := range d.words {
		for word != 0 {
			lowestBit := word & -word
			f(wordIdx*64 + bits.TrailingZeros64(word) + 1)
			word &^= lowestBit
		}
	}
}

// Intersect returns a new domain containing slots in both this and other.
// Domains drawn from different universes have an empty intersection.
func (d *BitSetDomain) Intersect(other Domain) Domain {
	o, ok := other.(*BitSetDomain)
	if !ok || d.maxValue != o.maxValue {
		return NewEmptyDomain(d.maxValue)
	}
	nd := NewEmptyDomain(d.maxValue)
	for i := range d.words {
		nd.words[i] = d.words[i] & o.words[i]
	}
	return nd
}

// Union returns a new domain containing slots from both this and other.
func (d *BitSetDomain) Union(other Domain) Domain {
	o, ok := other.(*BitSetDomain)
	if !ok || d.maxValue != o.maxValue {
		return d
	}
	nd := NewEmptyDomain(d.maxValue)
	for i := range d.words {
		nd.words[i] = d.words[i] | o.words[i]
	}
	return nd
}

// Difference returns a new domain with the slots of other removed.
func (d *BitSetDomain) Difference(other Domain) Domain {
	o, ok := other.(*BitSetDomain)
	if !ok || d.maxValue != o.maxValue {
		return d
	}
	nd := NewEmptyDomain(d.maxValue)
	for i := range d.words {
		nd.words[i] = d.words[i] &^ o.words[i]
	}
	return nd
}

// IsSubsetOf reports whether every slot of d is also in other.
func (d *BitSetDomain) IsSubsetOf(other Domain) bool {
	o, ok := other.(*BitSetDomain)
	if !ok || d.maxValue != o.maxValue {
		return d.Count() == 0
	}
	for i := range d.words {
		if d.words[i]&^o.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal returns true if this domain contains exactly the same slots as other.
func (d *BitSetDomain) Equal(other Domain) bool {
	o, ok := other.(*BitSetDomain)
	if !ok || d.maxValue != o.maxValue {
		return false
	}
	for i := range d.words {
		if d.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// MaxValue returns the size of the universe.
func (d *BitSetDomain) MaxValue() int {
	return d.maxValue
}

// ToSlice returns all slots in the domain as a sorted slice.
// An empty domain yields an empty, non-nil slice.
func (d *BitSetDomain) ToSlice() []int {
	values := make([]int, 0, d.Count())
	d.IterateValues(func(v int) {
		values = append(values, v)
	})
	return values
}

// String returns a human-readable representation of the domain.
// Example: "{1,3,5}" or "{1..100}" for consecutive runs.
func (d *BitSetDomain) String() string {
	values := d.ToSlice()
	switch {
	case len(values) == 0:
		return "{}"
	case len(values) == 1:
		return fmt.Sprintf("{%d}", values[0])
	case len(values) > 2 && isConsecutiveRange(values):
		return fmt.Sprintf("{%d..%d}", values[0], values[len(values)-1])
	}

	var builder strings.Builder
	builder.WriteString("{")
	for i, v := range values {
		if i > 0 {
			builder.WriteString(",")
		}
		fmt.Fprintf(&builder, "%d", v)
	}
	builder.WriteString("}")
	return builder.String()
}

// insert adds value in place. Only valid on a domain that has not been
// handed out yet.
func (d *BitSetDomain) insert(value int) {
	if value >= 1 && value <= d.maxValue {
		d.words[(value-1)/64] |= 1 << uint((value-1)%64)
	}
}

func (d *BitSetDomain) clone() *BitSetDomain {
	words := make([]uint64, len(d.words))
	copy(words, d.words)
	return &BitSetDomain{maxValue: d.maxValue, words: words}
}

// isConsecutiveRange checks if values form a consecutive range.
func isConsecutiveRange(values []int) bool {
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}
