package slotfd

import (
	"errors"
	"fmt"
)

// Group is a single observation: the listed items occupy exactly the listed
// slots, in some unknown bijection. Groups are not retained after ingestion.
type Group struct {
	Items []string `json:"items" yaml:"items"`
	Slots []int    `json:"slots" yaml:"slots"`
}

// IngestGroup folds one observation into the store. Each item's domain
// becomes the intersection of every slot subset it has been observed with;
// an item seen for the first time takes the group's slots as its domain.
//
// The group is rejected with a *MalformedGroupError, leaving the store
// untouched, when the items and slots cannot form a bijection: unequal
// sizes, duplicate entries, empty item names, or slots outside [1, N].
func (s *Store) IngestGroup(items []string, slots []int) error {
	slotSet, err := s.validateGroup(items, slots)
	if err != nil {
		return err
	}
	for _, item := range items {
		if current, ok := s.domains[item]; ok {
			s.domains[item] = current.Intersect(slotSet)
		} else {
			s.set(item, slotSet)
		}
	}
	return nil
}

// IngestGroups folds a sequence of observations. Ingestion stops at the
// first malformed group, whose index is recorded in the returned error.
// Groups before it remain applied.
func (s *Store) IngestGroups(groups []Group) error {
	for i, g := range groups {
		if err := s.IngestGroup(g.Items, g.Slots); err != nil {
			var mg *MalformedGroupError
			if errors.As(err, &mg) {
				mg.Group = i
			}
			return err
		}
	}
	return nil
}

func (s *Store) validateGroup(items []string, slots []int) (Domain, error) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == "" {
			return nil, s.malformed(items, slots, "empty item identifier")
		}
		if _, dup := seen[item]; dup {
			return nil, s.malformed(items, slots, fmt.Sprintf("item %q listed twice", item))
		}
		seen[item] = struct{}{}
	}

	slotSet := NewEmptyDomain(s.Slots())
	for _, slot := range slots {
		if slot < 1 || slot > s.Slots() {
			return nil, s.malformed(items, slots, fmt.Sprintf("slot %d outside [1, %d]", slot, s.Slots()))
		}
		if slotSet.Has(slot) {
			return nil, s.malformed(items, slots, fmt.Sprintf("slot %d listed twice", slot))
		}
		slotSet.insert(slot)
	}

	if len(items) != len(slots) {
		return nil, s.malformed(items, slots, "item and slot counts differ")
	}
	return slotSet, nil
}

func (s *Store) malformed(items []string, slots []int, reason string) *MalformedGroupError {
	distinctItems := make(map[string]struct{}, len(items))
	for _, item := range items {
		distinctItems[item] = struct{}{}
	}
	distinctSlots := make(map[int]struct{}, len(slots))
	for _, slot := range slots {
		distinctSlots[slot] = struct{}{}
	}
	return &MalformedGroupError{
		Group:  -1,
		Items:  len(distinctItems),
		Slots:  len(distinctSlots),
		Reason: reason,
	}
}
