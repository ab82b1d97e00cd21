package slotfd

// Store maps every known item to its current candidate domain and records
// the universal slot set U = {1..N}.
//
// A Store is owned by a single pipeline run: ingestion, expansion and
// propagation mutate it in place, querying only reads it. It is not safe for
// concurrent use. Domains stored in it are immutable values, so replacing an
// entry never disturbs a previously taken snapshot.
type Store struct {
	universe *BitSetDomain
	domains  map[string]Domain
	order    []string // items in order of first appearance
}

// ItemDomain is one entry of a Store snapshot.
type ItemDomain struct {
	Item  string `json:"item" yaml:"item"`
	Slots []int  `json:"slots" yaml:"slots"`
}

// NewStore creates an empty store over the universe {1..slots}.
// A negative slot count is treated as zero.
func NewStore(slots int) *Store {
	if slots < 0 {
		slots = 0
	}
	return &Store{
		universe: NewBitSetDomain(slots),
		domains:  make(map[string]Domain),
	}
}

// Universe returns the universal slot set U.
func (s *Store) Universe() Domain {
	return s.universe
}

// Slots returns N, the number of slots in the universe.
func (s *Store) Slots() int {
	return s.universe.MaxValue()
}

// Len returns the number of items that currently have a domain.
func (s *Store) Len() int {
	return len(s.order)
}

// Items returns the known items in order of first appearance.
func (s *Store) Items() []string {
	items := make([]string, len(s.order))
	copy(items, s.order)
	return items
}

// Domain returns the current domain of item and whether the item is known.
func (s *Store) Domain(item string) (Domain, bool) {
	d, ok := s.domains[item]
	return d, ok
}

// Has reports whether item has a domain.
func (s *Store) Has(item string) bool {
	_, ok := s.domains[item]
	return ok
}

// set installs a domain for item, registering the item on first use.
func (s *Store) set(item string, d Domain) {
	if _, ok := s.domains[item]; !ok {
		s.order = append(s.order, item)
	}
	s.domains[item] = d
}

// Claimed returns the union of all known domains.
func (s *Store) Claimed() Domain {
	claimed := Domain(NewEmptyDomain(s.Slots()))
	for _, item := range s.order {
		claimed = claimed.Union(s.domains[item])
	}
	return claimed
}

// Unclaimed returns U minus the union of all known domains.
func (s *Store) Unclaimed() Domain {
	return s.universe.Difference(s.Claimed())
}

// Clone returns an independent copy of the store. Domains are immutable and
// therefore shared.
func (s *Store) Clone() *Store {
	c := &Store{
		universe: s.universe,
		domains:  make(map[string]Domain, len(s.domains)),
		order:    make([]string, len(s.order)),
	}
	copy(c.order, s.order)
	for item, d := range s.domains {
		c.domains[item] = d
	}
	return c
}

// Domains returns a copy of the item to domain mapping.
func (s *Store) Domains() map[string]Domain {
	out := make(map[string]Domain, len(s.domains))
	for item, d := range s.domains {
		out[item] = d
	}
	return out
}

// Snapshot returns a read-only view of every item's domain, in order of
// first appearance. Intended for debug display after propagation.
func (s *Store) Snapshot() []ItemDomain {
	snap := make([]ItemDomain, 0, len(s.order))
	for _, item := range s.order {
		snap = append(snap, ItemDomain{Item: item, Slots: s.domains[item].ToSlice()})
	}
	return snap
}
