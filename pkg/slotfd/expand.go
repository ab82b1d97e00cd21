package slotfd

import "fmt"

// ResidualPolicy selects the domain given to items that no group mentions.
type ResidualPolicy int

const (
	// ResidualGlobalMinusClaimed gives unknown items every slot that no
	// known item can occupy: U minus the union of all known domains.
	ResidualGlobalMinusClaimed ResidualPolicy = iota

	// ResidualFullUniverse gives unknown items the whole universe U.
	ResidualFullUniverse

	// ResidualNone leaves unknown items without a domain. A strict query
	// then reports them as unknown.
	ResidualNone
)

func (p ResidualPolicy) String() string {
	switch p {
	case ResidualGlobalMinusClaimed:
		return "global_minus_claimed"
	case ResidualFullUniverse:
		return "full_universe"
	case ResidualNone:
		return "none"
	default:
		return fmt.Sprintf("ResidualPolicy(%d)", int(p))
	}
}

// ParseResidualPolicy maps a configuration name to a policy.
func ParseResidualPolicy(name string) (ResidualPolicy, error) {
	switch name {
	case "", "global_minus_claimed":
		return ResidualGlobalMinusClaimed, nil
	case "full_universe":
		return ResidualFullUniverse, nil
	case "none":
		return ResidualNone, nil
	}
	return 0, fmt.Errorf("unknown residual policy %q (want global_minus_claimed, full_universe or none)", name)
}

// ExpandUnknown assigns a residual domain to every item in items that has
// no domain yet. Existing domains are never touched.
//
// The residual is computed once from the store as it stands on entry, so
// all unknown items receive the same domain regardless of their order. It
// must run after every group has been ingested and before propagation.
// It returns the items that were added.
func (s *Store) ExpandUnknown(items []string, policy ResidualPolicy) []string {
	var residual Domain
	switch policy {
	case ResidualNone:
		return nil
	case ResidualFullUniverse:
		residual = s.universe
	default:
		residual = s.Unclaimed()
	}

	var added []string
	for _, item := range items {
		if item == "" || s.Has(item) {
			continue
		}
		s.set(item, residual)
		added = append(added, item)
	}
	return added
}
