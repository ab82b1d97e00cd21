// Package slotfd narrows candidate domains for an injective assignment of
// items to slots.
//
// Every item must end up on its own slot out of the universe U = {1..N}.
// The input is a list of groups, each stating that a set of items occupies
// a set of slots of the same size in some unknown order. The package folds
// those groups into per-item candidate domains, gives unmentioned items a
// residual domain, removes candidates that no consistent assignment can use
// and answers which slots a set of requested items may occupy.
//
// # Pipeline
//
//	groups ──IngestGroup──▶ Store ──ExpandUnknown──▶ Store
//	       ──Strategy.Propagate──▶ narrowed Store ──Query──▶ Answer
//
// Solver runs all four steps with one SolverConfig.
//
// # Strategies
//
// Four interchangeable strategies trade precision for speed:
//
//	forward   singleton forward checking, polynomial, weakest
//	hall      Hall-set elimination over the power set of items
//	exact     exhaustive enumeration of every complete assignment
//	matching  Régin filtering, same result as exact in polynomial time
//
// For any input the narrowed domains satisfy
//
//	exact = matching ⊆ hall ⊆ forward
//
// Each strategy reports an *InfeasibleError when it proves that the items
// cannot all be placed on distinct slots. Forward checking only detects two
// items forced onto the same slot; the others detect every infeasible input.
//
// # Example
//
//	store := slotfd.NewStore(3)
//	_ = store.IngestGroup([]string{"x", "y"}, []int{1, 2})
//	_ = store.IngestGroup([]string{"y", "z"}, []int{2, 3})
//	_ = (&slotfd.ForwardChecking{}).Propagate(ctx, store)
//	answer, _ := store.Query([]string{"x", "y", "z"}, slotfd.QueryStrict)
//	fmt.Println(answer.Slots) // {1..3}
package slotfd
