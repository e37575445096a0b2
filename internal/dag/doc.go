// Package dag orders an entity list so that every entity comes after the
// entities it depends on.
//
// The sort is an in-place, chain-tracking depth-first search over the list's
// linked ordering: for every root in list order, each unplaced dependency is
// resolved recursively and spliced immediately before the root. Dependencies
// already placed before the root are left alone, so the original order is
// disturbed as little as possible and the last declared dependency ends up
// closest to its dependent.
//
// Sorting works on a copy of the list's sequence and commits it only after a
// verification pass confirmed that every edge points backwards. A failed
// sort leaves the list untouched.
package dag
