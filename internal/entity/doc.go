// Package entity holds the in-memory data model of one scheduling pass.
//
// Every kind of catalog resource lives in its own index-addressed arena
// (List). Items never move inside the arena; their processing order is kept
// in a separate doubly linked Sequence over arena indices, so reordering is
// a matter of relinking integers. Cross references between entities are
// arena indices as well, never pointers.
//
// A Set is allocated once by Read and then mutated only in its ordering,
// flags and counters by the propagate, graph and verify packages.
package entity
