// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of catalog.Store.
//
// It is suitable for tests, dry runs and any scenario where the catalog
// contents can be described up front. Failures can be injected to exercise
// the verifier's unavailable-catalog handling.
package inmemorystore
