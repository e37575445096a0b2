// Package scheduler turns a sorted and verified set into the ordered batches
// of one transactional pass and hands them to an executor.
package scheduler
