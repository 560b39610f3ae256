// Package store persists resolved indexes in BadgerDB, one index per
// guideline version.
//
// Key layout:
//
//	index/<version>/<technique-id> -> JSON-encoded []resolve.Record
//
// Put replaces a version's index in a single transaction, so readers see
// either the previous index or the new one, never a mix. The
// transaction size is bounded by badger (15% of the memtable); an index
// past that bound is rejected with ErrIndexTooLarge.
package store
