// Package objrepo implements a local, typed, polymorphic object repository layered
// over a lower-level ObjectStore. Client code registers collection classes whose
// items carry a primary key, typed properties, secondary indexes, and participate
// in a class-inclusion hierarchy: a derived collection's items are also instances
// of the base collections it includes.
//
// The repository exposes per-collection CRUD, range/query lookup, counting,
// backpressure-aware iteration, bulk delete-by-query, and a nestable transaction
// scope. It resolves operations keyed by one class name but returns items
// materialized through their most-derived class.
//
// Concrete ObjectStore backends live in subpackages; package memstore provides
// a reference, in-memory implementation used for testing and small deployments.
// This package is the core contract and algorithms; it never inspects item
// contents and treats the backing store as an external collaborator.
package objrepo

// Respiration model
//
// Bulk operations (getItems, findItems, forEachItems) process records in batches
// and yield cooperatively every RespirationRate items so a long scan does not
// starve other goroutines sharing the same scheduler. On Go's preemptive
// scheduler this yield is not strictly required for correctness, but it remains
// a useful batching checkpoint: callers can observe progress, and backends with
// their own cooperative model (e.g. a single-threaded remote store) get a
// well-defined pacing signal.
