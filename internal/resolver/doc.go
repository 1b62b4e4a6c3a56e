// Package resolver maps client-facing table labels to canonical storage
// names.
//
// The mapping is static for the lifetime of the process: built once at
// startup from operator configuration and never mutated afterward, so
// Resolve is safe for concurrent use without locking. Labels absent from
// the mapping pass through unchanged, treated as already canonical.
//
// The resolver performs no existence check against the database. A label
// that resolves to a table the store does not have surfaces later as a
// store-level failure, not a resolution failure.
package resolver
