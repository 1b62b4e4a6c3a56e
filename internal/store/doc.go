// Package store executes gateway statements against the authoritative
// SQLite database.
//
// The store owns the only durable state in the process: a single
// connection opened once at startup and reused for every request. There
// is no reconnection, pooling, or health checking after Open succeeds;
// a connection-level failure surfaces as a per-request store error.
//
// # Responsibilities
//
//   - Open: driver selection (cgo or pure-Go sqlite), pragmas, optional
//     ATTACH so statements can qualify tables as <database>.<table>
//   - Query: eager row materialization into ordered records
//   - Execute: mutation acknowledgement
//   - Insert: id allocation for records that arrive without one
//
// # Id Allocation
//
// Allocation is serialized per table behind an in-process mutex, and the
// max(id) probe runs inside the same transaction as the INSERT. Two
// concurrent inserts without explicit ids always receive distinct ids.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The store manages no schema. Tables belong to the operator; a
// statement against a table that does not exist fails as a store error,
// not a gateway error.
package store
