// Package sqlbuild constructs the SQL statements the gateway executes,
// one constructor per route.
//
// All values travel as bound parameters, never interpolated into the
// statement text. The only strings spliced into SQL are identifiers
// (database, table, and column names), and every identifier is checked
// against a strict pattern first, so a hostile label or body key fails
// validation instead of terminating the statement.
//
// Statements are ephemeral: built once per request from already-resolved
// inputs, executed, and discarded. RawQuery is the deliberate exception
// to all of the above - caller SQL passes through verbatim behind a
// configuration flag.
package sqlbuild
