// Package httpapi is the gateway's HTTP surface: a fiber app exposing
// table-parameterized CRUD routes, the feature-flagged raw query route,
// and the health probe.
//
// Handlers are thin. Each one resolves the table label, asks sqlbuild
// for a statement, runs it through the store, and wraps the outcome in
// the response envelope; mutations additionally hand the committed
// record to the mirror. Failure classification is uniform: whatever the
// builder refuses is the client's fault (400), whatever the store
// reports is ours (500), and a lookup that finds nothing is 404.
//
// Every response body is the same envelope shape, success or failure,
// including errors fiber itself raises (unmatched routes, panics, body
// limits). Clients never see a bare-text error.
package httpapi
