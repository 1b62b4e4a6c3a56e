// Package harness runs conformance scenarios against the gateway.
//
// A scenario is a YAML file describing one run: a fresh in-memory
// database, setup SQL, a sequence of HTTP requests against the real
// route table, and assertions on the responses and the final database
// state. Requests execute in-process through the fiber test transport,
// so a scenario exercises the full pipeline (resolver, builder, store,
// envelope) without binding a port.
//
// Every run is deterministic: request ids are fixed, row ids are
// allocated sequentially from an empty table, and response bodies are
// rendered by the same encoder production uses. That makes the full
// request/response transcript suitable for golden comparison; see
// RunWithGolden.
package harness
