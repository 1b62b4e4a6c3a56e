package mirror

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verb is the mutation kind an event announces to the webhook.
type Verb string

const (
	// VerbSave mirrors an insert.
	VerbSave Verb = "save"
	// VerbUpdate mirrors an update.
	VerbUpdate Verb = "update"
	// VerbDelete mirrors a delete.
	VerbDelete Verb = "delete"
)

// Event is one pending webhook delivery: the derived action name and
// the canonical JSON payload, frozen at enqueue time. Seq orders log
// lines; events have no identity of their own.
type Event struct {
	Action string
	Data   []byte
	Seq    int64
}

// ActionFor derives the webhook action name from a verb and a canonical
// table name: one trailing "s" is dropped from the table, the first
// letter is upper-cased, and the result is appended to the verb, so
// mutations on "users" mirror as saveUser, updateUser, and deleteUser.
// The webhook dispatches on these exact names; the derivation is part
// of the wire contract.
func ActionFor(verb Verb, table string) string {
	singular := strings.TrimSuffix(table, "s")
	return string(verb) + capitalize(singular)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
