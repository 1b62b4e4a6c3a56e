package sqlbuild

import (
	"strings"

	"github.com/roach88/tabard/internal/record"
)

// Kind identifies which route shape produced a statement.
type Kind string

const (
	KindList   Kind = "list"
	KindGet    Kind = "get"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindRaw    Kind = "raw"
	KindProbe  Kind = "probe"
)

// Statement is a parameterized SQL statement ready for execution. SQL
// holds ? placeholders; Args holds the bound values in placeholder
// order. A Statement is built once per request and never reused.
type Statement struct {
	Kind Kind
	SQL  string
	Args []any
}

// Mutation reports whether executing the statement changes rows.
func (s Statement) Mutation() bool {
	switch s.Kind {
	case KindInsert, KindUpdate, KindDelete:
		return true
	default:
		return false
	}
}

// Render returns the statement as literal SQL text with every bound
// parameter substituted in display form. This is for logs, the check
// command, and golden fixtures only; execution always uses SQL and Args.
//
// Substitution by position is safe here because constructor-built SQL
// contains no quoted literals, so every ? in the text is a placeholder.
func (s Statement) Render() string {
	if len(s.Args) == 0 {
		return s.SQL
	}

	var b strings.Builder
	b.Grow(len(s.SQL) + 16*len(s.Args))
	next := 0
	for i := 0; i < len(s.SQL); i++ {
		if s.SQL[i] == '?' && next < len(s.Args) {
			b.WriteString(displayLiteral(s.Args[next]))
			next++
			continue
		}
		b.WriteByte(s.SQL[i])
	}
	return b.String()
}

// displayLiteral renders a bound argument as SQL literal text. Bound
// arguments are exactly the types record.Bind produces, so the record
// codec handles every case.
func displayLiteral(arg any) string {
	v, err := record.FromAny(arg)
	if err != nil {
		return "NULL"
	}
	return record.Literal(v)
}
