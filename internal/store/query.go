package store

import (
	"context"
	"fmt"

	"github.com/roach88/tabard/internal/record"
	"github.com/roach88/tabard/internal/sqlbuild"
)

// Query executes stmt and materializes every row eagerly. Each record
// preserves the result set's column order. An empty result is an empty
// slice, not nil; the caller distinguishes "no rows" from failure by
// the error alone.
func (g *Gateway) Query(ctx context.Context, stmt sqlbuild.Statement) ([]*record.Record, error) {
	rows, err := g.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &Error{Op: "query", Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &Error{Op: "query", Err: err}
	}

	out := []*record.Record{}
	for rows.Next() {
		holders := make([]any, len(cols))
		for i := range holders {
			holders[i] = new(any)
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, &Error{Op: "query", Err: err}
		}

		rec := record.New()
		for i, col := range cols {
			v, err := record.FromAny(*holders[i].(*any))
			if err != nil {
				return nil, &Error{Op: "query", Err: fmt.Errorf("column %s: %w", col, err)}
			}
			rec.Set(col, v)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "query", Err: err}
	}

	return out, nil
}

// Execute runs a mutation and reports acknowledgement only. Affected
// row counts are deliberately not surfaced: deleting an absent row and
// updating zero rows are both successes at this layer.
func (g *Gateway) Execute(ctx context.Context, stmt sqlbuild.Statement) error {
	if _, err := g.db.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
		return &Error{Op: "execute", Err: err}
	}
	return nil
}
