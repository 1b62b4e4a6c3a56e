package store

import (
	"context"
	"sync"

	"github.com/roach88/tabard/internal/record"
	"github.com/roach88/tabard/internal/sqlbuild"
)

// tableLock returns the allocation mutex for a table, creating it on
// first use. Allocation for different tables proceeds independently.
func (g *Gateway) tableLock(table string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	mu, ok := g.locks[table]
	if !ok {
		mu = &sync.Mutex{}
		g.locks[table] = mu
	}
	return mu
}

// Insert writes rec to table. A record that arrives without an id is
// assigned the next one: max(id)+1, read inside the same transaction
// that performs the INSERT, with allocation serialized per table. Two
// concurrent id-less inserts therefore always receive distinct ids. A
// record that already carries an id is written as-is.
//
// On success rec holds the id it was written with; the caller echoes it
// back to the client.
func (g *Gateway) Insert(ctx context.Context, table string, rec *record.Record) error {
	if _, ok := rec.Get("id"); ok {
		stmt, err := sqlbuild.Insert(g.database, table, rec)
		if err != nil {
			return err
		}
		return g.Execute(ctx, stmt)
	}

	mu := g.tableLock(table)
	mu.Lock()
	defer mu.Unlock()

	probe, err := sqlbuild.MaxID(g.database, table)
	if err != nil {
		return err
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "insert", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	var maxID int64
	if err := tx.QueryRowContext(ctx, probe.SQL).Scan(&maxID); err != nil {
		return &Error{Op: "insert", Err: err}
	}
	rec.Set("id", record.Int(maxID+1))

	stmt, err := sqlbuild.Insert(g.database, table, rec)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
		return &Error{Op: "insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Op: "insert", Err: err}
	}

	return nil
}
