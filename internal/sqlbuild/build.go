package sqlbuild

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/tabard/internal/record"
)

var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name is a plain SQL identifier. The
// store uses it to vet the schema alias before ATTACH, the one
// statement built outside this package.
func IsIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// checkIdentifier rejects any database, table, or column name that is
// not a plain identifier. Identifiers are the only strings spliced into
// statement text, so this is the injection gate.
func checkIdentifier(kind, name string) error {
	if !validIdentifier.MatchString(name) {
		return &ValidationError{
			Message: fmt.Sprintf("invalid %s name", kind),
			Field:   name,
		}
	}
	return nil
}

// target validates and joins the qualified table reference.
func target(db, table string) (string, error) {
	if err := checkIdentifier("database", db); err != nil {
		return "", err
	}
	if err := checkIdentifier("table", table); err != nil {
		return "", err
	}
	return db + "." + table, nil
}

// List builds the full-table select. No pagination, filtering, or
// ordering: every call returns the whole table.
func List(db, table string) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Kind: KindList,
		SQL:  fmt.Sprintf("SELECT * FROM %s", ref),
	}, nil
}

// GetByID builds the single-row select. The id arrives as int64 because
// the router only admits digit segments; it binds as a parameter.
func GetByID(db, table string, id int64) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Kind: KindGet,
		SQL:  fmt.Sprintf("SELECT * FROM %s WHERE id = ?", ref),
		Args: []any{id},
	}, nil
}

// Insert builds an insert from the record. Columns appear in record
// order, which is the key order of the JSON body; values bind in the
// same order. The caller is responsible for id assignment - by the time
// a record reaches the builder it carries whatever id it will keep.
func Insert(db, table string, rec *record.Record) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}
	cols := rec.Columns()
	if len(cols) == 0 {
		return Statement{}, &ValidationError{Message: "insert requires at least one column"}
	}

	args := make([]any, 0, len(cols))
	holders := make([]string, 0, len(cols))
	for _, col := range cols {
		if err := checkIdentifier("column", col); err != nil {
			return Statement{}, err
		}
		v, _ := rec.Get(col)
		args = append(args, record.Bind(v))
		holders = append(holders, "?")
	}

	return Statement{
		Kind: KindInsert,
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			ref,
			strings.Join(cols, ", "),
			strings.Join(holders, ", ")),
		Args: args,
	}, nil
}

// Update builds an update for the row at the path id. The path id wins:
// it is forced onto the record, overwriting any id the body carried, so
// the record the caller echoes back matches the row that changed. The
// id column itself never appears in the SET list; a body with nothing
// but id is rejected rather than emitting an empty SET clause.
func Update(db, table string, id int64, rec *record.Record) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}

	rec.Set("id", record.Int(id))

	var args []any
	var assigns []string
	for _, col := range rec.Columns() {
		if col == "id" {
			continue
		}
		if err := checkIdentifier("column", col); err != nil {
			return Statement{}, err
		}
		v, _ := rec.Get(col)
		args = append(args, record.Bind(v))
		assigns = append(assigns, col+" = ?")
	}
	if len(assigns) == 0 {
		return Statement{}, &ValidationError{Message: "update requires at least one column besides id"}
	}
	args = append(args, id)

	return Statement{
		Kind: KindUpdate,
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
			ref,
			strings.Join(assigns, ", ")),
		Args: args,
	}, nil
}

// Delete builds a delete for the row at the path id. Deleting an absent
// row succeeds; idempotence is part of the route contract.
func Delete(db, table string, id int64) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Kind: KindDelete,
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE id = ?", ref),
		Args: []any{id},
	}, nil
}

// RawQuery wraps caller-supplied SQL verbatim. No validation, no
// parameters, no restriction to read-only statements. This is a trust
// boundary: the route behind it is disabled unless configuration turns
// it on.
func RawQuery(sql string) Statement {
	return Statement{
		Kind: KindRaw,
		SQL:  sql,
	}
}

// MaxID builds the id-allocation probe. The store runs it inside the
// insert transaction; COALESCE makes the empty table read as 0 so the
// first allocated id is 1.
func MaxID(db, table string) (Statement, error) {
	ref, err := target(db, table)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Kind: KindProbe,
		SQL:  fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", ref),
	}, nil
}
