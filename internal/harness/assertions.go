package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/tabard/internal/record"
	"github.com/roach88/tabard/internal/sqlbuild"
	"github.com/roach88/tabard/internal/store"
)

// envelope mirrors the gateway's response body for assertion decoding.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

// checkExpect validates one response against a step's expect clause.
// Returns one message per mismatch; empty means the step passed.
func checkExpect(step Step, status int, body []byte) []string {
	exp := step.Expect
	var errs []string

	if status != exp.Status {
		errs = append(errs, fmt.Sprintf("step %q: status = %d, want %d (body %s)",
			step.Name, status, exp.Status, body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		errs = append(errs, fmt.Sprintf("step %q: response is not a JSON envelope: %v (body %s)",
			step.Name, err, body))
		return errs
	}

	if exp.Success != nil && env.Success != *exp.Success {
		errs = append(errs, fmt.Sprintf("step %q: success = %v, want %v",
			step.Name, env.Success, *exp.Success))
	}

	if exp.Error != "" && !strings.Contains(env.Error, exp.Error) {
		errs = append(errs, fmt.Sprintf("step %q: error %q does not contain %q",
			step.Name, env.Error, exp.Error))
	}

	if exp.Data != nil {
		obj, ok := env.Data.(map[string]interface{})
		if !ok {
			errs = append(errs, fmt.Sprintf("step %q: data is %T, want an object",
				step.Name, env.Data))
		} else {
			for _, msg := range matchSubset(exp.Data, obj) {
				errs = append(errs, fmt.Sprintf("step %q: data %s", step.Name, msg))
			}
		}
	}

	if exp.DataLen != nil {
		list, ok := env.Data.([]interface{})
		if !ok {
			errs = append(errs, fmt.Sprintf("step %q: data is %T, want a list",
				step.Name, env.Data))
		} else if len(list) != *exp.DataLen {
			errs = append(errs, fmt.Sprintf("step %q: data length = %d, want %d",
				step.Name, len(list), *exp.DataLen))
		}
	}

	return errs
}

// matchSubset checks that every expected field is present and equal in
// actual. Extra fields in actual are ignored. Keys are visited in
// sorted order so failure messages are stable.
func matchSubset(expected, actual map[string]interface{}) []string {
	var errs []string
	for _, key := range sortedKeys(expected) {
		want := expected[key]
		got, ok := actual[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("field %q missing (have %v)", key, sortedKeys(actual)))
			continue
		}
		if !valuesMatch(want, got) {
			errs = append(errs, fmt.Sprintf("field %q = %v (%T), want %v (%T)", key, got, got, want, want))
		}
	}
	return errs
}

// valuesMatch compares a scenario-authored value against one that came
// back through JSON or SQLite. Numeric widths are normalized, and
// SQLite's 0/1 integers satisfy a YAML true/false, since BOOLEAN
// columns lose their type on read-back.
func valuesMatch(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if eb, ok := expected.(bool); ok {
		switch av := actual.(type) {
		case bool:
			return eb == av
		case int64:
			return eb == (av != 0)
		case float64:
			return eb == (av != 0)
		}
		return false
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	if es, ok := expected.(string); ok {
		as, ok := actual.(string)
		return ok && es == as
	}

	return reflect.DeepEqual(expected, actual)
}

// toFloat widens any numeric value for comparison. YAML decodes
// integers as int, JSON as float64, and the database returns int64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// assertState queries the table and matches rows per the assertion.
// Identifiers are vetted before splicing; values bind as parameters.
func assertState(ctx context.Context, gw *store.Gateway, sa StateAssertion) error {
	if !sqlbuild.IsIdentifier(sa.Table) {
		return fmt.Errorf("invalid table name %q", sa.Table)
	}

	whereSQL, args, err := whereClause(sa.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", gw.Database(), sa.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	recs, err := gw.Query(ctx, sqlbuild.Statement{Kind: sqlbuild.KindRaw, SQL: query, Args: args})
	if err != nil {
		return fmt.Errorf("query %s: %w", sa.Table, err)
	}

	if sa.Count != nil && len(recs) != *sa.Count {
		return fmt.Errorf("table %s where %s: %d row(s), want %d",
			sa.Table, formatWhere(sa.Where), len(recs), *sa.Count)
	}

	if len(sa.Expect) > 0 {
		if len(recs) == 0 {
			return fmt.Errorf("table %s where %s: row not found", sa.Table, formatWhere(sa.Where))
		}
		if len(recs) > 1 {
			return fmt.Errorf("table %s where %s: %d rows matched, assertion is ambiguous",
				sa.Table, formatWhere(sa.Where), len(recs))
		}
		rec := recs[0]
		for _, key := range sortedKeys(sa.Expect) {
			want := sa.Expect[key]
			v, ok := rec.Get(key)
			if !ok {
				return fmt.Errorf("table %s: column %q not in result (have %v)",
					sa.Table, key, rec.Columns())
			}
			got := record.Bind(v)
			if !valuesMatch(want, got) {
				return fmt.Errorf("table %s: column %q = %v (%T), want %v (%T)",
					sa.Table, key, got, got, want, want)
			}
		}
	}

	return nil
}

// whereClause builds a parameterized WHERE fragment from the filter
// map. Keys sort for deterministic SQL; column names are vetted since
// identifiers cannot bind as parameters.
func whereClause(where map[string]interface{}) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !sqlbuild.IsIdentifier(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause", key)
		}
		clauses = append(clauses, key+" = ?")
		args = append(args, where[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhere renders the filter map for failure messages.
func formatWhere(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
