package config

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tabard/internal/sqlbuild"
)

// Table-map error codes, stable for scripting against check output.
const (
	ErrCodeTablesNotFound = "T001" // file missing or unreadable
	ErrCodeTablesLoad     = "T002" // CUE load failed
	ErrCodeTablesBuild    = "T003" // CUE evaluation failed
	ErrCodeTablesMissing  = "T004" // tables field absent or not a struct
	ErrCodeTablesEmpty    = "T005" // tables field has no entries
	ErrCodeTablesBadValue = "T006" // mapping value not a concrete string
	ErrCodeTablesBadName  = "T007" // canonical name is not a SQL identifier
)

// TablesError reports a problem in an operator-supplied table map.
type TablesError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *TablesError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadTables reads a CUE table map and returns the label-to-canonical
// mapping for the resolver. The file declares a single tables struct
// whose keys are client-facing labels and whose values are the storage
// names statements are built against:
//
//	tables: {
//		"user records": "user_records"
//		projects:       "projects"
//	}
//
// Labels are unrestricted (they arrive in URL paths, never in SQL);
// every canonical name must be a plain SQL identifier or the whole map
// is rejected.
func LoadTables(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &TablesError{Code: ErrCodeTablesNotFound, Message: fmt.Sprintf("tables file: %v", err)}
	}
	if info.IsDir() {
		return nil, &TablesError{Code: ErrCodeTablesNotFound, Message: fmt.Sprintf("tables file %s is a directory", path)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &TablesError{Code: ErrCodeTablesLoad, Message: "no CUE instance loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &TablesError{Code: ErrCodeTablesLoad, Message: fmt.Sprintf("loading %s: %v", path, inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &TablesError{Code: ErrCodeTablesBuild, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	tablesVal := value.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, &TablesError{Code: ErrCodeTablesMissing, Message: `no "tables" field found`}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, &TablesError{
			Code:    ErrCodeTablesMissing,
			Message: fmt.Sprintf(`"tables" is not a struct: %v`, err),
			Pos:     tablesVal.Pos(),
		}
	}

	mapping := make(map[string]string)
	for iter.Next() {
		label := iter.Label()
		canonical, err := iter.Value().String()
		if err != nil {
			return nil, &TablesError{
				Code:    ErrCodeTablesBadValue,
				Message: fmt.Sprintf("table %q: value must be a concrete string: %v", label, err),
				Pos:     iter.Value().Pos(),
			}
		}
		if !sqlbuild.IsIdentifier(canonical) {
			return nil, &TablesError{
				Code:    ErrCodeTablesBadName,
				Message: fmt.Sprintf("table %q: canonical name %q is not a valid identifier", label, canonical),
				Pos:     iter.Value().Pos(),
			}
		}
		mapping[label] = canonical
	}

	if len(mapping) == 0 {
		return nil, &TablesError{Code: ErrCodeTablesEmpty, Message: `"tables" has no entries`}
	}

	return mapping, nil
}
