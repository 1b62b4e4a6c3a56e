package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance run. Each scenario executes against
// a fresh database, so runs are independent and repeatable.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tables maps client-facing labels to canonical table names, the
	// same shape the gateway loads from its CUE table map. Empty means
	// labels pass through unchanged.
	Tables map[string]string `yaml:"tables,omitempty"`

	// RawQuery opens the verbatim SQL route for this scenario.
	RawQuery bool `yaml:"raw_query,omitempty"`

	// Setup is SQL executed before any steps run, typically CREATE
	// TABLE statements and seed rows. Setup statements are assumed to
	// succeed; a failure aborts the run.
	Setup []string `yaml:"setup,omitempty"`

	// Steps is the request sequence of the main flow.
	Steps []Step `yaml:"steps"`

	// State contains assertions against the database after the last
	// step.
	State []StateAssertion `yaml:"state,omitempty"`
}

// Step is one HTTP request and the response it must produce.
type Step struct {
	// Name identifies the step in transcripts and failure messages.
	Name string `yaml:"name"`

	// Method is the HTTP method: GET, POST, PUT, or DELETE.
	Method string `yaml:"method"`

	// Path is the request target, including any query string. Reserved
	// characters are written percent-encoded, exactly as a client
	// would send them.
	Path string `yaml:"path"`

	// Body is the raw JSON request body, sent verbatim. Key order is
	// preserved end to end, so it shapes insert column order and the
	// echoed response.
	Body string `yaml:"body,omitempty"`

	// Expect validates the response. Nil means the response is only
	// recorded in the transcript.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect validates one response envelope.
type Expect struct {
	// Status is the required HTTP status code.
	Status int `yaml:"status"`

	// Success, when set, must equal the envelope's success flag.
	Success *bool `yaml:"success,omitempty"`

	// Error, when set, must be a substring of the envelope's error.
	Error string `yaml:"error,omitempty"`

	// Data, when set, is a subset match against the envelope's data
	// object; fields not listed are ignored. Values read back from
	// the database keep SQLite's affinity, so a stored true comes
	// back as 1.
	Data map[string]interface{} `yaml:"data,omitempty"`

	// DataLen, when set, is the required length of the envelope's
	// data list.
	DataLen *int `yaml:"data_len,omitempty"`
}

// StateAssertion queries a table after the run and matches rows.
type StateAssertion struct {
	// Table is the canonical table name to query.
	Table string `yaml:"table"`

	// Where filters rows; all fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect is a subset match against the single matching row.
	// Requires the where clause to select exactly one row.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count, when set, is the required number of matching rows.
	Count *int `yaml:"count,omitempty"`
}

// allowed HTTP methods for steps, matching the gateway's route table.
var stepMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if !stepMethods[step.Method] {
			return fmt.Errorf("steps[%d]: method %q is not one of GET, POST, PUT, DELETE", i, step.Method)
		}
		if step.Path == "" || step.Path[0] != '/' {
			return fmt.Errorf("steps[%d]: path must start with /", i)
		}
		if step.Expect != nil && step.Expect.Status == 0 {
			return fmt.Errorf("steps[%d].expect: status is required", i)
		}
	}

	for i, sa := range s.State {
		if sa.Table == "" {
			return fmt.Errorf("state[%d]: table is required", i)
		}
		if len(sa.Expect) == 0 && sa.Count == nil {
			return fmt.Errorf("state[%d]: expect or count is required", i)
		}
	}

	return nil
}
