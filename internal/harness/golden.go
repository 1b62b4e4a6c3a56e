package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders a run as text: one block per step with the
// request line and the raw response body. Bodies appear byte for byte
// as the gateway sent them, so the golden file pins the envelope
// shape, field order, and error strings all at once.
func Transcript(name string, result *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# scenario: %s\n", name)
	for _, ev := range result.Trace {
		fmt.Fprintf(&buf, "\n## %s\n", ev.Step)
		fmt.Fprintf(&buf, "%s %s -> %d\n", ev.Method, ev.Path, ev.Status)
		fmt.Fprintf(&buf, "%s\n", ev.Body)
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its transcript
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass and Errors;
// transcript mismatches fail the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Transcript(scenario.Name, result))

	return result, nil
}

// AssertGolden compares an already-obtained result's transcript
// against a golden file, without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Transcript(name, result))
}
