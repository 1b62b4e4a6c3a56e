package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioGoldens replays every scenario under testdata/scenarios
// and pins its transcript to the matching golden file. Regenerate with
// go test ./internal/harness -update after an intentional change.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario errors: %v", result.Errors)
		})
	}
}

func TestTranscriptIsDeterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "crud_roundtrip.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t,
		string(Transcript(scenario.Name, first)),
		string(Transcript(scenario.Name, second)))
}

func TestTranscriptFormat(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{
		Step: "probe", Method: "GET", Path: "/", Status: 200,
		Body: `{"status":"ok"}`,
	})
	result.AddTrace(TraceEvent{
		Step: "insert", Method: "POST", Path: "/api/users", Status: 400,
		Body: `{"success":false,"error":"boom"}`,
	})

	want := "# scenario: sample\n" +
		"\n## probe\nGET / -> 200\n{\"status\":\"ok\"}\n" +
		"\n## insert\nPOST /api/users -> 400\n{\"success\":false,\"error\":\"boom\"}\n"
	assert.Equal(t, want, string(Transcript("sample", result)))
}
