package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsTranscript(t *testing.T) {
	scenario := &Scenario{
		Name:        "inline_list",
		Description: "Insert then list against a fresh database.",
		Setup: []string{
			"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)",
		},
		Steps: []Step{
			{
				Name:   "insert",
				Method: "POST",
				Path:   "/api/notes",
				Body:   `{"title":"first"}`,
				Expect: &Expect{
					Status:  200,
					Success: boolp(true),
					Data:    map[string]interface{}{"title": "first", "id": 1},
				},
			},
			{
				Name:   "list",
				Method: "GET",
				Path:   "/api/notes",
				Expect: &Expect{Status: 200, Success: boolp(true), DataLen: intp(1)},
			},
		},
		State: []StateAssertion{
			{
				Table:  "notes",
				Where:  map[string]interface{}{"id": 1},
				Expect: map[string]interface{}{"title": "first"},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, "insert", result.Trace[0].Step)
	assert.Equal(t, "POST", result.Trace[0].Method)
	assert.Equal(t, 200, result.Trace[0].Status)
	assert.JSONEq(t, `{"success":true,"data":{"title":"first","id":1}}`, result.Trace[0].Body)
	assert.Equal(t, "list", result.Trace[1].Step)
}

func TestRunAppliesTableAliases(t *testing.T) {
	scenario := &Scenario{
		Name:        "inline_alias",
		Description: "A label from the table map reaches the canonical table.",
		Tables:      map[string]string{"note pad": "notes"},
		Setup: []string{
			"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)",
		},
		Steps: []Step{
			{
				Name:   "insert via label",
				Method: "POST",
				Path:   "/api/note%20pad",
				Body:   `{"title":"aliased"}`,
				Expect: &Expect{Status: 200, Success: boolp(true)},
			},
		},
		State: []StateAssertion{
			{Table: "notes", Where: map[string]interface{}{"title": "aliased"}, Count: intp(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunReportsExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_status",
		Description: "A failed expectation fails the result, not the run.",
		Setup:       []string{"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)"},
		Steps: []Step{
			{Name: "list", Method: "GET", Path: "/api/notes", Expect: &Expect{Status: 418}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "status = 200, want 418")
	assert.Len(t, result.Trace, 1, "the exchange is still recorded")
}

func TestRunReportsStateFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_row",
		Description: "State assertions run even when every step passes.",
		Setup:       []string{"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)"},
		Steps: []Step{
			{Name: "list", Method: "GET", Path: "/api/notes", Expect: &Expect{Status: 200}},
		},
		State: []StateAssertion{
			{
				Table:  "notes",
				Where:  map[string]interface{}{"id": 1},
				Expect: map[string]interface{}{"title": "ghost"},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "state[0]")
	assert.Contains(t, result.Errors[0], "row not found")
}

func TestRunSetupFailureAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "broken_setup",
		Description: "A setup error aborts the run before any step fires.",
		Setup:       []string{"CREATE TABLE ("},
		Steps: []Step{
			{Name: "never runs", Method: "GET", Path: "/api/notes", Expect: &Expect{Status: 200}},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0]")
}

func TestRunScenariosAreIsolated(t *testing.T) {
	scenario := &Scenario{
		Name:        "fresh_db",
		Description: "Each run starts from an empty database.",
		Setup:       []string{"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)"},
		Steps: []Step{
			{
				Name:   "insert",
				Method: "POST",
				Path:   "/api/notes",
				Body:   `{"title":"only"}`,
				Expect: &Expect{Status: 200, Data: map[string]interface{}{"id": 1}},
			},
		},
		State: []StateAssertion{{Table: "notes", Count: intp(1)}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
	}
}

func TestRunStepWithoutExpectOnlyRecords(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_expect",
		Description: "Steps without an expect clause cannot fail the result.",
		Setup:       []string{"CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT)"},
		Steps: []Step{
			{Name: "unchecked read", Method: "GET", Path: "/api/notes/999"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, 404, result.Trace[0].Status)
}
