package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"

	"github.com/roach88/tabard/internal/httpapi"
	"github.com/roach88/tabard/internal/resolver"
	"github.com/roach88/tabard/internal/sqlbuild"
	"github.com/roach88/tabard/internal/store"
	"github.com/roach88/tabard/internal/testutil"
)

// msTimeout bounds each in-process request, in milliseconds.
const msTimeout = 5000

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory SQLite database for
// isolation. The gateway is assembled exactly as serve assembles it,
// minus the pieces that would break determinism: request ids are
// fixed, logging is discarded, and the mirror stays disabled so no
// goroutine races the transcript.
//
// Execution flow:
//  1. Open a fresh in-memory database and run setup SQL
//  2. Build the HTTP server with the scenario's table map
//  3. Execute steps, recording the transcript and checking expects
//  4. Evaluate state assertions against the final database
func Run(scenario *Scenario) (*Result, error) {
	gw, err := store.Open(store.Options{Path: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer gw.Close()

	ctx := context.Background()
	for i, stmt := range scenario.Setup {
		if err := gw.Execute(ctx, sqlbuild.RawQuery(stmt)); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	res := resolver.Default()
	if len(scenario.Tables) > 0 {
		res = resolver.New(scenario.Tables)
	}

	srv := httpapi.New(httpapi.Options{
		Gateway:         gw,
		Resolver:        res,
		RawQueryEnabled: scenario.RawQuery,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestIDs:      testutil.NewFixedRequestIDs(""),
	})

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := runStep(srv, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}
	}

	for i, sa := range scenario.State {
		if err := assertState(ctx, gw, sa); err != nil {
			result.AddError(fmt.Sprintf("state[%d]: %v", i, err))
		}
	}

	return result, nil
}

// runStep sends one request through the in-process transport, records
// the exchange, and checks the step's expect clause. Transport-level
// failures abort the run; expectation mismatches only fail the result.
func runStep(srv *httpapi.Server, step Step, result *Result) error {
	var body io.Reader
	if step.Body != "" {
		body = strings.NewReader(step.Body)
	}
	req := httptest.NewRequest(step.Method, step.Path, body)
	if step.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, msTimeout)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	result.AddTrace(TraceEvent{
		Step:   step.Name,
		Method: step.Method,
		Path:   step.Path,
		Status: resp.StatusCode,
		Body:   string(raw),
	})

	if step.Expect != nil {
		for _, msg := range checkExpect(step, resp.StatusCode, raw) {
			result.AddError(msg)
		}
	}
	return nil
}
