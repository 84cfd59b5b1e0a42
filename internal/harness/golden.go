package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stockroom/internal/domain"
)

// GoldenSnapshot is what golden files record for a scenario: each step's
// outcome and the final state.
type GoldenSnapshot struct {
	Scenario string          `json:"scenario"`
	Steps    []GoldenStep    `json:"steps"`
	State    domain.Snapshot `json:"state"`
}

// GoldenStep is a trace event without its arguments, which the scenario
// file already records.
type GoldenStep struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Expired *int   `json:"expired,omitempty"`
}

// Golden renders the golden file contents for a result: indented JSON with
// a trailing newline.
func Golden(scenario *Scenario, result *Result) ([]byte, error) {
	snap := GoldenSnapshot{
		Scenario: scenario.Name,
		Steps:    make([]GoldenStep, 0, len(result.Trace)),
		State:    result.State,
	}
	for _, e := range result.Trace {
		snap.Steps = append(snap.Steps, GoldenStep{Seq: e.Seq, Op: e.Op, Outcome: e.Outcome, Expired: e.Expired})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario, fails t on any step or assertion
// error and compares the outcome with testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}

	data, err := Golden(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
