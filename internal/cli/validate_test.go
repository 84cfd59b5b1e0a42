package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateCatalogs(t *testing.T) {
	out, err := runValidateCommand(t, "text",
		"../catalog/testdata/catalog.cue",
		"../catalog/testdata/catalog.yaml",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ ../catalog/testdata/catalog.cue (catalog)")
	assert.Contains(t, out, "✓ ../catalog/testdata/catalog.yaml (catalog)")
}

func TestValidateDetectsScenario(t *testing.T) {
	out, err := runValidateCommand(t, "json", harnessScenarios+"/merge-on-move.yaml")
	require.NoError(t, err, out)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 1)
	assert.Equal(t, KindScenario, resp.Data.Files[0].Kind)
}

func TestValidateInvalidCatalog(t *testing.T) {
	out, err := runValidateCommand(t, "json",
		"../catalog/testdata/catalog.cue",
		"../catalog/testdata/negative_stock.cue",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 2)
	assert.True(t, resp.Data.Files[0].Valid)
	assert.False(t, resp.Data.Files[1].Valid)
	assert.Contains(t, resp.Data.Files[1].Error, "negative_stock.cue")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestValidateKindOverride(t *testing.T) {
	// A catalog read as a scenario has no name or steps.
	out, err := runValidateCommand(t, "text", "--kind", KindScenario, "../catalog/testdata/catalog.yaml")
	require.Error(t, err)
	assert.Contains(t, out, "✗ ../catalog/testdata/catalog.yaml (scenario)")
}

func TestValidateInvalidKind(t *testing.T) {
	_, err := runValidateCommand(t, "text", "--kind", "recipe", "x.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid kind")
}

func TestValidateMissingFile(t *testing.T) {
	out, err := runValidateCommand(t, "text", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, out, "✗ does-not-exist.yaml")
}
