package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCommand_MissingArgs(t *testing.T) {
	_, _, err := executeRoot("replay", "--db", "runs.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestReplayCommand_Deterministic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "run-1")

	out, _, err := executeRoot("replay", "--db", dbPath, "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Run run-1 replayed deterministically (5 events)")
}

func TestReplayCommand_DeterministicJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "run-1")

	out, _, err := executeRoot("--format", "json", "replay", "--db", dbPath, "run-1")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	assert.Equal(t, 5, resp.Data.Events)
	assert.Empty(t, resp.Data.Divergence)
}

func TestReplayCommand_Divergence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "run-1")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE events SET x = x + 1 WHERE run_id = ? AND seq = 3`, "run-1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, _, err := executeRoot("replay", "--db", dbPath, "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Run run-1 diverged")
	assert.Contains(t, out, "event 2")

	out, _, err = executeRoot("--format", "json", "replay", "--db", dbPath, "run-1")
	require.Error(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayOutput `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Deterministic)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_NONDETERMINISTIC", resp.Error.Code)
}

func TestReplayCommand_RunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "run-1")

	out, _, err := executeRoot("replay", "--db", dbPath, "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run missing not found")
}

func TestReplayCommand_DatabaseNotFound(t *testing.T) {
	_, _, err := executeRoot("replay", "--db", filepath.Join(t.TempDir(), "none.db"), "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
