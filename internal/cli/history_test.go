package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/armory/pkg/history"
	"github.com/harun/armory/pkg/tool"
)

// writeTestConfig creates a config file pointing at a populated history db.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	store, err := history.Open(history.Config{Path: dbPath, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 3; i++ {
		rec := tool.Record{
			ID:         fmt.Sprintf("rec-%d", i),
			ToolName:   "sample_tool",
			Input:      json.RawMessage(`{}`),
			Output:     json.RawMessage(`"ok"`),
			Success:    i != 0,
			DurationMS: int64(i + 1),
			Timestamp:  time.Now().Add(time.Duration(i) * time.Second),
		}
		if !rec.Success {
			rec.Error = "failed"
		}
		require.NoError(t, store.Append(context.Background(), rec))
	}

	cfgPath := filepath.Join(dir, "armory.json")
	cfg := fmt.Sprintf(`{"data_dir": %q, "history": {"driver": "sqlite", "path": %q}}`, dir, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	return cfgPath
}

func TestHistoryCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := GetRootCmd()
	cmd.SetArgs([]string{"history", "--config", cfgPath, "--limit", "10"})

	output := &bytes.Buffer{}
	cmd.SetOut(output)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, output.String(), "sample_tool")
	assert.Contains(t, output.String(), "rec-2")
}

func TestHistoryCommand_FailedOnly(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := GetRootCmd()
	cmd.SetArgs([]string{"history", "--config", cfgPath, "--failed"})

	output := &bytes.Buffer{}
	cmd.SetOut(output)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, output.String(), "rec-0")
	assert.NotContains(t, output.String(), "rec-1")
}

func TestStatsCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := GetRootCmd()
	cmd.SetArgs([]string{"stats", "--config", cfgPath})

	output := &bytes.Buffer{}
	cmd.SetOut(output)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, output.String(), "sample_tool")
	assert.Contains(t, output.String(), `"total_calls": 3`)
}
