package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcthulhu/roland-mc/internal/db"
	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/monitoring"
	"github.com/xcthulhu/roland-mc/internal/sweep"
)

func seededHistory(t *testing.T) (*db.DB, db.Run) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	store, err := db.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	params := db.RunParams{Radius: sweep.RangeSpec{Min: 0, Max: 1, Step: 0.5}, Samples: 20, Seed: 11}
	started := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	run, err := store.CreateRun(params, started)
	require.NoError(t, err)

	ests := []estimator.Result{
		{Radius: 0, Ratio: 1, Hits: 20, Accepted: 20, Draws: 20},
		{Radius: 0.5, Ratio: 0.75, Hits: 15, Accepted: 20, Draws: 26},
	}
	for _, e := range ests {
		require.NoError(t, store.RecordEstimate(run.ID, e))
	}
	summary := sweep.Summarize(ests)
	summary.Started, summary.Finished = started, started.Add(time.Second)
	require.NoError(t, store.FinishRun(run.ID, summary, nil))

	failed, err := store.CreateRun(params, started.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(failed.ID, sweep.Summary{}, errors.New("context canceled")))
	return store, run
}

func TestHistory_Runs(t *testing.T) {
	store, run := seededHistory(t)

	var buf bytes.Buffer
	require.NoError(t, runHistoryCommand(&buf, store, []string{"runs"}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.Contains(t, lines[1], db.StatusFailed)
	assert.Contains(t, lines[2], run.ID)
	assert.Contains(t, lines[2], db.StatusCompleted)
	assert.Contains(t, lines[2], "0:1:0.5")
	assert.Contains(t, lines[2], "2024-07-01T09:00:00Z")

	buf.Reset()
	require.NoError(t, runHistoryCommand(&buf, store, []string{"runs", "1"}))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)

	assert.Error(t, runHistoryCommand(&buf, store, []string{"runs", "-2"}))
}

func TestHistory_Show(t *testing.T) {
	store, run := seededHistory(t)

	var buf bytes.Buffer
	require.NoError(t, runHistoryCommand(&buf, store, []string{"show", run.ID}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# run "+run.ID+" status=completed seed=11"))
	assert.True(t, strings.HasSuffix(out, "0\t1.000000\n0.5\t0.750000\n"))

	err := runHistoryCommand(&buf, store, []string{"show", "nope"})
	assert.ErrorIs(t, err, db.ErrRunNotFound)
	assert.Error(t, runHistoryCommand(&buf, store, []string{"show"}))
}

func TestHistory_Migrate(t *testing.T) {
	store, _ := seededHistory(t)

	var buf bytes.Buffer
	require.NoError(t, runHistoryCommand(&buf, store, []string{"migrate", "status"}))
	assert.Equal(t, "schema version 2 (latest 2, dirty=false)\n", buf.String())

	buf.Reset()
	require.NoError(t, runHistoryCommand(&buf, store, []string{"migrate", "down"}))
	assert.Equal(t, "schema version 1 (latest 2, dirty=false)\n", buf.String())

	assert.Error(t, runHistoryCommand(&buf, store, []string{"migrate", "sideways"}))
	assert.Error(t, runHistoryCommand(&buf, store, []string{"migrate"}))
}

func TestHistory_UnknownCommand(t *testing.T) {
	store, _ := seededHistory(t)
	var buf bytes.Buffer
	assert.Error(t, runHistoryCommand(&buf, store, nil))
	assert.ErrorContains(t, runHistoryCommand(&buf, store, []string{"purge"}), "purge")
}
