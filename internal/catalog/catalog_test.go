// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperdrop/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "papers", DefaultFile))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(shortID string, status types.RunStatus) types.RunRecord {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := types.RunRecord{
		Query:      shortID,
		PaperID:    shortID + "v1",
		ShortID:    shortID,
		Title:      "Paper " + shortID,
		Authors:    []string{"Ada Lovelace", "Alan Turing"},
		Status:     status,
		Stage:      types.StageDone,
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
	}
	if status == types.RunFailed {
		r.Stage = types.StageFetch
		r.Error = "HTTP 404"
	} else {
		r.EPUBPath = "papers/" + shortID + "/" + shortID + ".epub"
		r.DestPath = "/kobo/" + shortID + ".epub"
	}
	return r
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := testStore(t)

	var count int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), sampleRun("2308.06721", types.RunSucceeded))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := sampleRun("2308.06721", types.RunSucceeded)
	id, err := s.Record(ctx, want)
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	want.ID = id
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.True(t, want.FinishedAt.Equal(got.FinishedAt))
	got.StartedAt, got.FinishedAt = want.StartedAt, want.FinishedAt
	assert.Equal(t, want, got)
}

func TestList_NewestFirstWithFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, r := range []types.RunRecord{
		sampleRun("2308.06721", types.RunFailed),
		sampleRun("2308.06721", types.RunSucceeded),
		sampleRun("hep-th/9901001", types.RunSucceeded),
	} {
		_, err := s.Record(ctx, r)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "hep-th/9901001", all[0].ShortID)
	assert.Equal(t, types.RunFailed, all[2].Status)

	byPaper, err := s.List(ctx, ListOptions{ShortID: "2308.06721"})
	require.NoError(t, err)
	assert.Len(t, byPaper, 2)

	failed, err := s.List(ctx, ListOptions{Status: types.RunFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, types.StageFetch, failed[0].Stage)
	assert.Equal(t, "HTTP 404", failed[0].Error)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_Empty(t *testing.T) {
	runs, err := testStore(t).List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestWriters(t *testing.T) {
	runs := []types.RunRecord{
		sampleRun("2308.06721", types.RunSucceeded),
		sampleRun("2401.00001", types.RunFailed),
	}

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, runs))

		var decoded []types.RunRecord
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "2308.06721", decoded[0].ShortID)
		assert.Equal(t, types.StageFetch, decoded[1].Stage)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, runs))

		var decoded []types.RunRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Len(t, decoded, 2)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteTable(&buf, runs))

		out := buf.String()
		assert.Contains(t, out, "STATUS")
		assert.Contains(t, out, "2308.06721")
		assert.Contains(t, out, "failed (HTTP 404)")
	})
}
