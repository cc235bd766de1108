//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestRecordAndGetRun_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := &ExtractionRun{
		Filename:   "integration-" + uuid.NewString() + ".pdf",
		Source:     "http",
		Status:     RunStatusSucceeded,
		Model:      "gemini-2.5-flash",
		TextLength: 1200,
		DurationMs: 850,
	}
	require.NoError(t, db.RecordRun(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.Filename, got.Filename)
	assert.Equal(t, RunStatusSucceeded, got.Status)
	assert.Equal(t, 1200, got.TextLength)

	missing, err := db.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListRunsFiltered_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	kind := "kind-" + uuid.NewString()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.RecordRun(ctx, &ExtractionRun{
			Filename:  "failed.pdf",
			Status:    RunStatusFailed,
			ErrorKind: kind,
		}))
	}

	runs, err := db.ListRunsFiltered(ctx, RunFilters{ErrorKind: kind, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, kind, r.ErrorKind)
	}

	all, err := db.ListRunsFiltered(ctx, RunFilters{Limit: 10})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(all), 10)
}

func TestDeleteRunsBefore_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := &ExtractionRun{Filename: "old-" + uuid.NewString() + ".pdf", Status: RunStatusSucceeded}
	require.NoError(t, db.RecordRun(ctx, run))

	deleted, err := db.DeleteRunsBefore(ctx, run.CreatedAt.Add(time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
