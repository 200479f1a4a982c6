//go:build integration

package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jonathan/claimhound/internal/types"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// testDatabaseURL returns TEST_DATABASE_URL, or starts a throwaway Postgres
// container shared by the package's tests.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "claimhound",
					"POSTGRES_PASSWORD": "claimhound",
					"POSTGRES_DB":       "claimhound",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			containerErr = err
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		if host == "" || host == "null" {
			host = "localhost"
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			containerErr = err
			return
		}
		containerURL = fmt.Sprintf("postgres://claimhound:claimhound@%s:%s/claimhound?sslmode=disable", host, port.Port())
	})

	if containerErr != nil {
		t.Skipf("Skipping integration test: no database available: %v", containerErr)
	}
	return containerURL
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, testDatabaseURL(t))
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migration must be idempotent")
	t.Cleanup(db.Close)
	return db
}

func TestRunLifecycle_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, RunInput{Source: "tweets.json", Provider: "gemini", Model: "gemini-2.0-flash-lite", TotalPosts: 3})
	require.NoError(t, err)

	run, err := db.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, db.CompleteRun(ctx, runID, RunOutcome{Processed: 3, Errors: 1, Claims: 2}))

	run, err = db.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.Processed)
	assert.Equal(t, 1, run.Errors)
	assert.Equal(t, 2, run.Claims)
	assert.NotNil(t, run.CompletedAt)

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)

	require.NoError(t, db.DeleteRun(ctx, runID))
	run, err = db.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.Error(t, db.DeleteRun(ctx, runID))
}

func TestClaims_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, RunInput{Source: "tweets.json"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteRun(context.Background(), runID) })

	claims := []types.Claim{
		{Class: "economics", Text: "dollar", Interval: &types.CharInterval{Start: 4, End: 10}, AlignmentStatus: types.AlignmentExact, ExtractionIndex: 1, Location: "global", Post: types.PostSnapshot{ID: "1", Author: "Ann"}},
		{Class: "politics", Text: "vote", AlignmentStatus: types.AlignmentUnmatched, ExtractionIndex: 1, Attributes: map[string]any{"certainty": true}, Post: types.PostSnapshot{ID: "2", Author: "Bob"}},
		{Class: "economics", Text: "gold", AlignmentStatus: types.AlignmentUnmatched, ExtractionIndex: 2, Post: types.PostSnapshot{ID: "2", Author: "Bob"}},
	}
	require.NoError(t, db.SaveClaims(ctx, runID, claims))

	all, err := db.ListClaims(ctx, runID, ClaimFilters{})
	require.NoError(t, err)
	assert.Equal(t, claims, all)

	econ, err := db.ListClaims(ctx, runID, ClaimFilters{Category: "economics", Author: "Bob"})
	require.NoError(t, err)
	require.Len(t, econ, 1)
	assert.Equal(t, "gold", econ[0].Text)

	limited, err := db.ListClaims(ctx, runID, ClaimFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
