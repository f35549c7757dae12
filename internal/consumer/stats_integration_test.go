//go:build integration
// +build integration

package consumer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestStatsHandlerProjectsCompletions(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewStatsHandler(pool)

	occurred := time.Now().UTC().Truncate(time.Second)
	msg := statsMessage(t, "ca-1", "family-123", "child-1", "arts_crafts", "completed", intp(4), occurred)

	require.NoError(t, handler.Handle(ctx, msg))

	// Redelivery of the same event must not double count.
	require.NoError(t, handler.Handle(ctx, msg))

	// A second completion without a rating bumps the count only.
	msg2 := statsMessage(t, "ca-2", "family-123", "child-1", "arts_crafts", "completed", nil, occurred.Add(time.Minute))
	require.NoError(t, handler.Handle(ctx, msg2))

	// Non-completed states are ignored.
	msg3 := statsMessage(t, "ca-3", "family-123", "child-1", "arts_crafts", "canceled", nil, occurred.Add(2*time.Minute))
	require.NoError(t, handler.Handle(ctx, msg3))

	var completed, rated, sum int
	err := pool.QueryRow(ctx,
		`SELECT completed_count, rated_count, rating_sum FROM child_category_stats
         WHERE family_id='family-123' AND child_id='child-1' AND category='arts_crafts'`,
	).Scan(&completed, &rated, &sum)
	require.NoError(t, err)
	require.Equal(t, 2, completed)
	require.Equal(t, 1, rated)
	require.Equal(t, 4, sum)
}

func statsMessage(t *testing.T, childActivityID, familyID, childID, category, state string, rating *int, occurred time.Time) Message {
	t.Helper()

	payload := map[string]any{
		"child_activity_id": childActivityID,
		"family_id":         familyID,
		"child_id":          childID,
		"activity_id":       "activity-1",
		"category":          category,
		"state":             state,
		"occurred_at":       occurred,
	}
	if rating != nil {
		payload["rating"] = *rating
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return Message{
		EventType:     "childactivity.state_changed",
		FamilyID:      familyID,
		SchemaID:      42,
		SchemaSubject: "child_activity_events-value",
		Topic:         "child_activity_events",
		Partition:     0,
		Offset:        5,
		Payload:       raw,
		Timestamp:     occurred,
	}
}

func intp(v int) *int { return &v }

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("homechild"),
		postgrescontainer.WithUsername("homechild"),
		postgrescontainer.WithPassword("homechild"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	migrationsPath := resolvePath(t, "../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, file := range files {
		content, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)
		_, execErr := pool.Exec(ctx, string(content))
		require.NoErrorf(t, execErr, "execute migration %s", file)
	}
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}
