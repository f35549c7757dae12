//go:build integration

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestDLQReplayDeliversToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	familyID := uuid.NewString()
	childActivityID := uuid.NewString()
	childID := uuid.NewString()
	activityID := uuid.NewString()

	payload := map[string]any{
		"child_activity_id": childActivityID,
		"family_id":         familyID,
		"child_id":          childID,
		"activity_id":       activityID,
		"category":          "arts_crafts",
		"state":             "completed",
		"rating":            5,
		"occurred_at":       time.Now().UTC().Truncate(time.Second),
	}
	insertOutboxPayload(t, ctx, pool, familyID, childActivityID, payload)

	registry := &stubRegistry{id: 100}

	// 1. Initial dispatch fails and moves the message to DLQ.
	failingProducer := &stubProducer{err: errors.New("upstream kafka unavailable")}
	dispatcher := NewDispatcher(pool, failingProducer, registry, 5*time.Millisecond, 10)
	require.NoError(t, dispatcher.processBatch(ctx))

	var dlqCount int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq`).Scan(&dlqCount)
	require.NoError(t, err)
	require.Equal(t, 1, dlqCount, "expected message routed to DLQ on failure")

	// 2. Requeue the DLQ entry.
	manager := NewDLQManager(pool, 5, time.Second)
	replayed, err := manager.RunOnce(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, replayed)

	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq`).Scan(&dlqCount)
	require.NoError(t, err)
	require.Equal(t, 0, dlqCount, "expected DLQ cleared after requeue")

	// 3. Dispatch again against a real broker and read the event back.
	kContainer, err := kafkaContainer.RunContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kContainer.Terminate(context.Background()) })

	brokers, err := kContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	broker := brokers[0]

	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             "child_activity_events",
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	producer := NewKafkaProducer([]string{broker})
	defer producer.Close()

	dispatcher = NewDispatcher(pool, producer, registry, 5*time.Millisecond, 10)
	require.NoError(t, dispatcher.processBatch(ctx))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   "child_activity_events",
		GroupID: "dlq-replay-test",
	})
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 45*time.Second)
	defer readCancel()

	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%s:%s", familyID, childActivityID), string(msg.Key))

	// Strip the Confluent framing before decoding.
	require.Greater(t, len(msg.Value), 5)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value[5:], &decoded))
	require.Equal(t, childActivityID, decoded["child_activity_id"])
	require.Equal(t, "completed", decoded["state"])
}

func insertOutboxPayload(t *testing.T, ctx context.Context, pool *pgxpool.Pool, familyID, aggregateID string, payload map[string]any) {
	t.Helper()

	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SELECT set_config('app.family_id', $1, true)", familyID)
	require.NoError(t, err)

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (family_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		familyID,
		"child_activity",
		aggregateID,
		"childactivity.state_changed",
		"child_activity_events",
		"child_activity_events-value",
		fmt.Sprintf("%s:%s", familyID, aggregateID),
		payloadBytes,
	)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}
