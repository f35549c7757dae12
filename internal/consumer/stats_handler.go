package consumer

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waltmayfield/home-child/internal/events"
)

// StatsHandler projects childactivity.state_changed events into the
// child_category_stats table that serves the stats read path.
type StatsHandler struct {
	pool *pgxpool.Pool
}

// NewStatsHandler constructs a handler backed by the provided pool.
func NewStatsHandler(pool *pgxpool.Pool) *StatsHandler {
	return &StatsHandler{pool: pool}
}

// Handle updates the per-category projection for completed activities.
// Other lifecycle states and event types are acknowledged without a write.
func (h *StatsHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "childactivity.state_changed" {
		return nil
	}

	var event events.ChildActivityStateChanged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return err
	}
	if event.State != "completed" || event.Category == "" {
		return nil
	}

	var rating interface{}
	ratedIncrement := 0
	if event.Rating != nil {
		rating = *event.Rating
		ratedIncrement = 1
	}

	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.family_id', $1, true)", event.FamilyID); err != nil {
		return err
	}

	// Dedupe on the event so redelivered messages do not double count.
	tag, err := tx.Exec(ctx,
		`INSERT INTO child_activity_event_log (child_activity_id, family_id, event_type, occurred_at)
         VALUES ($1,$2,$3,$4)
         ON CONFLICT (child_activity_id, event_type, occurred_at) DO NOTHING`,
		event.ChildActivityID, event.FamilyID, msg.EventType, event.OccurredAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO child_category_stats (family_id, child_id, category, completed_count, rated_count, rating_sum, updated_at)
         VALUES ($1,$2,$3,1,$4,COALESCE($5::int,0),$6)
         ON CONFLICT (family_id, child_id, category) DO UPDATE SET
             completed_count = child_category_stats.completed_count + 1,
             rated_count = child_category_stats.rated_count + $4,
             rating_sum = child_category_stats.rating_sum + COALESCE($5::int,0),
             updated_at = $6`,
		event.FamilyID, event.ChildID, event.Category, ratedIncrement, rating, event.OccurredAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
