package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waltmayfield/home-child/internal/domain"
	"github.com/waltmayfield/home-child/internal/events"
	"github.com/waltmayfield/home-child/internal/observability"
)

// ScheduleRepository persists child activity schedules and emits a
// state-changed outbox event alongside every write.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const childActivityColumns = `child_activity_id, family_id, child_id, activity_id, state, scheduled_for,
        started_at, completed_at, rating, comments, created_at, updated_at`

// Create persists a scheduled activity and its outbox event in one transaction.
func (r *ScheduleRepository) Create(ctx context.Context, ca domain.ChildActivity) error {
	insert := `INSERT INTO child_activities (` + childActivityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	return r.withFamilyTx(ctx, ca.FamilyID, func(tx pgx.Tx) error {
		rating, comments := feedbackColumns(ca.Feedback)
		_, err := tx.Exec(ctx, insert,
			ca.ID,
			ca.FamilyID,
			ca.ChildID,
			ca.ActivityID,
			string(ca.State),
			ca.ScheduledFor,
			ca.StartedAt,
			ca.CompletedAt,
			rating,
			comments,
			ca.CreatedAt,
			ca.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := r.insertStateChanged(ctx, tx, ca); err != nil {
			return err
		}
		observability.RecordChildActivityWrite(ca.CreatedAt)
		return nil
	})
}

// Get retrieves a scheduled activity within the family scope.
func (r *ScheduleRepository) Get(ctx context.Context, familyID, childActivityID string) (*domain.ChildActivity, error) {
	query := `SELECT ` + childActivityColumns + ` FROM child_activities WHERE family_id=$1 AND child_activity_id=$2`

	var ca *domain.ChildActivity
	err := r.withFamilyTx(ctx, familyID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, familyID, childActivityID)
		scanned, err := scanChildActivity(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		ca = scanned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ca, nil
}

// Update writes the new lifecycle state and a matching outbox event.
func (r *ScheduleRepository) Update(ctx context.Context, ca domain.ChildActivity) error {
	const stmt = `UPDATE child_activities SET state=$3, started_at=$4, completed_at=$5, rating=$6, comments=$7, updated_at=$8
        WHERE family_id=$1 AND child_activity_id=$2`

	return r.withFamilyTx(ctx, ca.FamilyID, func(tx pgx.Tx) error {
		rating, comments := feedbackColumns(ca.Feedback)
		tag, err := tx.Exec(ctx, stmt,
			ca.FamilyID,
			ca.ID,
			string(ca.State),
			ca.StartedAt,
			ca.CompletedAt,
			rating,
			comments,
			ca.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrChildActivityNotFound
		}
		if err := r.insertStateChanged(ctx, tx, ca); err != nil {
			return err
		}
		observability.RecordChildActivityWrite(ca.UpdatedAt)
		return nil
	})
}

// ListByChild returns all scheduled activities for a child, newest first.
func (r *ScheduleRepository) ListByChild(ctx context.Context, familyID, childID string) ([]domain.ChildActivity, error) {
	query := `SELECT ` + childActivityColumns + ` FROM child_activities
        WHERE family_id=$1 AND child_id=$2 ORDER BY created_at DESC, child_activity_id DESC`

	var results []domain.ChildActivity
	err := r.withFamilyTx(ctx, familyID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, familyID, childID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			ca, err := scanChildActivity(rows)
			if err != nil {
				return err
			}
			results = append(results, *ca)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// insertStateChanged records the childactivity.state_changed event. The
// activity category is resolved in-transaction so consumers never need a
// catalog lookup.
func (r *ScheduleRepository) insertStateChanged(ctx context.Context, tx pgx.Tx, ca domain.ChildActivity) error {
	var category string
	err := tx.QueryRow(ctx, `SELECT category FROM activities WHERE activity_id=$1`, ca.ActivityID).Scan(&category)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var rating *int
	if ca.Feedback != nil {
		rating = &ca.Feedback.Rating
	}

	return insertOutbox(ctx, tx, outboxEvent{
		FamilyID:      ca.FamilyID,
		AggregateType: "child_activity",
		AggregateID:   ca.ID,
		EventType:     "childactivity.state_changed",
		Payload: events.ChildActivityStateChanged{
			ChildActivityID: ca.ID,
			FamilyID:        ca.FamilyID,
			ChildID:         ca.ChildID,
			ActivityID:      ca.ActivityID,
			Category:        category,
			State:           string(ca.State),
			Rating:          rating,
			OccurredAt:      ca.UpdatedAt,
		},
	})
}

func (r *ScheduleRepository) withFamilyTx(ctx context.Context, familyID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.family_id', $1, true)", familyID); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanChildActivity(row pgx.Row) (*domain.ChildActivity, error) {
	var (
		ca       domain.ChildActivity
		state    string
		rating   *int
		comments *string
	)

	if err := row.Scan(
		&ca.ID,
		&ca.FamilyID,
		&ca.ChildID,
		&ca.ActivityID,
		&state,
		&ca.ScheduledFor,
		&ca.StartedAt,
		&ca.CompletedAt,
		&rating,
		&comments,
		&ca.CreatedAt,
		&ca.UpdatedAt,
	); err != nil {
		return nil, err
	}

	ca.State = domain.ChildActivityState(state)
	if rating != nil {
		fb := domain.Feedback{Rating: *rating}
		if comments != nil {
			fb.Comments = *comments
		}
		ca.Feedback = &fb
	}
	return &ca, nil
}

func feedbackColumns(fb *domain.Feedback) (interface{}, interface{}) {
	if fb == nil {
		return nil, nil
	}
	return fb.Rating, nullIfEmpty(fb.Comments)
}
