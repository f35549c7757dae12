package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waltmayfield/home-child/internal/domain"
	"github.com/waltmayfield/home-child/internal/events"
	"github.com/waltmayfield/home-child/internal/observability"
)

// Repository provides Postgres-backed persistence for the activity catalog
// and records outbox events inside the same transaction as the write.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `activity_id, title, description, category, skills_targeted, difficulty_level,
        estimated_minutes, min_age, max_age, mess_level, supervision_level, tags, created_at, updated_at`

// Create persists a catalog activity and its outbox event in one transaction.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	insertActivity := `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	var minAge, maxAge interface{}
	if activity.TargetAgeRange != nil {
		minAge = activity.TargetAgeRange.MinAge
		maxAge = activity.TargetAgeRange.MaxAge
	}

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.Title,
		activity.Description,
		string(activity.Category),
		skillStrings(activity.SkillsTargeted),
		nullIfEmpty(string(activity.DifficultyLevel)),
		zeroToNull(activity.EstimatedMinutes),
		minAge,
		maxAge,
		nullIfEmpty(string(activity.MessLevel)),
		nullIfEmpty(string(activity.SupervisionLevel)),
		activity.Tags,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, outboxEvent{
		FamilyID:      catalogFamilyID,
		AggregateType: "activity",
		AggregateID:   activity.ID,
		EventType:     "activity.created",
		Payload: events.ActivityCreated{
			ActivityID:       activity.ID,
			Title:            activity.Title,
			Category:         string(activity.Category),
			DifficultyLevel:  string(activity.DifficultyLevel),
			EstimatedMinutes: activity.EstimatedMinutes,
			CreatedAt:        activity.CreatedAt,
		},
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.CreatedAt)
	return nil
}

// Get retrieves a catalog activity by ID.
func (r *Repository) Get(ctx context.Context, activityID string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE activity_id=$1`

	row := r.pool.QueryRow(ctx, query, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// List pages the catalog newest-first with a (created_at, activity_id) cursor.
func (r *Repository) List(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{limit}
	query := `SELECT ` + activityColumns + ` FROM activities`

	if cursor != nil {
		query += ` WHERE (created_at, activity_id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, activity_id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0, limit)
	for rows.Next() {
		activity, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, nil, scanErr
		}
		results = append(results, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		activity         domain.Activity
		skills           []string
		difficulty       *string
		estimatedMinutes *int
		minAge, maxAge   *int
		mess             *string
		supervision      *string
	)

	if err := row.Scan(
		&activity.ID,
		&activity.Title,
		&activity.Description,
		&activity.Category,
		&skills,
		&difficulty,
		&estimatedMinutes,
		&minAge,
		&maxAge,
		&mess,
		&supervision,
		&activity.Tags,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	); err != nil {
		return nil, err
	}

	activity.SkillsTargeted = skillValues(skills)
	if difficulty != nil {
		activity.DifficultyLevel = domain.Difficulty(*difficulty)
	}
	if estimatedMinutes != nil {
		activity.EstimatedMinutes = *estimatedMinutes
	}
	if minAge != nil && maxAge != nil {
		activity.TargetAgeRange = &domain.AgeRange{MinAge: *minAge, MaxAge: *maxAge}
	}
	if mess != nil {
		activity.MessLevel = domain.MessLevel(*mess)
	}
	if supervision != nil {
		activity.SupervisionLevel = domain.SupervisionLevel(*supervision)
	}
	return &activity, nil
}

// catalogFamilyID marks outbox rows for catalog-wide events that belong to
// no particular family.
const catalogFamilyID = "catalog"

// outboxEvent carries a pending outbox row before routing metadata is attached.
type outboxEvent struct {
	FamilyID      string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       interface{}
}

func insertOutbox(ctx context.Context, tx pgx.Tx, event outboxEvent) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[event.EventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}

	partitionKey := meta.PartitionKeyFn(event)
	dedupeKey := fmt.Sprintf("%s:%s", event.AggregateID, event.EventType)

	const stmt = `INSERT INTO outbox (family_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		event.FamilyID,
		event.AggregateType,
		event.AggregateID,
		event.EventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func zeroToNull(value int) interface{} {
	if value == 0 {
		return nil
	}
	return value
}

func skillStrings(skills []domain.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = string(s)
	}
	return out
}

func skillValues(raw []string) []domain.Skill {
	if raw == nil {
		return nil
	}
	out := make([]domain.Skill, len(raw))
	for i, s := range raw {
		out[i] = domain.Skill(s)
	}
	return out
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(outboxEvent) string
}

var eventCatalog = map[string]EventMetadata{
	"activity.created": {
		Topic:         "activity_catalog_events",
		SchemaSubject: "activity_catalog_events-value",
		PartitionKeyFn: func(e outboxEvent) string {
			return e.AggregateID
		},
	},
	"childactivity.state_changed": {
		Topic:         "child_activity_events",
		SchemaSubject: "child_activity_events-value",
		PartitionKeyFn: func(e outboxEvent) string {
			return fmt.Sprintf("%s:%s", e.FamilyID, e.AggregateID)
		},
	},
}
