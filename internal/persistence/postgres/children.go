package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waltmayfield/home-child/internal/domain"
)

// ChildRepository provides family-scoped persistence for child profiles.
// Every statement runs with app.family_id set so row-level security applies.
type ChildRepository struct {
	pool *pgxpool.Pool
}

// NewChildRepository constructs a ChildRepository.
func NewChildRepository(pool *pgxpool.Pool) *ChildRepository {
	return &ChildRepository{pool: pool}
}

const childColumns = `child_id, family_id, name, sex, birthday, interests, default_filter, created_at, updated_at`

// Create persists a child profile.
func (r *ChildRepository) Create(ctx context.Context, child domain.Child) error {
	filter, err := marshalFilter(child.DefaultFilter)
	if err != nil {
		return err
	}

	insertChild := `INSERT INTO children (` + childColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	return r.withFamilyTx(ctx, child.FamilyID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertChild,
			child.ID,
			child.FamilyID,
			child.Name,
			string(child.Sex),
			child.Birthday,
			child.Interests,
			filter,
			child.CreatedAt,
			child.UpdatedAt,
		)
		return err
	})
}

// Get retrieves a child within the family scope. Returns nil when absent.
func (r *ChildRepository) Get(ctx context.Context, familyID, childID string) (*domain.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE family_id=$1 AND child_id=$2`

	var child *domain.Child
	err := r.withFamilyTx(ctx, familyID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, familyID, childID)
		scanned, err := scanChild(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		child = scanned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// ListByFamily returns all children in a family ordered by creation time.
func (r *ChildRepository) ListByFamily(ctx context.Context, familyID string) ([]domain.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE family_id=$1 ORDER BY created_at, child_id`

	var children []domain.Child
	err := r.withFamilyTx(ctx, familyID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, familyID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			child, err := scanChild(rows)
			if err != nil {
				return err
			}
			children = append(children, *child)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// Update overwrites the mutable fields of a child profile.
func (r *ChildRepository) Update(ctx context.Context, child domain.Child) error {
	filter, err := marshalFilter(child.DefaultFilter)
	if err != nil {
		return err
	}

	const stmt = `UPDATE children SET name=$3, sex=$4, birthday=$5, interests=$6, default_filter=$7, updated_at=$8
        WHERE family_id=$1 AND child_id=$2`

	return r.withFamilyTx(ctx, child.FamilyID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmt,
			child.FamilyID,
			child.ID,
			child.Name,
			string(child.Sex),
			child.Birthday,
			child.Interests,
			filter,
			child.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrChildNotFound
		}
		return nil
	})
}

func (r *ChildRepository) withFamilyTx(ctx context.Context, familyID string, fn func(pgx.Tx) error) error {
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

func scanChild(row pgx.Row) (*domain.Child, error) {
	var (
		child  domain.Child
		sex    string
		filter []byte
	)

	if err := row.Scan(
		&child.ID,
		&child.FamilyID,
		&child.Name,
		&sex,
		&child.Birthday,
		&child.Interests,
		&filter,
		&child.CreatedAt,
		&child.UpdatedAt,
	); err != nil {
		return nil, err
	}

	child.Sex = domain.Sex(sex)
	if len(filter) > 0 {
		var parsed domain.DefaultFilter
		if err := json.Unmarshal(filter, &parsed); err != nil {
			return nil, err
		}
		child.DefaultFilter = &parsed
	}
	return &child, nil
}

func marshalFilter(filter *domain.DefaultFilter) ([]byte, error) {
	if filter == nil {
		return nil, nil
	}
	return json.Marshal(filter)
}
