package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waltmayfield/home-child/internal/domain"
)

// StatsRepository reads the per-category projection maintained by the
// consumer from child_activity_events.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// CategoryStats returns completion counts and average ratings per category.
func (r *StatsRepository) CategoryStats(ctx context.Context, familyID, childID string) ([]domain.CategoryStat, error) {
	const query = `SELECT category, completed_count, rated_count,
        CASE WHEN rated_count > 0 THEN rating_sum::float8 / rated_count ELSE 0 END AS average_rating
        FROM child_category_stats WHERE family_id=$1 AND child_id=$2 ORDER BY category`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.family_id', $1, true)", familyID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, familyID, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.CategoryStat
	for rows.Next() {
		var stat domain.CategoryStat
		var category string
		if err := rows.Scan(&category, &stat.CompletedCount, &stat.RatedCount, &stat.AverageRating); err != nil {
			return nil, err
		}
		stat.Category = domain.Category(category)
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
