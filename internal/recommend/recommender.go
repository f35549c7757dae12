package recommend

import (
	"context"
	"time"

	"github.com/waltmayfield/home-child/internal/domain"
)

// catalogFetchLimit caps how many catalog activities are pulled into memory
// for a single ranking pass.
const catalogFetchLimit = 100

// Source supplies the child and catalog records a ranking pass needs.
// *domain.Service satisfies it.
type Source interface {
	GetChild(ctx context.Context, familyID, childID string) (*domain.Child, error)
	ListActivities(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error)
}

// Recommender ranks the catalog for one child.
type Recommender struct {
	source Source
	now    func() time.Time
}

// NewRecommender constructs a Recommender.
func NewRecommender(source Source) *Recommender {
	return &Recommender{
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ForChild ranks the catalog against the child's profile. Session overrides
// from the request are merged over the child's saved defaults before ranking;
// the returned slice is ordered by descending relevance with search-term
// misses removed.
func (r *Recommender) ForChild(ctx context.Context, familyID, childID string, overrides Profile) ([]domain.Activity, error) {
	child, err := r.source.GetChild(ctx, familyID, childID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	profile := MergeProfiles(overrides, BuildDefaultProfile(*child, now))

	activities, _, err := r.source.ListActivities(ctx, nil, catalogFetchLimit)
	if err != nil {
		return nil, err
	}

	return Rank(activities, profile, now), nil
}
