package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waltmayfield/home-child/internal/domain"
)

// stubSource serves one family's child plus a fixed catalog.
type stubSource struct {
	child      domain.Child
	activities []domain.Activity
	listErr    error
}

func (s *stubSource) GetChild(ctx context.Context, familyID, childID string) (*domain.Child, error) {
	if familyID != s.child.FamilyID || childID != s.child.ID {
		return nil, domain.ErrChildNotFound
	}
	child := s.child
	return &child, nil
}

func (s *stubSource) ListActivities(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	if s.listErr != nil {
		return nil, nil, s.listErr
	}
	return s.activities, nil, nil
}

func newTestRecommender(source *stubSource) *Recommender {
	r := NewRecommender(source)
	r.now = func() time.Time { return scoreNow }
	return r
}

func TestForChildMergesOverridesOverSavedDefaults(t *testing.T) {
	maxDuration := 45
	source := &stubSource{
		child: domain.Child{
			ID:       "child-1",
			FamilyID: "fam-1",
			Name:     "Maya",
			Birthday: time.Date(2021, time.March, 10, 0, 0, 0, 0, time.UTC), // age 5
			DefaultFilter: &domain.DefaultFilter{
				Categories:  []domain.Category{domain.CategoryArtsCrafts},
				MaxDuration: &maxDuration,
			},
		},
		activities: []domain.Activity{
			{
				ID:               "act-paint",
				Title:            "Painting",
				Description:      "Watercolors",
				Category:         domain.CategoryArtsCrafts,
				EstimatedMinutes: 30,
				TargetAgeRange:   &domain.AgeRange{MinAge: 4, MaxAge: 7},
			},
			{
				ID:               "act-chem",
				Title:            "Chemistry set",
				Description:      "Advanced experiments",
				Category:         domain.CategoryScienceExperiments,
				EstimatedMinutes: 90,
				TargetAgeRange:   &domain.AgeRange{MinAge: 9, MaxAge: 12},
			},
		},
	}
	rec := newTestRecommender(source)
	ctx := context.Background()

	ranked, err := rec.ForChild(ctx, "fam-1", "child-1", Profile{})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "Painting", ranked[0].Title)

	// A session override flips the preferred category.
	ranked, err = rec.ForChild(ctx, "fam-1", "child-1", Profile{
		Categories: []domain.Category{domain.CategoryScienceExperiments},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "Chemistry set", ranked[0].Title)

	// A search term hard-excludes everything that does not mention it.
	ranked, err = rec.ForChild(ctx, "fam-1", "child-1", Profile{SearchTerm: "paint"})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.Equal(t, "Painting", ranked[0].Title)
}

func TestForChildPropagatesUnknownChild(t *testing.T) {
	source := &stubSource{
		child: domain.Child{ID: "child-1", FamilyID: "fam-1", Birthday: time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}
	rec := newTestRecommender(source)

	_, err := rec.ForChild(context.Background(), "fam-2", "child-1", Profile{})
	require.ErrorIs(t, err, domain.ErrChildNotFound)

	_, err = rec.ForChild(context.Background(), "fam-1", "child-9", Profile{})
	require.ErrorIs(t, err, domain.ErrChildNotFound)
}
