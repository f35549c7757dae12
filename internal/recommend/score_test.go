package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waltmayfield/home-child/internal/domain"
)

var scoreNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func TestSearchExclusionIsAbsolute(t *testing.T) {
	// Perfect soft-criteria match, but the search term appears nowhere.
	activity := domain.Activity{
		ID:               "a1",
		Title:            "Finger painting",
		Description:      "Paint with washable colors",
		Category:         domain.CategoryArtsCrafts,
		SkillsTargeted:   []domain.Skill{domain.SkillCreativity},
		EstimatedMinutes: 20,
		Tags:             []string{"paint", "indoor"},
	}
	profile := Profile{
		SearchTerm: "volcano",
		Categories: []domain.Category{domain.CategoryArtsCrafts},
		Skills:     []domain.Skill{domain.SkillCreativity},
	}

	_, ok := Score(activity, profile, scoreNow)
	require.False(t, ok)

	ranked := Rank([]domain.Activity{activity}, profile, scoreNow)
	require.Empty(t, ranked)
}

func TestSearchMatchAddsDominantBonus(t *testing.T) {
	matching := domain.Activity{
		ID:    "a1",
		Title: "Baking soda volcano",
	}
	profile := Profile{SearchTerm: "volcano"}

	score, ok := Score(matching, profile, scoreNow)
	require.True(t, ok)
	// 100 search bonus + 5 ratio (no soft criteria applicable).
	require.InDelta(t, 105.0, score, 1e-9)
}

func TestSearchMatchesTagsCaseInsensitively(t *testing.T) {
	activity := domain.Activity{
		ID:          "a1",
		Title:       "Garden dig",
		Description: "Dig for worms",
		Tags:        []string{"OUTDOOR", "messy"},
	}

	_, ok := Score(activity, Profile{SearchTerm: "outdoor"}, scoreNow)
	require.True(t, ok)
}

func TestScoreMonotonicity(t *testing.T) {
	difficulty := domain.DifficultyBeginner
	profile := Profile{
		Categories:      []domain.Category{domain.CategoryArtsCrafts},
		DifficultyLevel: &difficulty,
	}

	base := domain.Activity{
		ID:              "a1",
		Category:        domain.CategoryScienceExperiments,
		DifficultyLevel: domain.DifficultyAdvanced,
	}
	oneMatch := base
	oneMatch.Category = domain.CategoryArtsCrafts
	twoMatches := oneMatch
	twoMatches.DifficultyLevel = domain.DifficultyBeginner

	baseScore, ok := Score(base, profile, scoreNow)
	require.True(t, ok)
	oneScore, ok := Score(oneMatch, profile, scoreNow)
	require.True(t, ok)
	twoScore, ok := Score(twoMatches, profile, scoreNow)
	require.True(t, ok)

	require.Greater(t, oneScore, baseScore)
	require.Greater(t, twoScore, oneScore)
}

func TestEmptyProfileIsStablePassthrough(t *testing.T) {
	activities := []domain.Activity{
		{ID: "a1", Title: "first"},
		{ID: "a2", Title: "second"},
		{ID: "a3", Title: "third"},
	}

	ranked := Rank(activities, Profile{}, scoreNow)

	require.Len(t, ranked, 3)
	for i, activity := range ranked {
		require.Equal(t, activities[i].ID, activity.ID)
	}

	// Every score sits at the zero-criteria baseline.
	score, ok := Score(activities[0], Profile{}, scoreNow)
	require.True(t, ok)
	require.InDelta(t, 5.0, score, 1e-9)
}

func TestDurationPartialCreditBoundaries(t *testing.T) {
	profile := Profile{MaxDuration: intPtr(40)}

	cases := []struct {
		name    string
		minutes int
		want    float64
	}{
		{"at limit scores full bonus", 40, 10 + 5},         // matched 1/1 criteria
		{"at 1.5x limit scores partial", 60, 5 + 0},        // partial credit, ratio 0/1
		{"beyond 1.5x limit scores nothing", 61, 0},        // ratio 0/1
		{"well under limit scores full bonus", 10, 10 + 5}, // matched 1/1
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			activity := domain.Activity{ID: "a1", EstimatedMinutes: tc.minutes}
			score, ok := Score(activity, profile, scoreNow)
			require.True(t, ok)
			require.InDelta(t, tc.want, score, 1e-9)
		})
	}
}

func TestActivityWithoutDurationSkipsDurationCriterion(t *testing.T) {
	profile := Profile{MaxDuration: intPtr(40)}
	activity := domain.Activity{ID: "a1"}

	score, ok := Score(activity, profile, scoreNow)
	require.True(t, ok)
	// No applicable criteria at all, so the full ratio bonus applies.
	require.InDelta(t, 5.0, score, 1e-9)
}

func TestActivityWithoutAgeRangeFailsCriterionWithoutExclusion(t *testing.T) {
	profile := Profile{MinAge: intPtr(3), MaxAge: intPtr(6)}
	activity := domain.Activity{ID: "a1"}

	score, ok := Score(activity, profile, scoreNow)
	require.True(t, ok)
	// Age criterion applicable but unmatched: 0 bonus, 0/1 ratio.
	require.InDelta(t, 0.0, score, 1e-9)
}

func TestAgeOverlapWithSingleBound(t *testing.T) {
	activity := domain.Activity{
		ID:             "a1",
		TargetAgeRange: &domain.AgeRange{MinAge: 8, MaxAge: 12},
	}

	score, ok := Score(activity, Profile{MaxAge: intPtr(6)}, scoreNow)
	require.True(t, ok)
	require.InDelta(t, 0.0, score, 1e-9)

	score, ok = Score(activity, Profile{MinAge: intPtr(9)}, scoreNow)
	require.True(t, ok)
	require.InDelta(t, 15.0+5.0, score, 1e-9)
}

func TestSkillsProportionalCredit(t *testing.T) {
	profile := Profile{
		Skills: []domain.Skill{
			domain.SkillCreativity,
			domain.SkillFineMotor,
			domain.SkillCuriosity,
		},
	}
	activity := domain.Activity{
		ID:             "a1",
		SkillsTargeted: []domain.Skill{domain.SkillCreativity, domain.SkillFineMotor},
	}

	score, ok := Score(activity, profile, scoreNow)
	require.True(t, ok)
	// 15 * 2/3 skills + 5 * 1/1 ratio.
	require.InDelta(t, 10.0+5.0, score, 1e-9)
}

func TestRecencyBoostThresholds(t *testing.T) {
	cases := []struct {
		name      string
		createdAt time.Time
		want      float64
	}{
		{"under a day old", scoreNow.Add(-12 * time.Hour), 30 + 5},
		{"under a week old", scoreNow.Add(-3 * 24 * time.Hour), 10 + 5},
		{"older than a week", scoreNow.Add(-30 * 24 * time.Hour), 0 + 5},
		{"no created timestamp", time.Time{}, 0 + 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			activity := domain.Activity{ID: "a1", CreatedAt: tc.createdAt}
			score, ok := Score(activity, Profile{}, scoreNow)
			require.True(t, ok)
			require.InDelta(t, tc.want, score, 1e-9)
		})
	}
}

func TestRecencyBoostIsOutsideRatioAccounting(t *testing.T) {
	profile := Profile{Categories: []domain.Category{domain.CategoryArtsCrafts}}
	activity := domain.Activity{
		ID:        "a1",
		Category:  domain.CategoryScienceExperiments,
		CreatedAt: scoreNow.Add(-2 * time.Hour),
	}

	score, ok := Score(activity, profile, scoreNow)
	require.True(t, ok)
	// Fresh boost applies even though the only soft criterion missed (0/1).
	require.InDelta(t, 30.0, score, 1e-9)
}

func TestEndToEndRankingExample(t *testing.T) {
	a := domain.Activity{
		ID:               "A",
		Category:         domain.CategoryArtsCrafts,
		SkillsTargeted:   []domain.Skill{domain.SkillCreativity},
		EstimatedMinutes: 30,
		TargetAgeRange:   &domain.AgeRange{MinAge: 3, MaxAge: 6},
	}
	b := domain.Activity{
		ID:               "B",
		Category:         domain.CategoryScienceExperiments,
		SkillsTargeted:   []domain.Skill{domain.SkillProblemSolving},
		EstimatedMinutes: 90,
		TargetAgeRange:   &domain.AgeRange{MinAge: 8, MaxAge: 12},
	}
	profile := Profile{
		Categories:  []domain.Category{domain.CategoryArtsCrafts},
		MaxDuration: intPtr(45),
		MinAge:      intPtr(3),
		MaxAge:      intPtr(6),
	}

	scoreA, ok := Score(a, profile, scoreNow)
	require.True(t, ok)
	// 20 category + 15 age overlap + 10 duration + 5 full ratio.
	require.InDelta(t, 50.0, scoreA, 1e-9)

	scoreB, ok := Score(b, profile, scoreNow)
	require.True(t, ok)
	// Zero matches across all three applicable criteria.
	require.InDelta(t, 0.0, scoreB, 1e-9)

	ranked := Rank([]domain.Activity{b, a}, profile, scoreNow)
	require.Len(t, ranked, 2)
	require.Equal(t, "A", ranked[0].ID)
	require.Equal(t, "B", ranked[1].ID)
}

func TestRankIsStableForTies(t *testing.T) {
	// Same score for all three; input order must survive.
	activities := []domain.Activity{
		{ID: "x", Category: domain.CategoryMusicDance},
		{ID: "y", Category: domain.CategoryMusicDance},
		{ID: "z", Category: domain.CategoryMusicDance},
	}
	profile := Profile{Categories: []domain.Category{domain.CategoryMusicDance}}

	ranked := Rank(activities, profile, scoreNow)
	require.Equal(t, []string{"x", "y", "z"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestSearchBonusIsAdditiveWithSoftCriteria(t *testing.T) {
	activity := domain.Activity{
		ID:       "a1",
		Title:    "Nature scavenger hunt",
		Category: domain.CategoryNatureExploration,
	}
	profile := Profile{
		SearchTerm: "scavenger",
		Categories: []domain.Category{domain.CategoryNatureExploration},
	}

	score, ok := Score(activity, profile, scoreNow)
	require.True(t, ok)
	// 100 search + 20 category + 5 full ratio.
	require.InDelta(t, 125.0, score, 1e-9)
}
