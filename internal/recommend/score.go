package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/waltmayfield/home-child/internal/domain"
)

// Scoring weights. These were tuned empirically against real browsing
// sessions; keep them in sync with the product behavior rather than
// rebalancing them in isolation.
const (
	searchBonus      = 100.0
	categoryBonus    = 20.0
	difficultyBonus  = 15.0
	ageOverlapBonus  = 15.0
	durationBonus    = 10.0
	durationPartial  = 5.0
	durationLeniency = 1.5
	messBonus        = 10.0
	supervisionBonus = 10.0
	skillsBonus      = 15.0
	ratioBonus       = 5.0

	freshBoost  = 30.0 // created within the last day
	recentBoost = 10.0 // created within the last week
)

// Score computes the relevance of one activity against a profile. The second
// result is false when the activity is hard-excluded by the search term; no
// score applies in that case.
//
// A non-empty search term must appear (case-insensitively) in the title,
// description, or a tag. A match adds a bonus that dominates every soft
// criterion, so searched-for activities surface ahead of merely well-matched
// ones. Soft criteria each add a fixed bonus when they match; a missing
// activity field simply fails the criterion without excluding the record.
func Score(activity domain.Activity, profile Profile, now time.Time) (float64, bool) {
	score := 0.0

	if profile.SearchTerm != "" {
		if !matchesSearch(activity, profile.SearchTerm) {
			return 0, false
		}
		score += searchBonus
	}

	totalCriteria := 0
	matched := 0

	if len(profile.Categories) > 0 {
		totalCriteria++
		if containsCategory(profile.Categories, activity.Category) {
			score += categoryBonus
			matched++
		}
	}

	if profile.DifficultyLevel != nil {
		totalCriteria++
		if activity.DifficultyLevel == *profile.DifficultyLevel {
			score += difficultyBonus
			matched++
		}
	}

	if profile.MinAge != nil || profile.MaxAge != nil {
		totalCriteria++
		if activity.TargetAgeRange != nil && agesOverlap(*activity.TargetAgeRange, profile) {
			score += ageOverlapBonus
			matched++
		}
	}

	if profile.MaxDuration != nil && activity.EstimatedMinutes > 0 {
		totalCriteria++
		minutes := float64(activity.EstimatedMinutes)
		limit := float64(*profile.MaxDuration)
		switch {
		case minutes <= limit:
			score += durationBonus
			matched++
		case minutes <= limit*durationLeniency:
			// Partial credit: close enough to show, not a real match.
			score += durationPartial
		}
	}

	if profile.MessLevel != nil {
		totalCriteria++
		if activity.MessLevel == *profile.MessLevel {
			score += messBonus
			matched++
		}
	}

	if profile.SupervisionLevel != nil {
		totalCriteria++
		if activity.SupervisionLevel == *profile.SupervisionLevel {
			score += supervisionBonus
			matched++
		}
	}

	if len(profile.Skills) > 0 {
		totalCriteria++
		hits := 0
		for _, want := range profile.Skills {
			for _, have := range activity.SkillsTargeted {
				if want == have {
					hits++
					break
				}
			}
		}
		if hits > 0 {
			score += skillsBonus * float64(hits) / float64(len(profile.Skills))
			matched++
		}
	}

	score += recencyBoost(activity.CreatedAt, now)

	// Match-ratio tiebreaker. An empty profile counts as a full match: an
	// activity is never penalized because nothing was asked of it.
	if totalCriteria > 0 {
		score += ratioBonus * float64(matched) / float64(totalCriteria)
	} else {
		score += ratioBonus
	}

	return score, true
}

// Rank scores every activity, drops search-excluded ones, and returns the
// remainder ordered by descending relevance. The sort is stable so equal
// scores keep their original relative order.
func Rank(activities []domain.Activity, profile Profile, now time.Time) []domain.Activity {
	type scored struct {
		activity domain.Activity
		score    float64
	}

	kept := make([]scored, 0, len(activities))
	for _, activity := range activities {
		if score, ok := Score(activity, profile, now); ok {
			kept = append(kept, scored{activity: activity, score: score})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	ranked := make([]domain.Activity, len(kept))
	for i, entry := range kept {
		ranked[i] = entry.activity
	}
	return ranked
}

func matchesSearch(activity domain.Activity, term string) bool {
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(activity.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(activity.Description), needle) {
		return true
	}
	for _, tag := range activity.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func containsCategory(categories []domain.Category, category domain.Category) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// agesOverlap tests window overlap against whichever profile bounds are set.
func agesOverlap(target domain.AgeRange, profile Profile) bool {
	if profile.MinAge != nil && target.MaxAge < *profile.MinAge {
		return false
	}
	if profile.MaxAge != nil && target.MinAge > *profile.MaxAge {
		return false
	}
	return true
}

func recencyBoost(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	age := now.Sub(createdAt)
	switch {
	case age < 24*time.Hour:
		return freshBoost
	case age < 7*24*time.Hour:
		return recentBoost
	}
	return 0
}
