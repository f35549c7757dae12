// Package recommend ranks catalog activities against a child's preference
// profile. Everything here is pure and synchronous: callers fetch records,
// this package only scores and orders them.
package recommend

import (
	"time"

	"github.com/waltmayfield/home-child/internal/domain"
)

// Profile is the transient filter object activities are ranked against. Nil
// pointers and nil slices mean "no preference"; a non-nil empty slice is an
// explicit preference for nothing and still participates in merging.
// SearchTerm is session-only and never persisted.
type Profile struct {
	Categories       []domain.Category
	Skills           []domain.Skill
	DifficultyLevel  *domain.Difficulty
	MaxDuration      *int
	MessLevel        *domain.MessLevel
	SupervisionLevel *domain.SupervisionLevel
	MinAge           *int
	MaxAge           *int
	SearchTerm       string
}

// AgeInYears computes the child's age in whole years at the reference time,
// flooring partial years.
func AgeInYears(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}

// BuildDefaultProfile derives the child's default filter profile. Saved
// defaultFilter fields are copied verbatim; the age window comes from the
// saved override when either bound is set, otherwise from the birthday with a
// one-year reach back and a two-year reach forward. Slightly-advanced
// activities are considered more valuable than slightly-regressive ones,
// hence the upward bias.
//
// The birthday must be a valid date; callers validate before invoking.
func BuildDefaultProfile(child domain.Child, now time.Time) Profile {
	age := AgeInYears(child.Birthday, now)

	var profile Profile
	overridden := false

	if df := child.DefaultFilter; df != nil {
		profile.Categories = df.Categories
		profile.Skills = df.Skills
		profile.DifficultyLevel = df.DifficultyLevel
		profile.MaxDuration = df.MaxDuration
		profile.MessLevel = df.MessLevel
		profile.SupervisionLevel = df.SupervisionLevel

		if ov := df.AgeRangeOverride; ov != nil && (ov.MinAge != nil || ov.MaxAge != nil) {
			profile.MinAge = ov.MinAge
			profile.MaxAge = ov.MaxAge
			overridden = true
		}
	}

	if !overridden {
		minAge := age - 1
		if minAge < 0 {
			minAge = 0
		}
		maxAge := age + 2
		profile.MinAge = &minAge
		profile.MaxAge = &maxAge
	}

	return profile
}

// MergeProfiles layers session overrides on top of the child's defaults.
// Every field set in overrides wins, including explicitly empty slices; the
// search term is always taken from overrides because it is never a persisted
// default.
func MergeProfiles(overrides, defaults Profile) Profile {
	merged := defaults

	if overrides.Categories != nil {
		merged.Categories = overrides.Categories
	}
	if overrides.Skills != nil {
		merged.Skills = overrides.Skills
	}
	if overrides.DifficultyLevel != nil {
		merged.DifficultyLevel = overrides.DifficultyLevel
	}
	if overrides.MaxDuration != nil {
		merged.MaxDuration = overrides.MaxDuration
	}
	if overrides.MessLevel != nil {
		merged.MessLevel = overrides.MessLevel
	}
	if overrides.SupervisionLevel != nil {
		merged.SupervisionLevel = overrides.SupervisionLevel
	}
	if overrides.MinAge != nil {
		merged.MinAge = overrides.MinAge
	}
	if overrides.MaxAge != nil {
		merged.MaxAge = overrides.MaxAge
	}
	merged.SearchTerm = overrides.SearchTerm

	return merged
}
