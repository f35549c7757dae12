package domain

import "time"

// AgeRange bounds the ages an activity is designed for. MinAge <= MaxAge.
type AgeRange struct {
	MinAge int `json:"min_age"`
	MaxAge int `json:"max_age"`
}

// Activity is a catalog entry shared by every family.
type Activity struct {
	ID               string
	Title            string
	Description      string
	Category         Category
	SkillsTargeted   []Skill
	DifficultyLevel  Difficulty
	EstimatedMinutes int
	TargetAgeRange   *AgeRange
	MessLevel        MessLevel
	SupervisionLevel SupervisionLevel
	Tags             []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
