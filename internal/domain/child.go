package domain

import "time"

// DefaultFilter is the saved preference document embedded on a Child record.
// It is the only place a preference profile is persisted; session filters are
// derived from it on every request.
type DefaultFilter struct {
	Categories       []Category        `json:"categories,omitempty"`
	Skills           []Skill           `json:"skills,omitempty"`
	DifficultyLevel  *Difficulty       `json:"difficulty_level,omitempty"`
	MaxDuration      *int              `json:"max_duration,omitempty"`
	MessLevel        *MessLevel        `json:"mess_level,omitempty"`
	SupervisionLevel *SupervisionLevel `json:"supervision_level,omitempty"`
	AgeRangeOverride *AgeRangeOverride `json:"age_range_override,omitempty"`
}

// AgeRangeOverride pins the recommendation age window instead of deriving it
// from the child's birthday. Either bound may be set independently.
type AgeRangeOverride struct {
	MinAge *int `json:"min_age,omitempty"`
	MaxAge *int `json:"max_age,omitempty"`
}

// Child is a family-scoped profile records are ranked against.
type Child struct {
	ID            string
	FamilyID      string
	Name          string
	Sex           Sex
	Birthday      time.Time
	Interests     []string
	DefaultFilter *DefaultFilter
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
