// Package events defines the payloads published through the outbox.
package events

import "time"

// ActivityCreated is emitted when a new catalog activity is accepted.
type ActivityCreated struct {
	ActivityID       string    `json:"activity_id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	DifficultyLevel  string    `json:"difficulty_level,omitempty"`
	EstimatedMinutes int       `json:"estimated_minutes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChildActivityStateChanged tracks lifecycle transitions of a scheduled
// activity. Category and rating ride along so projections can update without
// a catalog lookup.
type ChildActivityStateChanged struct {
	ChildActivityID string    `json:"child_activity_id"`
	FamilyID        string    `json:"family_id"`
	ChildID         string    `json:"child_id"`
	ActivityID      string    `json:"activity_id"`
	Category        string    `json:"category"`
	State           string    `json:"state"`
	Rating          *int      `json:"rating,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
