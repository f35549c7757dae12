package domain

import "time"

// ChildActivityState tracks the lifecycle of a scheduled activity.
type ChildActivityState string

const (
	ChildActivityScheduled  ChildActivityState = "scheduled"
	ChildActivityInProgress ChildActivityState = "in_progress"
	ChildActivityCompleted  ChildActivityState = "completed"
	ChildActivityCanceled   ChildActivityState = "canceled"
)

// Valid reports whether the state is part of the lifecycle.
func (s ChildActivityState) Valid() bool {
	switch s {
	case ChildActivityScheduled, ChildActivityInProgress, ChildActivityCompleted, ChildActivityCanceled:
		return true
	}
	return false
}

// CanTransitionTo encodes the allowed lifecycle edges:
// scheduled -> in_progress | canceled, in_progress -> completed | canceled.
func (s ChildActivityState) CanTransitionTo(next ChildActivityState) bool {
	switch s {
	case ChildActivityScheduled:
		return next == ChildActivityInProgress || next == ChildActivityCanceled
	case ChildActivityInProgress:
		return next == ChildActivityCompleted || next == ChildActivityCanceled
	}
	return false
}

// Feedback captures the parent's rating after completing an activity.
type Feedback struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

// ChildActivity joins a child to a catalog activity with lifecycle state.
type ChildActivity struct {
	ID           string
	FamilyID     string
	ChildID      string
	ActivityID   string
	State        ChildActivityState
	ScheduledFor time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Feedback     *Feedback
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
