// Package domain defines the business logic for the recommendation service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActivityNotFound is returned when a catalog activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrChildNotFound is returned when a child cannot be located in the family.
	ErrChildNotFound = errors.New("child not found")
	// ErrChildActivityNotFound is returned when a scheduled entry cannot be located.
	ErrChildActivityNotFound = errors.New("child activity not found")
	// ErrInvalidTransition rejects lifecycle edges the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid child activity state transition")
	// ErrFeedbackRequired rejects completion without a rating and comments.
	ErrFeedbackRequired = errors.New("completion requires feedback with rating 1-5 and comments")
	// ErrInvalidAgeRange rejects activities whose target age window is inverted.
	ErrInvalidAgeRange = errors.New("target age range must satisfy min_age <= max_age")
)

// Cursor models the pagination token for catalog listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ActivityRepository captures catalog persistence operations.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	Get(ctx context.Context, activityID string) (*Activity, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
}

// ChildRepository captures family-scoped child persistence.
type ChildRepository interface {
	Create(ctx context.Context, child Child) error
	Get(ctx context.Context, familyID, childID string) (*Child, error)
	ListByFamily(ctx context.Context, familyID string) ([]Child, error)
	Update(ctx context.Context, child Child) error
}

// ChildActivityRepository captures the scheduled-activity join records.
type ChildActivityRepository interface {
	Create(ctx context.Context, entry ChildActivity) error
	Get(ctx context.Context, familyID, entryID string) (*ChildActivity, error)
	Update(ctx context.Context, entry ChildActivity) error
	ListByChild(ctx context.Context, familyID, childID string) ([]ChildActivity, error)
}

// CategoryStat is one row of the per-child completion projection. RatedCount
// tracks completions that carried a rating; unrated completions only bump
// CompletedCount.
type CategoryStat struct {
	Category       Category
	CompletedCount int
	RatedCount     int
	AverageRating  float64
}

// StatsRepository reads the category projection maintained by the consumer.
type StatsRepository interface {
	CategoryStats(ctx context.Context, familyID, childID string) ([]CategoryStat, error)
}

// Service orchestrates catalog, child, and scheduling workflows.
type Service struct {
	activities      ActivityRepository
	children        ChildRepository
	childActivities ChildActivityRepository
	stats           StatsRepository
	now             func() time.Time
}

// NewService constructs a Service.
func NewService(activities ActivityRepository, children ChildRepository, childActivities ChildActivityRepository, stats StatsRepository) *Service {
	return &Service{
		activities:      activities,
		children:        children,
		childActivities: childActivities,
		stats:           stats,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// CreateActivityInput captures a new catalog entry from the API layer or the
// bulk uploader.
type CreateActivityInput struct {
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
}

// CreateActivity persists a new catalog activity and records its outbox event.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	if input.TargetAgeRange != nil && input.TargetAgeRange.MinAge > input.TargetAgeRange.MaxAge {
		return nil, ErrInvalidAgeRange
	}

	now := s.now()
	activity := Activity{
		ID:               uuid.NewString(),
		Title:            input.Title,
		Description:      input.Description,
		Category:         input.Category,
		SkillsTargeted:   input.SkillsTargeted,
		DifficultyLevel:  input.DifficultyLevel,
		EstimatedMinutes: input.EstimatedMinutes,
		TargetAgeRange:   input.TargetAgeRange,
		MessLevel:        input.MessLevel,
		SupervisionLevel: input.SupervisionLevel,
		Tags:             input.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivity fetches a catalog entry by ID.
func (s *Service) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	activity, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListActivities pages through the catalog newest-first.
func (s *Service) ListActivities(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.activities.List(ctx, cursor, limit)
}

// CreateChildInput captures a new child profile.
type CreateChildInput struct {
	FamilyID      string
	Name          string
	Sex           Sex
	Birthday      time.Time
	Interests     []string
	DefaultFilter *DefaultFilter
}

// CreateChild persists a child profile for the family.
func (s *Service) CreateChild(ctx context.Context, input CreateChildInput) (*Child, error) {
	now := s.now()
	child := Child{
		ID:            uuid.NewString(),
		FamilyID:      input.FamilyID,
		Name:          input.Name,
		Sex:           input.Sex,
		Birthday:      input.Birthday,
		Interests:     input.Interests,
		DefaultFilter: input.DefaultFilter,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.children.Create(ctx, child); err != nil {
		return nil, err
	}
	return &child, nil
}

// GetChild fetches a child within the family scope.
func (s *Service) GetChild(ctx context.Context, familyID, childID string) (*Child, error) {
	child, err := s.children.Get(ctx, familyID, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// ListChildren returns every child in the family.
func (s *Service) ListChildren(ctx context.Context, familyID string) ([]Child, error) {
	return s.children.ListByFamily(ctx, familyID)
}

// UpdateChildInput carries the mutable child fields. DefaultFilter is the
// explicit "save preferences" write; passing nil clears the saved filter.
type UpdateChildInput struct {
	Name          string
	Interests     []string
	DefaultFilter *DefaultFilter
}

// UpdateChild applies profile edits, including the saved default filter.
func (s *Service) UpdateChild(ctx context.Context, familyID, childID string, input UpdateChildInput) (*Child, error) {
	child, err := s.GetChild(ctx, familyID, childID)
	if err != nil {
		return nil, err
	}

	child.Name = input.Name
	child.Interests = input.Interests
	child.DefaultFilter = input.DefaultFilter
	child.UpdatedAt = s.now()

	if err := s.children.Update(ctx, *child); err != nil {
		return nil, err
	}
	return child, nil
}

// ScheduleActivityInput links a child to a catalog activity.
type ScheduleActivityInput struct {
	FamilyID     string
	ChildID      string
	ActivityID   string
	ScheduledFor time.Time
}

// ScheduleActivity creates the join record in the scheduled state.
func (s *Service) ScheduleActivity(ctx context.Context, input ScheduleActivityInput) (*ChildActivity, error) {
	if _, err := s.GetChild(ctx, input.FamilyID, input.ChildID); err != nil {
		return nil, err
	}
	if _, err := s.GetActivity(ctx, input.ActivityID); err != nil {
		return nil, err
	}

	now := s.now()
	scheduledFor := input.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = now
	}

	entry := ChildActivity{
		ID:           uuid.NewString(),
		FamilyID:     input.FamilyID,
		ChildID:      input.ChildID,
		ActivityID:   input.ActivityID,
		State:        ChildActivityScheduled,
		ScheduledFor: scheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.childActivities.Create(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// TransitionChildActivity advances the lifecycle state machine. Completion
// requires feedback with a 1-5 rating and non-empty comments.
func (s *Service) TransitionChildActivity(ctx context.Context, familyID, entryID string, next ChildActivityState, feedback *Feedback) (*ChildActivity, error) {
	entry, err := s.childActivities.Get(ctx, familyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrChildActivityNotFound
	}

	if !entry.State.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	switch next {
	case ChildActivityInProgress:
		entry.StartedAt = &now
	case ChildActivityCompleted:
		if feedback == nil || feedback.Rating < 1 || feedback.Rating > 5 || feedback.Comments == "" {
			return nil, ErrFeedbackRequired
		}
		entry.CompletedAt = &now
		entry.Feedback = feedback
	}

	entry.State = next
	entry.UpdatedAt = now

	if err := s.childActivities.Update(ctx, *entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListChildActivities returns the child's schedule history.
func (s *Service) ListChildActivities(ctx context.Context, familyID, childID string) ([]ChildActivity, error) {
	return s.childActivities.ListByChild(ctx, familyID, childID)
}

// ChildStats summarises completed activities for a child.
type ChildStats struct {
	Categories     []CategoryStat
	AverageRating  float64
	TotalCompleted int
}

// GetChildStats reads the category projection and derives the favorite
// categories and overall average rating.
func (s *Service) GetChildStats(ctx context.Context, familyID, childID string) (*ChildStats, error) {
	if _, err := s.GetChild(ctx, familyID, childID); err != nil {
		return nil, err
	}

	rows, err := s.stats.CategoryStats(ctx, familyID, childID)
	if err != nil {
		return nil, err
	}

	stats := &ChildStats{Categories: rows}
	ratingSum := 0.0
	rated := 0
	for _, row := range rows {
		stats.TotalCompleted += row.CompletedCount
		ratingSum += row.AverageRating * float64(row.RatedCount)
		rated += row.RatedCount
	}
	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	return stats, nil
}
