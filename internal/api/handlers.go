// Package api exposes HTTP handlers for the recommendation service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waltmayfield/home-child/internal/auth"
	"github.com/waltmayfield/home-child/internal/domain"
	"github.com/waltmayfield/home-child/internal/persistence"
	"github.com/waltmayfield/home-child/internal/recommend"
	"github.com/waltmayfield/home-child/internal/suggest"
)

// Suggester generates starter preferences for onboarding.
type Suggester interface {
	Generate(ctx context.Context, input suggest.Input) (*suggest.Suggestion, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service     *domain.Service
	recommender *recommend.Recommender
	suggester   Suggester
}

// NewHandler builds a Handler. The suggester may be nil when onboarding
// suggestions are disabled.
func NewHandler(service *domain.Service, suggester Suggester) *Handler {
	return &Handler{
		service:     service,
		recommender: recommend.NewRecommender(service),
		suggester:   suggester,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/children", h.children)
	mux.HandleFunc("/v1/children/", h.childSubroutes)
	mux.HandleFunc("/v1/child-activities/", h.childActivityByID)
	mux.HandleFunc("/v1/suggestions", h.suggestions)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) children(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createChild(w, r)
	case http.MethodGet:
		h.listChildren(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// childSubroutes dispatches /v1/children/{id} and its nested resources.
func (h *Handler) childSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/children/")
	parts := strings.SplitN(rest, "/", 2)
	childID := parts[0]
	if childID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing child id")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getChild(w, r, childID)
		case http.MethodPut:
			h.updateChild(w, r, childID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		}
		return
	}

	switch parts[1] {
	case "recommendations":
		h.recommendations(w, r, childID)
	case "schedule":
		h.scheduleActivity(w, r, childID)
	case "activities":
		h.listChildActivities(w, r, childID)
	case "stats":
		h.childStats(w, r, childID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) childActivityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/child-activities/")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" || len(parts) != 2 || parts[1] != "transition" {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}
	h.transitionChildActivity(w, r, parts[0])
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeActivitiesWrite); !ok {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAgeRange) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}

	activity, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursorToken := r.URL.Query().Get("cursor")
	cursor, err := persistence.DecodeCursor(cursorToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}

	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) createChild(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	var req CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	child, err := h.service.CreateChild(r.Context(), domain.CreateChildInput{
		FamilyID:      claims.FamilyID,
		Name:          req.Name,
		Sex:           req.Sex,
		Birthday:      req.Birthday,
		Interests:     req.Interests,
		DefaultFilter: req.DefaultFilter,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toChildView(*child))
}

func (h *Handler) listChildren(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeChildrenRead, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	children, err := h.service.ListChildren(r.Context(), claims.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ChildView, 0, len(children))
	for _, child := range children {
		items = append(items, toChildView(child))
	}
	writeJSON(w, http.StatusOK, ListChildrenResponse{Items: items})
}

func (h *Handler) getChild(w http.ResponseWriter, r *http.Request, childID string) {
	claims, ok := requireScope(w, r, auth.ScopeChildrenRead, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	child, err := h.service.GetChild(r.Context(), claims.FamilyID, childID)
	if err != nil {
		writeChildError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildView(*child))
}

func (h *Handler) updateChild(w http.ResponseWriter, r *http.Request, childID string) {
	claims, ok := requireScope(w, r, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	var req UpdateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	child, err := h.service.UpdateChild(r.Context(), claims.FamilyID, childID, domain.UpdateChildInput{
		Name:          req.Name,
		Interests:     req.Interests,
		DefaultFilter: req.DefaultFilter,
	})
	if err != nil {
		writeChildError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildView(*child))
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request, childID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeChildrenRead, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	overrides, err := parseProfileOverrides(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activities, err := h.recommender.ForChild(r.Context(), claims.FamilyID, childID, overrides)
	if err != nil {
		writeChildError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, RecommendationsResponse{Items: items})
}

func (h *Handler) scheduleActivity(w http.ResponseWriter, r *http.Request, childID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	var req ScheduleActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.ActivityID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "activity_id is required")
		return
	}

	entry, err := h.service.ScheduleActivity(r.Context(), domain.ScheduleActivityInput{
		FamilyID:     claims.FamilyID,
		ChildID:      childID,
		ActivityID:   req.ActivityID,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		if errors.Is(err, domain.ErrChildNotFound) || errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toChildActivityView(*entry))
}

func (h *Handler) listChildActivities(w http.ResponseWriter, r *http.Request, childID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeChildrenRead, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	entries, err := h.service.ListChildActivities(r.Context(), claims.FamilyID, childID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ChildActivityView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toChildActivityView(entry))
	}
	writeJSON(w, http.StatusOK, ListChildActivitiesResponse{Items: items})
}

func (h *Handler) childStats(w http.ResponseWriter, r *http.Request, childID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeChildrenRead, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	stats, err := h.service.GetChildStats(r.Context(), claims.FamilyID, childID)
	if err != nil {
		writeChildError(w, err)
		return
	}

	resp := ChildStatsResponse{
		TotalCompleted: stats.TotalCompleted,
		AverageRating:  stats.AverageRating,
		Categories:     make([]CategoryStatView, 0, len(stats.Categories)),
	}
	for _, row := range stats.Categories {
		resp.Categories = append(resp.Categories, CategoryStatView{
			Category:       string(row.Category),
			CompletedCount: row.CompletedCount,
			RatedCount:     row.RatedCount,
			AverageRating:  row.AverageRating,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) transitionChildActivity(w http.ResponseWriter, r *http.Request, entryID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeChildrenWrite)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	next := domain.ChildActivityState(req.State)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown state")
		return
	}

	var feedback *domain.Feedback
	if req.Feedback != nil {
		feedback = &domain.Feedback{Rating: req.Feedback.Rating, Comments: req.Feedback.Comments}
	}

	entry, err := h.service.TransitionChildActivity(r.Context(), claims.FamilyID, entryID, next, feedback)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChildActivityNotFound):
			writeError(w, http.StatusNotFound, "not_found", "child activity not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "invalid_transition", err.Error())
		case errors.Is(err, domain.ErrFeedbackRequired):
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toChildActivityView(*entry))
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeChildrenWrite); !ok {
		return
	}
	if h.suggester == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "suggestions are not configured")
		return
	}

	var req SuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Age < 0 || req.Age > 18 {
		writeError(w, http.StatusBadRequest, "validation_failed", "age must be between 0 and 18")
		return
	}
	if !req.Sex.Valid() {
		writeError(w, http.StatusBadRequest, "validation_failed", "sex must be male or female")
		return
	}

	suggestion, err := h.suggester.Generate(r.Context(), suggest.Input{
		Age:   req.Age,
		Sex:   req.Sex,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuggestionResponse{
		DefaultFilter: suggestion.DefaultFilter,
		Interests:     suggestion.Interests,
	})
}

// requireScope extracts claims and checks that at least one scope matches.
func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func writeChildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrChildNotFound):
		writeError(w, http.StatusNotFound, "not_found", "child not found")
	case errors.Is(err, domain.ErrChildActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "child activity not found")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// parseProfileOverrides maps recommendation query parameters onto a session
// profile. Absent parameters stay nil so saved defaults survive the merge;
// an explicitly empty categories or skills parameter clears the default.
func parseProfileOverrides(query url.Values) (recommend.Profile, error) {
	var profile recommend.Profile

	if _, present := query["categories"]; present {
		raw := splitCSV(query.Get("categories"))
		categories := make([]domain.Category, 0, len(raw))
		for _, value := range raw {
			category := domain.Category(value)
			if !category.Valid() {
				return profile, errors.New("unknown category: " + value)
			}
			categories = append(categories, category)
		}
		profile.Categories = categories
	}

	if _, present := query["skills"]; present {
		raw := splitCSV(query.Get("skills"))
		skills := make([]domain.Skill, 0, len(raw))
		for _, value := range raw {
			skill := domain.Skill(value)
			if !skill.Valid() {
				return profile, errors.New("unknown skill: " + value)
			}
			skills = append(skills, skill)
		}
		profile.Skills = skills
	}

	if raw := query.Get("difficulty_level"); raw != "" {
		difficulty := domain.Difficulty(raw)
		if !difficulty.Valid() {
			return profile, errors.New("unknown difficulty_level: " + raw)
		}
		profile.DifficultyLevel = &difficulty
	}

	if raw := query.Get("max_duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return profile, errors.New("max_duration must be a positive integer")
		}
		profile.MaxDuration = &parsed
	}

	if raw := query.Get("mess_level"); raw != "" {
		mess := domain.MessLevel(raw)
		if !mess.Valid() {
			return profile, errors.New("unknown mess_level: " + raw)
		}
		profile.MessLevel = &mess
	}

	if raw := query.Get("supervision_level"); raw != "" {
		supervision := domain.SupervisionLevel(raw)
		if !supervision.Valid() {
			return profile, errors.New("unknown supervision_level: " + raw)
		}
		profile.SupervisionLevel = &supervision
	}

	if raw := query.Get("min_age"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return profile, errors.New("min_age must be a non-negative integer")
		}
		profile.MinAge = &parsed
	}

	if raw := query.Get("max_age"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return profile, errors.New("max_age must be a non-negative integer")
		}
		profile.MaxAge = &parsed
	}

	profile.SearchTerm = query.Get("search")

	return profile, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         string           `json:"category"`
	SkillsTargeted   []string         `json:"skills_targeted"`
	DifficultyLevel  string           `json:"difficulty_level"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	TargetAgeRange   *domain.AgeRange `json:"target_age_range"`
	MessLevel        string           `json:"mess_level"`
	SupervisionLevel string           `json:"supervision_level"`
	Tags             []string         `json:"tags"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if !domain.Category(r.Category).Valid() {
		return errors.New("category is required and must be a known category")
	}
	for _, skill := range r.SkillsTargeted {
		if !domain.Skill(skill).Valid() {
			return errors.New("unknown skill: " + skill)
		}
	}
	if r.DifficultyLevel != "" && !domain.Difficulty(r.DifficultyLevel).Valid() {
		return errors.New("unknown difficulty_level")
	}
	if r.EstimatedMinutes < 0 {
		return errors.New("estimated_minutes must be >= 0")
	}
	if r.MessLevel != "" && !domain.MessLevel(r.MessLevel).Valid() {
		return errors.New("unknown mess_level")
	}
	if r.SupervisionLevel != "" && !domain.SupervisionLevel(r.SupervisionLevel).Valid() {
		return errors.New("unknown supervision_level")
	}
	return nil
}

func (r CreateActivityRequest) toInput() domain.CreateActivityInput {
	skills := make([]domain.Skill, 0, len(r.SkillsTargeted))
	for _, skill := range r.SkillsTargeted {
		skills = append(skills, domain.Skill(skill))
	}
	return domain.CreateActivityInput{
		Title:            r.Title,
		Description:      r.Description,
		Category:         domain.Category(r.Category),
		SkillsTargeted:   skills,
		DifficultyLevel:  domain.Difficulty(r.DifficultyLevel),
		EstimatedMinutes: r.EstimatedMinutes,
		TargetAgeRange:   r.TargetAgeRange,
		MessLevel:        domain.MessLevel(r.MessLevel),
		SupervisionLevel: domain.SupervisionLevel(r.SupervisionLevel),
		Tags:             r.Tags,
	}
}

// CreateChildRequest is the payload for POST /v1/children.
type CreateChildRequest struct {
	Name          string                `json:"name"`
	Sex           domain.Sex            `json:"sex"`
	Birthday      time.Time             `json:"birthday"`
	Interests     []string              `json:"interests"`
	DefaultFilter *domain.DefaultFilter `json:"default_filter"`
}

// Validate ensures request correctness.
func (r CreateChildRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !r.Sex.Valid() {
		return errors.New("sex must be male or female")
	}
	if r.Birthday.IsZero() {
		return errors.New("birthday is required")
	}
	return validateFilter(r.DefaultFilter)
}

// UpdateChildRequest is the payload for PUT /v1/children/{id}.
type UpdateChildRequest struct {
	Name          string                `json:"name"`
	Interests     []string              `json:"interests"`
	DefaultFilter *domain.DefaultFilter `json:"default_filter"`
}

// Validate ensures request correctness.
func (r UpdateChildRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return validateFilter(r.DefaultFilter)
}

func validateFilter(filter *domain.DefaultFilter) error {
	if filter == nil {
		return nil
	}
	for _, category := range filter.Categories {
		if !category.Valid() {
			return errors.New("unknown category in default_filter: " + string(category))
		}
	}
	for _, skill := range filter.Skills {
		if !skill.Valid() {
			return errors.New("unknown skill in default_filter: " + string(skill))
		}
	}
	if filter.DifficultyLevel != nil && !filter.DifficultyLevel.Valid() {
		return errors.New("unknown difficulty_level in default_filter")
	}
	if filter.MaxDuration != nil && *filter.MaxDuration <= 0 {
		return errors.New("max_duration in default_filter must be > 0")
	}
	if filter.MessLevel != nil && !filter.MessLevel.Valid() {
		return errors.New("unknown mess_level in default_filter")
	}
	if filter.SupervisionLevel != nil && !filter.SupervisionLevel.Valid() {
		return errors.New("unknown supervision_level in default_filter")
	}
	if ov := filter.AgeRangeOverride; ov != nil && ov.MinAge != nil && ov.MaxAge != nil && *ov.MinAge > *ov.MaxAge {
		return errors.New("age_range_override must satisfy min_age <= max_age")
	}
	return nil
}

// ScheduleActivityRequest is the payload for POST /v1/children/{id}/schedule.
type ScheduleActivityRequest struct {
	ActivityID   string    `json:"activity_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// TransitionRequest is the payload for POST /v1/child-activities/{id}/transition.
type TransitionRequest struct {
	State    string           `json:"state"`
	Feedback *FeedbackPayload `json:"feedback,omitempty"`
}

// FeedbackPayload carries the completion rating.
type FeedbackPayload struct {
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

// SuggestionRequest is the payload for POST /v1/suggestions.
type SuggestionRequest struct {
	Age   int        `json:"age"`
	Sex   domain.Sex `json:"sex"`
	Notes string     `json:"notes"`
}

// SuggestionResponse returns the generated starter profile.
type SuggestionResponse struct {
	DefaultFilter domain.DefaultFilter `json:"default_filter"`
	Interests     []string             `json:"interests"`
}

// ActivityView exposes full details about a catalog activity.
type ActivityView struct {
	ActivityID       string           `json:"activity_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Category         string           `json:"category"`
	SkillsTargeted   []string         `json:"skills_targeted,omitempty"`
	DifficultyLevel  string           `json:"difficulty_level,omitempty"`
	EstimatedMinutes int              `json:"estimated_minutes,omitempty"`
	TargetAgeRange   *domain.AgeRange `json:"target_age_range,omitempty"`
	MessLevel        string           `json:"mess_level,omitempty"`
	SupervisionLevel string           `json:"supervision_level,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ListActivitiesResponse packages catalog list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// RecommendationsResponse packages ranked results, best first.
type RecommendationsResponse struct {
	Items []ActivityView `json:"items"`
}

// ChildView exposes a child profile.
type ChildView struct {
	ChildID       string                `json:"child_id"`
	FamilyID      string                `json:"family_id"`
	Name          string                `json:"name"`
	Sex           string                `json:"sex"`
	Birthday      time.Time             `json:"birthday"`
	Interests     []string              `json:"interests,omitempty"`
	DefaultFilter *domain.DefaultFilter `json:"default_filter,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ListChildrenResponse packages the family's children.
type ListChildrenResponse struct {
	Items []ChildView `json:"items"`
}

// ChildActivityView exposes a scheduled activity.
type ChildActivityView struct {
	ChildActivityID string           `json:"child_activity_id"`
	ChildID         string           `json:"child_id"`
	ActivityID      string           `json:"activity_id"`
	State           string           `json:"state"`
	ScheduledFor    time.Time        `json:"scheduled_for"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	Feedback        *FeedbackPayload `json:"feedback,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ListChildActivitiesResponse packages schedule history.
type ListChildActivitiesResponse struct {
	Items []ChildActivityView `json:"items"`
}

// CategoryStatView is one category row of the stats response.
type CategoryStatView struct {
	Category       string  `json:"category"`
	CompletedCount int     `json:"completed_count"`
	RatedCount     int     `json:"rated_count"`
	AverageRating  float64 `json:"average_rating"`
}

// ChildStatsResponse summarises completed activities for a child.
type ChildStatsResponse struct {
	TotalCompleted int                `json:"total_completed"`
	AverageRating  float64            `json:"average_rating"`
	Categories     []CategoryStatView `json:"categories"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(activity domain.Activity) ActivityView {
	skills := make([]string, 0, len(activity.SkillsTargeted))
	for _, skill := range activity.SkillsTargeted {
		skills = append(skills, string(skill))
	}
	return ActivityView{
		ActivityID:       activity.ID,
		Title:            activity.Title,
		Description:      activity.Description,
		Category:         string(activity.Category),
		SkillsTargeted:   skills,
		DifficultyLevel:  string(activity.DifficultyLevel),
		EstimatedMinutes: activity.EstimatedMinutes,
		TargetAgeRange:   activity.TargetAgeRange,
		MessLevel:        string(activity.MessLevel),
		SupervisionLevel: string(activity.SupervisionLevel),
		Tags:             activity.Tags,
		CreatedAt:        activity.CreatedAt,
		UpdatedAt:        activity.UpdatedAt,
	}
}

func toChildView(child domain.Child) ChildView {
	return ChildView{
		ChildID:       child.ID,
		FamilyID:      child.FamilyID,
		Name:          child.Name,
		Sex:           string(child.Sex),
		Birthday:      child.Birthday,
		Interests:     child.Interests,
		DefaultFilter: child.DefaultFilter,
		CreatedAt:     child.CreatedAt,
		UpdatedAt:     child.UpdatedAt,
	}
}

func toChildActivityView(entry domain.ChildActivity) ChildActivityView {
	view := ChildActivityView{
		ChildActivityID: entry.ID,
		ChildID:         entry.ChildID,
		ActivityID:      entry.ActivityID,
		State:           string(entry.State),
		ScheduledFor:    entry.ScheduledFor,
		StartedAt:       entry.StartedAt,
		CompletedAt:     entry.CompletedAt,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
	if entry.Feedback != nil {
		view.Feedback = &FeedbackPayload{Rating: entry.Feedback.Rating, Comments: entry.Feedback.Comments}
	}
	return view
}
