package auth

// Known OAuth scopes used by the service.
const (
	// ScopeActivitiesWrite allows curating the shared activity catalog.
	ScopeActivitiesWrite = "activities:write"
	// ScopeActivitiesRead allows browsing the catalog and recommendations.
	ScopeActivitiesRead = "activities:read"
	// ScopeChildrenWrite allows managing child profiles and schedules.
	ScopeChildrenWrite = "children:write"
	// ScopeChildrenRead allows reading child profiles, schedules, and stats.
	ScopeChildrenRead = "children:read"
)
