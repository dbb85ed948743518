package auth

// Known OAuth scopes used by the dashboard API.
const (
	ScopeTrainingWrite = "training:write"
	ScopeTrainingRead  = "training:read"
)
