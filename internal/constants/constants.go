package constants

import "time"

// Context keys
const (
	ContextKeyIdentity    = "identity"
	ContextKeyUserID      = "user_id"
	ContextKeyRequestID   = "request_id"
	ContextKeyRequestBody = "request_body"
	ContextKeyTask        = "task"
	ContextKeyTeam        = "team"
	ContextKeyTeamMember  = "team_member"
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength   = 8
	MaxPasswordLength   = 72 // bcrypt ignores bytes past 72
	MaxTitleLength      = 255
	MaxTags             = 20
	MaxTagLength        = 50
	MaxNameLength       = 100
	MaxCapturedBodySize = 64 << 10
	MaxAIGeneratedTasks = 20
	MaxAIInputLength    = 8000
)

// Auth
const (
	DefaultBcryptCost      = 12
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	TokenIssuer            = "workforce-api"
)

// Headers
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderRetryAfter = "Retry-After"
)
