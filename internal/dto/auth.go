package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email     string          `json:"email" binding:"required,email,max=255"`
	Password  string          `json:"password" binding:"required,min=8,max=72"`
	FirstName string          `json:"firstName" binding:"required,notblank,max=100"`
	LastName  string          `json:"lastName" binding:"required,notblank,max=100"`
	Role      models.UserRole `json:"role" binding:"omitempty,userrole"`
}

func (r RegisterRequest) ToInput() services.RegisterInput {
	return services.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
	}
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest is the optional body of POST /api/auth/logout. Without a
// token every session of the caller is ended.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateUserRequest is the body of PATCH /api/users/:id
type UpdateUserRequest struct {
	Role   *models.UserRole   `json:"role" binding:"omitempty,userrole"`
	Status *models.UserStatus `json:"status" binding:"omitempty,userstatus"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uint64            `json:"id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Name        string            `json:"name"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	LastLoginAt *time.Time        `json:"lastLoginAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TokensResponse carries a token pair
type TokensResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	TokenType        string    `json:"tokenType"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

// RefreshResponse is returned by refresh
type RefreshResponse struct {
	Tokens TokensResponse `json:"tokens"`
}

// MeResponse is the caller's profile
type MeResponse struct {
	User                UserResponse             `json:"user"`
	Teams               []TeamMembershipResponse `json:"teams"`
	UnreadNotifications int64                    `json:"unreadNotifications"`
}

// ToUserResponse converts a User model
func ToUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Name:        u.Name(),
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ToTokensResponse(p *auth.Pair) TokensResponse {
	return TokensResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        "Bearer",
		ExpiresAt:        p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func ToAuthResponse(res *services.AuthResult) AuthResponse {
	return AuthResponse{
		User:   ToUserResponse(*res.User),
		Tokens: ToTokensResponse(res.Tokens),
	}
}

func ToMeResponse(p *services.Profile) MeResponse {
	teams := make([]TeamMembershipResponse, len(p.Memberships))
	for i, m := range p.Memberships {
		teams[i] = ToTeamMembershipResponse(m)
	}
	return MeResponse{
		User:                ToUserResponse(*p.User),
		Teams:               teams,
		UnreadNotifications: p.UnreadNotifications,
	}
}
