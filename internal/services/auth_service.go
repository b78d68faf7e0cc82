package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/auth"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/logger"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
)

var (
	ErrEmailTaken         = apierrors.NewConflictError("Email already registered")
	ErrInvalidCredentials = apierrors.NewAuthError(apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	ErrAccountInactive    = apierrors.NewAuthError(apierrors.ErrCodeAccountInactive, "Account is not active")
	ErrTokenRevoked       = apierrors.NewAuthError(apierrors.ErrCodeTokenRevoked, "Refresh token has been revoked")
	ErrUserNotFound       = apierrors.NewNotFoundError("User not found")
	ErrSelfModification   = apierrors.NewForbiddenError("You cannot change your own role or status")
	ErrForeignToken       = apierrors.NewForbiddenError("Refresh token belongs to another user")
)

// errAlreadyRotated marks a refresh token that lost a rotation race.
var errAlreadyRotated = errors.New("refresh token already rotated")

// AuthService handles authentication related business logic.
type AuthService struct {
	store  *repository.Store
	tokens *auth.TokenManager
	hasher *auth.Hasher
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, tokens *auth.TokenManager, hasher *auth.Hasher) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		hasher: hasher,
		now:    time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.UserRole
}

// AuthResult is a user together with a freshly issued token pair.
type AuthResult struct {
	User   *models.User
	Tokens *auth.Pair
}

// Register creates an active user and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)

	if _, err := s.store.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		Status:       models.UserStatusActive,
	}

	var pair *auth.Pair
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}

		pair, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Login verifies credentials and issues tokens. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	now := s.now().UTC()
	var pair *auth.Pair
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
			return err
		}
		pair, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction that persists its replacement; presenting
// it again revokes every token of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.Pair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	record, err := s.store.RefreshTokens.FindByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	if record.UserID != claims.UserID {
		return nil, auth.ErrTokenInvalid
	}

	now := s.now()
	if record.Revoked {
		if record.ReplacedBy != nil {
			metrics.RefreshReuseTotal.Inc()
			s.revokeAll(ctx, record.UserID, "refresh token reuse detected")
		}
		return nil, ErrTokenRevoked
	}
	if !record.Usable(now) {
		return nil, auth.ErrTokenExpired
	}

	user, err := s.store.Users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.RefreshTokens.Rotate(ctx, record.JTI, &models.RefreshToken{
			JTI:       pair.RefreshJTI,
			UserID:    user.ID,
			ExpiresAt: pair.RefreshExpiresAt,
		}, now.UTC())
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadyRotated
		}
		return nil
	})
	if errors.Is(err, errAlreadyRotated) {
		metrics.RefreshReuseTotal.Inc()
		s.revokeAll(ctx, user.ID, "concurrent refresh token reuse detected")
		return nil, ErrTokenRevoked
	}
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout revokes the presented refresh token, or every token of the user
// when none is given.
func (s *AuthService) Logout(ctx context.Context, userID uint64, refreshToken string) error {
	now := s.now().UTC()

	if refreshToken == "" {
		if _, err := s.store.RefreshTokens.RevokeAllForUser(ctx, userID, now); err != nil {
			return fmt.Errorf("failed to revoke tokens: %w", err)
		}
		return nil
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil && !errors.Is(err, auth.ErrTokenExpired) {
		return err
	}
	if errors.Is(err, auth.ErrTokenExpired) {
		// Already inert.
		return nil
	}
	if claims.UserID != userID {
		return ErrForeignToken
	}

	if err := s.store.RefreshTokens.Revoke(ctx, claims.ID, now); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Profile is the authenticated user's own view.
type Profile struct {
	User                *models.User
	Memberships         []models.TeamMember
	UnreadNotifications int64
}

// Me loads the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.store.Teams.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	unread, err := s.store.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &Profile{User: user, Memberships: memberships, UnreadNotifications: unread}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserInput is an administrative change to another account.
type UpdateUserInput struct {
	Role   *models.UserRole
	Status *models.UserStatus
}

// UpdateUser changes role and/or status. Leaving the active state revokes
// every refresh token of the target.
func (s *AuthService) UpdateUser(ctx context.Context, actor auth.Identity, targetID uint64, input UpdateUserInput) (*models.User, error) {
	if targetID == actor.UserID {
		return nil, ErrSelfModification
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Role != nil && *input.Role != user.Role {
		fields["role"] = *input.Role
	}
	if input.Status != nil && *input.Status != user.Status {
		fields["status"] = *input.Status
	}
	if len(fields) == 0 {
		return user, nil
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.UpdateFields(ctx, targetID, fields); err != nil {
			return err
		}
		if input.Status != nil && *input.Status != models.UserStatusActive {
			if _, err := tx.RefreshTokens.RevokeAllForUser(ctx, targetID, s.now().UTC()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Get().Info().
		Uint64("actor_id", actor.UserID).
		Uint64("user_id", targetID).
		Interface("changes", fields).
		Msg("user updated")

	return s.GetUser(ctx, targetID)
}

func (s *AuthService) issue(ctx context.Context, tx *repository.Store, user *models.User) (*auth.Pair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if err := tx.RefreshTokens.Create(ctx, &models.RefreshToken{
		JTI:       pair.RefreshJTI,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return pair, nil
}

func (s *AuthService) revokeAll(ctx context.Context, userID uint64, reason string) {
	n, err := s.store.RefreshTokens.RevokeAllForUser(ctx, userID, s.now().UTC())
	if err != nil {
		logger.Get().Error().Err(err).Uint64("user_id", userID).Msg(reason)
		return
	}
	logger.Get().Warn().Uint64("user_id", userID).Int64("revoked", n).Msg(reason)
}
