// internal/services/auth_service.go
// Authentication and authorization service, backing the HTTP layer's
// bearer-token boundary. The core engine itself never authenticates — it trusts a
// resolved member ID and role from this service's tokens (see
// models.Member's Role comment).

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"tournament-planner/internal/config"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication and authorization for members.
type AuthService struct {
	memberRepo *repositories.MemberRepository
	config     config.AuthConfig
	cache      *CacheService
	logger     *log.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	memberRepo *repositories.MemberRepository,
	config config.AuthConfig,
	cache *CacheService,
	logger *log.Logger,
) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		config:     config,
		cache:      cache,
		logger:     logger,
	}
}

// RegisterRequest carries the data needed to enroll a new member.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// TokenPair is the bearer-token response shape returned by every
// authentication flow.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a new member account with the MEMBER role; only an
// existing organizer or admin can elevate a member afterward.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.Member, *TokenPair, error) {
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	exists, err := s.memberRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	member := &models.Member{
		ID:           utils.GenerateUUID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Active:       true,
		Role:         models.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, nil, fmt.Errorf("failed to create member: %w", err)
	}

	tokenPair, err := s.generateTokenPair(member)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	member.PasswordHash = ""
	return member, tokenPair, nil
}

// Login authenticates a member and returns tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Member, *TokenPair, error) {
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !member.Active {
		return nil, nil, ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokenPair, err := s.generateTokenPair(member)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	member.PasswordHash = ""
	return member, tokenPair, nil
}

// RefreshToken generates new tokens using a refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	cacheKey := fmt.Sprintf("refresh_token_%s", refreshToken)
	var memberID string
	if err := s.cache.Get(cacheKey, &memberID); err != nil {
		return nil, ErrInvalidToken
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	s.cache.Delete(cacheKey)

	return s.generateTokenPair(member)
}

// generateTokenPair creates access and refresh tokens for a member.
func (s *AuthService) generateTokenPair(member *models.Member) (*TokenPair, error) {
	accessToken, err := utils.GenerateJWT(member.ID, string(member.Role), s.config.JWTSecret, s.config.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	cacheKey := fmt.Sprintf("refresh_token_%s", refreshToken)
	if err := s.cache.Set(cacheKey, member.ID, s.config.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to cache refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.config.JWTExpiration),
	}, nil
}

// ValidateToken validates a JWT token and returns the member ID and role.
func (s *AuthService) ValidateToken(token string) (string, string, error) {
	memberID, role, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	return memberID, role, nil
}

// Logout invalidates a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		s.cache.Delete(fmt.Sprintf("refresh_token_%s", refreshToken))
	}
	return nil
}

// ChangePassword changes a member's password, verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, memberID, currentPassword, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("member not found: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BCryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.memberRepo.UpdatePasswordHash(ctx, memberID, string(hashedPassword))
}

// ForgotPassword issues a reset token for a member, without revealing
// whether the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}

	resetToken := utils.GenerateSecureToken()
	cacheKey := fmt.Sprintf("password_reset_%s", resetToken)
	if err := s.cache.Set(cacheKey, member.ID, 1*time.Hour); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.Printf("password reset token issued for member %s", member.ID)
	return nil
}

// ResetPassword resets a member's password using a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	cacheKey := fmt.Sprintf("password_reset_%s", token)
	var memberID string
	if err := s.cache.Get(cacheKey, &memberID); err != nil {
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BCryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.memberRepo.UpdatePasswordHash(ctx, memberID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.cache.Delete(cacheKey)
	return nil
}
