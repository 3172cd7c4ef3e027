package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tournament-planner/internal/config"
	"tournament-planner/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_ValidateToken_RoundTripsAGeneratedJWT(t *testing.T) {
	s := &AuthService{config: config.AuthConfig{JWTSecret: "topsecret", JWTExpiration: time.Hour}}

	token, err := utils.GenerateJWT("member-1", "ORGANIZER", s.config.JWTSecret, s.config.JWTExpiration)
	require.NoError(t, err)

	memberID, role, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "member-1", memberID)
	assert.Equal(t, "ORGANIZER", role)
}

func TestAuthService_ValidateToken_RejectsTokenSignedWithADifferentSecret(t *testing.T) {
	s := &AuthService{config: config.AuthConfig{JWTSecret: "topsecret", JWTExpiration: time.Hour}}

	token, err := utils.GenerateJWT("member-1", "MEMBER", "wrongsecret", time.Hour)
	require.NoError(t, err)

	_, _, err = s.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout_NoOpOnEmptyRefreshToken(t *testing.T) {
	s := &AuthService{}
	assert.NoError(t, s.Logout(context.Background(), ""))
}

func TestAuthService_Register_RejectsWeakPasswordBeforeTouchingMemberRepo(t *testing.T) {
	s := &AuthService{}
	_, _, err := s.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "alllowercase"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAuthService_ChangePassword_RejectsWeakNewPasswordBeforeTouchingMemberRepo(t *testing.T) {
	s := &AuthService{}
	err := s.ChangePassword(context.Background(), "member-1", "old-password", "weak")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAuthService_ResetPassword_RejectsWeakNewPasswordBeforeTouchingCache(t *testing.T) {
	s := &AuthService{}
	err := s.ResetPassword(context.Background(), "reset-token", "weak")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
