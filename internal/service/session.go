package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/hash"
	"github.com/Skotchmaster/contest_platform/internal/logging"
	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/tokens"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrRefreshExpired     = errors.New("refresh token expired")
	ErrBadRole            = errors.New("unknown role")
)

type SessionService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

type SessionResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, &user)
}

func (s *SessionService) Register(ctx context.Context, email, password, name, role string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.register")

	role = strings.ToUpper(role)
	if role == "" {
		role = models.RoleClient
	}
	switch role {
	case models.RoleClient, models.RoleEngineer, models.RoleAdmin:
	default:
		return nil, ErrBadRole
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register failed", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// two registrations can race past the existence check; the unique
		// index on email decides the winner
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	return s.issue(ctx, &user)
}

func (s *SessionService) issue(ctx context.Context, user *models.User) (*SessionResult, error) {
	accessToken, err := tokens.SignAccess(user.ID, user.Email, user.Role, s.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := tokens.SignRefresh(user.ID, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	row := models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(tokens.RefreshTTL),
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	return &SessionResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid, persisted refresh token for a new access token.
// The refresh token itself is not rotated. Claims in the new access token come
// from the live user row, so a role change since login is honored.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if res := tokens.DecodeRefresh(refreshToken, s.RefreshSecret); !res.Valid {
		return "", ErrInvalidRefresh
	}

	var stored models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", refreshToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRefreshNotFound
		}
		return "", err
	}

	if time.Now().After(stored.ExpiresAt) {
		// lazy cleanup: an expired token is removed the first time it is seen
		if err := s.DB.WithContext(ctx).Delete(&models.RefreshToken{}, stored.ID).Error; err != nil {
			logging.FromContext(ctx).Error("refresh cleanup failed", "error", err)
		}
		return "", ErrRefreshExpired
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRefreshNotFound
		}
		return "", err
	}

	return tokens.SignAccess(user.ID, user.Email, user.Role, s.JWTSecret)
}

// Logout drops the refresh token row so it can no longer be exchanged.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	return s.DB.WithContext(ctx).
		Where("token = ?", refreshToken).
		Delete(&models.RefreshToken{}).Error
}
