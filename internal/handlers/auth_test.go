package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/tokens"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	user, access, refresh := env.register(t, "a@x.com", "pw", "A", "")
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, models.RoleClient, user.Role)
	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	res := tokens.DecodeAccess(access, testJWTSecret)
	require.True(t, res.Valid)
	require.Equal(t, user.ID, res.UserID)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh).First(&stored).Error)
	require.Equal(t, user.ID, stored.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "pw", "A", "")

	rec := env.do(t, "POST", "/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "other", "name": "B",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/auth/register", "", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterNormalizesRole(t *testing.T) {
	env := newTestEnv(t)

	user, _, _ := env.register(t, "e@x.com", "pw", "E", "engineer")
	require.Equal(t, models.RoleEngineer, user.Role)

	rec := env.do(t, "POST", "/auth/register", "", map[string]string{
		"email": "x@x.com", "password": "pw", "name": "X", "role": "SUPERUSER",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user, regAccess, _ := env.register(t, "a@x.com", "pw", "A", "")

	rec := env.do(t, "POST", "/auth/login", "", map[string]string{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User        models.User `json:"user"`
		AccessToken string      `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.User.ID)
	require.NotEqual(t, regAccess, resp.AccessToken)

	res := tokens.DecodeAccess(resp.AccessToken, testJWTSecret)
	require.True(t, res.Valid)
	require.Equal(t, user.ID, res.UserID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "pw", "A", "")

	rec := env.do(t, "POST", "/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")

	// unknown user gets the same generic message
	rec = env.do(t, "POST", "/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "pw"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	user, _, refresh := env.register(t, "a@x.com", "pw", "A", "")

	rec := env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	res := tokens.DecodeAccess(resp.AccessToken, testJWTSecret)
	require.True(t, res.Valid)
	require.Equal(t, user.ID, res.UserID)
}

func TestRefreshHonorsLiveRole(t *testing.T) {
	env := newTestEnv(t)
	user, _, refresh := env.register(t, "a@x.com", "pw", "A", "")

	require.NoError(t, env.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("role", models.RoleAdmin).Error)

	rec := env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.RoleAdmin, tokens.DecodeAccess(resp.AccessToken, testJWTSecret).Role)
}

func TestRefreshFailureModes(t *testing.T) {
	env := newTestEnv(t)
	user, _, _ := env.register(t, "a@x.com", "pw", "A", "")

	// undecodable token
	rec := env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": "garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid refresh token")

	// well-signed but never persisted
	stray, err := tokens.SignRefresh(user.ID, testRefreshSecret)
	require.NoError(t, err)
	rec = env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": stray})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "refresh token not found")

	// missing body field
	rec = env.do(t, "POST", "/auth/refresh", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshExpiredRowDeletedOnUse(t *testing.T) {
	env := newTestEnv(t)
	user, _, _ := env.register(t, "a@x.com", "pw", "A", "")

	expired, err := tokens.SignRefresh(user.ID, testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, env.DB.Create(&models.RefreshToken{
		Token:     expired,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)

	rec := env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": expired})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "refresh token expired")

	// the row is gone, a second attempt reports not found
	rec = env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": expired})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "refresh token not found")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	_, _, refresh := env.register(t, "a@x.com", "pw", "A", "")

	rec := env.do(t, "POST", "/auth/logout", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "refresh token not found")
}
