package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contest_platform/internal/mykafka"
	"github.com/Skotchmaster/contest_platform/internal/service"
)

type AuthHandler struct {
	Sessions *service.SessionService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and name are required")
	}

	res, err := h.Sessions.Register(c.Request().Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		case errors.Is(err, service.ErrBadRole):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		return err
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(res.User.ID), map[string]any{
		"type":   "user_registered",
		"userID": res.User.ID,
		"email":  res.User.Email,
		"role":   res.User.Role,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	res, err := h.Sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(res.User.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": res.User.ID,
		"email":  res.User.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refreshToken is required")
	}

	accessToken, err := h.Sessions.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		// clients branch on these three messages, keep them distinct
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrRefreshNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not found")
		case errors.Is(err, service.ErrRefreshExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token expired")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refreshToken is required")
	}

	if err := h.Sessions.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
