package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
)

type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	ctx := c.Request().Context()

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, ident.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	// independent counts, no ordering between them
	var proposals, contests, practices int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.Proposal{}).
			Where("author_id = ?", user.ID).Count(&proposals).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.Contest{}).
			Where("owner_id = ?", user.ID).Count(&contests).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.PracticeRequest{}).
			Where("client_id = ?", user.ID).Count(&practices).Error
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": user,
		"counts": echo.Map{
			"proposals": proposals,
			"contests":  contests,
			"practices": practices,
		},
	})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	var req struct {
		Name      *string `json:"name"`
		Avatar    *string `json:"avatar"`
		Bio       *string `json:"bio"`
		Portfolio *string `json:"portfolio"`
		Phone     *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, ident.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Portfolio != nil {
		user.Portfolio = *req.Portfolio
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
