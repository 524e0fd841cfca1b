package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/models"
)

type AdminHandler struct {
	DB *gorm.DB
}

// Stats gathers the dashboard aggregates. The counts are independent reads
// and run concurrently.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var users, contests, proposals, practices, openPractices int64
	var recentUsers []models.User
	var recentPractices []models.PracticeRequest

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.User{}).Count(&users).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.Contest{}).Count(&contests).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.Proposal{}).Count(&proposals).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.PracticeRequest{}).Count(&practices).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Model(&models.PracticeRequest{}).
			Where("status = ?", models.PracticeOpen).Count(&openPractices).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Order("id DESC").Limit(5).Find(&recentUsers).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).Order("id DESC").Limit(5).Find(&recentPractices).Error
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"counts": echo.Map{
			"users":          users,
			"contests":       contests,
			"proposals":      proposals,
			"practices":      practices,
			"open_practices": openPractices,
		},
		"recent": echo.Map{
			"users":     recentUsers,
			"practices": recentPractices,
		},
	})
}
