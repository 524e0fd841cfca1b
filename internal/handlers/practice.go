package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/mykafka"
)

type PracticeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// ListRequests shows a client their own requests; engineers and admins see
// the whole queue.
func (h *PracticeHandler) ListRequests(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	q := h.DB.WithContext(c.Request().Context()).Order("id ASC")
	if ident.Role == models.RoleClient {
		q = q.Where("client_id = ?", ident.UserID)
	}

	var items []models.PracticeRequest
	if err := q.Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *PracticeHandler) CreateRequest(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Region      string `json:"region"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	request := models.PracticeRequest{
		ClientID:    ident.UserID,
		Title:       req.Title,
		Description: req.Description,
		Region:      req.Region,
		Status:      models.PracticeOpen,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&request).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "practice_events", fmt.Sprint(request.ID), map[string]any{
		"type":      "practice_created",
		"requestID": request.ID,
		"clientID":  request.ClientID,
	})

	return c.JSON(http.StatusCreated, request)
}

// Claim assigns an open request to the calling engineer. The single-row
// conditional update is what keeps two engineers from claiming the same
// request at once.
func (h *PracticeHandler) Claim(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var request models.PracticeRequest
	if err := h.DB.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return err
	}

	if request.EngineerID != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request already claimed")
	}
	if request.Status != models.PracticeOpen {
		return echo.NewHTTPError(http.StatusBadRequest, "request is not open")
	}

	res := h.DB.WithContext(ctx).Model(&models.PracticeRequest{}).
		Where("id = ? AND engineer_id IS NULL AND status = ?", id, models.PracticeOpen).
		Updates(map[string]any{
			"engineer_id": ident.UserID,
			"status":      models.PracticeInProgress,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "request already claimed")
	}

	if err := h.DB.WithContext(ctx).First(&request, id).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "practice_events", fmt.Sprint(request.ID), map[string]any{
		"type":       "practice_claimed",
		"requestID":  request.ID,
		"engineerID": ident.UserID,
	})

	return c.JSON(http.StatusOK, request)
}
