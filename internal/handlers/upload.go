package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/mykafka"
	"github.com/Skotchmaster/contest_platform/internal/storage"
)

type UploadHandler struct {
	DB       *gorm.DB
	Storage  storage.Storage
	Producer *mykafka.Producer
}

func (h *UploadHandler) Upload(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	filename := c.QueryParam("filename")
	if filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename is required")
	}

	ctx := c.Request().Context()

	stored := uuid.NewString() + "_" + filename
	url, size, err := h.Storage.Save(ctx, stored, c.Request().Body)
	if err != nil {
		return err
	}

	file := models.FileObject{
		OwnerID:    ident.UserID,
		Name:       filename,
		URL:        url,
		Size:       size,
		ContestID:  parseOptionalUint(c.QueryParam("contestId")),
		ProposalID: parseOptionalUint(c.QueryParam("proposalId")),
		PracticeID: parseOptionalUint(c.QueryParam("practiceId")),
	}
	if err := h.DB.WithContext(ctx).Create(&file).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(ident.UserID), map[string]any{
		"type":   "file_uploaded",
		"fileID": file.ID,
		"userID": ident.UserID,
		"name":   file.Name,
	})

	return c.JSON(http.StatusOK, file)
}

func parseOptionalUint(s string) *uint {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}
