package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/mykafka"
	"github.com/Skotchmaster/contest_platform/internal/service/search"
	"github.com/Skotchmaster/contest_platform/internal/util"
)

type ContestHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

func (h *ContestHandler) ListContests(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Contest{}).Count(&total).Error; err != nil {
		return err
	}

	var items []models.Contest
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ContestHandler) GetContest(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var contest models.Contest
	if err := h.DB.WithContext(c.Request().Context()).First(&contest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contest not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, contest)
}

func (h *ContestHandler) CreateContest(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Budget      float64 `json:"budget"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	contest := models.Contest{
		OwnerID:     ident.UserID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      models.ContestOpen,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&contest).Error; err != nil {
		return err
	}

	if err := h.Indexer.IndexContest(c.Request().Context(), &contest); err != nil {
		c.Logger().Errorf("es index error: %v", err)
	}

	publish(c, h.Producer, "contest_events", fmt.Sprint(contest.ID), map[string]any{
		"type":      "contest_created",
		"contestID": contest.ID,
		"ownerID":   contest.OwnerID,
		"title":     contest.Title,
	})

	return c.JSON(http.StatusCreated, contest)
}

func (h *ContestHandler) ListProposals(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var contest models.Contest
	if err := h.DB.WithContext(ctx).First(&contest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contest not found")
		}
		return err
	}

	var proposals []models.Proposal
	if err := h.DB.WithContext(ctx).Where("contest_id = ?", id).Order("id ASC").Find(&proposals).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, proposals)
}

func (h *ContestHandler) CreateProposal(c echo.Context) error {
	ident, ok := auth.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	var contest models.Contest
	if err := h.DB.WithContext(ctx).First(&contest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contest not found")
		}
		return err
	}
	if contest.Status != models.ContestOpen {
		return echo.NewHTTPError(http.StatusBadRequest, "contest is not open")
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Proposal{}).
		Where("contest_id = ? AND author_id = ?", id, ident.UserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "proposal already exists")
	}

	proposal := models.Proposal{
		ContestID:   id,
		AuthorID:    ident.UserID,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.DB.WithContext(ctx).Create(&proposal).Error; err != nil {
		// unique index on (contest_id, author_id) closes the check/create race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "proposal already exists")
		}
		return err
	}

	publish(c, h.Producer, "proposal_events", fmt.Sprint(proposal.ID), map[string]any{
		"type":       "proposal_created",
		"proposalID": proposal.ID,
		"contestID":  proposal.ContestID,
		"authorID":   proposal.AuthorID,
	})

	return c.JSON(http.StatusCreated, proposal)
}
