package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contest_platform/internal/models"
)

func (env *testEnv) createContest(t *testing.T, ownerID uint, status string) models.Contest {
	t.Helper()
	contest := models.Contest{
		OwnerID: ownerID,
		Title:   "Family house",
		Status:  status,
	}
	require.NoError(t, env.DB.Create(&contest).Error)
	return contest
}

func TestCreateContest(t *testing.T) {
	env := newTestEnv(t)
	user, access, _ := env.register(t, "c@x.com", "pw", "C", "")

	rec := env.do(t, "POST", "/contests", access, map[string]any{
		"title":       "Family house",
		"description": "two floors",
		"budget":      15000.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var contest models.Contest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contest))
	require.Equal(t, user.ID, contest.OwnerID)
	require.Equal(t, models.ContestOpen, contest.Status)

	rec = env.do(t, "POST", "/contests", "", map[string]any{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "POST", "/contests", access, map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListContests(t *testing.T) {
	env := newTestEnv(t)
	user, _, _ := env.register(t, "c@x.com", "pw", "C", "")
	for i := 0; i < 3; i++ {
		env.createContest(t, user.ID, models.ContestOpen)
	}

	rec := env.do(t, "GET", "/contests?page=1&size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Contest `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, int64(3), resp.Meta.Total)
	require.True(t, resp.Meta.HasNext)
}

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	owner, _, _ := env.register(t, "c@x.com", "pw", "C", "")
	_, access, _ := env.register(t, "e@x.com", "pw", "E", "ENGINEER")
	contest := env.createContest(t, owner.ID, models.ContestOpen)

	path := fmt.Sprintf("/contests/%d/proposals", contest.ID)

	rec := env.do(t, "POST", path, access, map[string]any{"description": "my take", "price": 900.0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// second proposal by the same author on the same contest
	rec = env.do(t, "POST", path, access, map[string]any{"description": "again", "price": 800.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "proposal already exists")

	rec = env.do(t, "GET", path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var proposals []models.Proposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proposals))
	require.Len(t, proposals, 1)
}

func TestCreateProposalContestNotOpen(t *testing.T) {
	env := newTestEnv(t)
	owner, _, _ := env.register(t, "c@x.com", "pw", "C", "")
	_, access, _ := env.register(t, "e@x.com", "pw", "E", "ENGINEER")
	contest := env.createContest(t, owner.ID, models.ContestClosed)

	rec := env.do(t, "POST", fmt.Sprintf("/contests/%d/proposals", contest.ID), access,
		map[string]any{"description": "late", "price": 100.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "contest is not open")
}

func TestProposalsUnknownContest(t *testing.T) {
	env := newTestEnv(t)
	_, access, _ := env.register(t, "e@x.com", "pw", "E", "ENGINEER")

	rec := env.do(t, "GET", "/contests/999/proposals", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "POST", "/contests/999/proposals", access, map[string]any{"price": 1.0})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
