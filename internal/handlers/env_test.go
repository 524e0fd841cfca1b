package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/handlers"
	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/service"
	"github.com/Skotchmaster/contest_platform/internal/service/search"
	"github.com/Skotchmaster/contest_platform/internal/storage"
	httpserver "github.com/Skotchmaster/contest_platform/internal/transport/http"
)

var (
	testJWTSecret     = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type testEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *service.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// one connection, or every pooled conn gets its own empty :memory: db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Contest{},
		&models.Proposal{},
		&models.PracticeRequest{},
		&models.FileObject{},
	))

	sessions := &service.SessionService{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}
	gate := &auth.Gate{DB: db, JWTSecret: testJWTSecret}

	store, err := storage.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Gate:            gate,
		AuthHandler:     &handlers.AuthHandler{Sessions: sessions},
		UserHandler:     &handlers.UserHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db},
		ContestHandler:  &handlers.ContestHandler{DB: db, Indexer: &search.Indexer{}},
		PracticeHandler: &handlers.PracticeHandler{DB: db},
		UploadHandler:   &handlers.UploadHandler{DB: db, Storage: store},
		SearchHandler:   &handlers.SearchHandler{Indexer: &search.Indexer{}},
	})

	return &testEnv{E: e, DB: db, Sessions: sessions}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (env *testEnv) register(t *testing.T, email, password, name, role string) (models.User, string, string) {
	t.Helper()

	rec := env.do(t, "POST", "/auth/register", "", map[string]string{
		"email": email, "password": password, "name": name, "role": role,
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var resp struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User, resp.AccessToken, resp.RefreshToken
}
