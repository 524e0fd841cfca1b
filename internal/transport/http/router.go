package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/contest_platform/internal/handlers"
	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/models"
)

type Deps struct {
	Gate            *auth.Gate
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	AdminHandler    *handlers.AdminHandler
	ContestHandler  *handlers.ContestHandler
	PracticeHandler *handlers.PracticeHandler
	UploadHandler   *handlers.UploadHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout)

	user := e.Group("/user", d.Gate.RequireLogin)
	user.GET("/profile", d.UserHandler.GetProfile)
	user.PUT("/profile", d.UserHandler.UpdateProfile)

	admin := e.Group("/admin", d.Gate.RequireRole(models.RoleAdmin))
	admin.GET("/stats", d.AdminHandler.Stats)

	contests := e.Group("/contests")
	contests.GET("", d.ContestHandler.ListContests)
	contests.GET("/:id", d.ContestHandler.GetContest)
	contests.POST("", d.ContestHandler.CreateContest, d.Gate.RequireLogin)
	contests.GET("/:id/proposals", d.ContestHandler.ListProposals)
	contests.POST("/:id/proposals", d.ContestHandler.CreateProposal, d.Gate.RequireLogin)

	practices := e.Group("/practices")
	practices.GET("/requests", d.PracticeHandler.ListRequests, d.Gate.RequireLogin)
	practices.POST("/requests", d.PracticeHandler.CreateRequest, d.Gate.RequireLogin)
	practices.POST("/:id/claim", d.PracticeHandler.Claim,
		d.Gate.RequireRole(models.RoleEngineer, models.RoleAdmin))

	e.POST("/upload", d.UploadHandler.Upload, d.Gate.RequireLogin)
	e.GET("/search", d.SearchHandler.Search)
}
