package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/contest_platform/internal/models"
	"github.com/Skotchmaster/contest_platform/internal/tokens"
)

const bearerPrefix = "Bearer "

type Gate struct {
	DB        *gorm.DB
	JWTSecret []byte
}

// Identity is what the gate resolves from a bearer token and stores in the
// echo context under "identity".
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

func FromContext(c echo.Context) (Identity, bool) {
	id, ok := c.Get("identity").(Identity)
	return id, ok
}

func extractBearer(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}
	return token, nil
}

// RequireLogin authenticates the bearer token without touching the database.
func (g *Gate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := extractBearer(c)
		if err != nil {
			return err
		}

		res := tokens.DecodeAccess(raw, g.JWTSecret)
		if !res.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("identity", Identity{UserID: res.UserID, Email: res.Email, Role: res.Role})
		return next(c)
	}
}

// RequireRole authenticates and then authorizes against the live user row,
// not the token claims, so a demoted or deleted account is rejected even
// while its old access token is still cryptographically valid.
func (g *Gate) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractBearer(c)
			if err != nil {
				return err
			}

			res := tokens.DecodeAccess(raw, g.JWTSecret)
			if !res.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			var user models.User
			if err := g.DB.WithContext(c.Request().Context()).First(&user, res.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				return err
			}

			allowed := false
			for _, r := range roles {
				if user.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}

			c.Set("identity", Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
			return next(c)
		}
	}
}
