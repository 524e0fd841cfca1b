package main

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorHandler keeps echo's behavior for HTTPErrors and collapses everything
// else to a generic 500. In production the internal detail stays in the log
// only; outside production it is echoed to the client.
func errorHandler(production bool, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			msg := he.Message
			if m, ok := msg.(error); ok {
				msg = m.Error()
			}
			if err := c.JSON(he.Code, echo.Map{"error": msg}); err != nil {
				logger.Error("error response failed", "error", err)
			}
			return
		}

		logger.Error("internal error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)

		msg := "internal server error"
		if !production {
			msg = err.Error()
		}
		if err := c.JSON(http.StatusInternalServerError, echo.Map{"error": msg}); err != nil {
			logger.Error("error response failed", "error", err)
		}
	}
}
