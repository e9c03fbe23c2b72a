package controller

import (
	"errors"
	"net/http"
	"strings"

	ctx "github.com/krakosik/demoday/internal/context"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const AdminSecretHeader = "X-Admin-Secret"

// RequireAdmin rejects requests whose X-Admin-Secret does not unlock action.
func RequireAdmin(gate service.AdminGate, action service.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := gate.Authorize(c.Request().Header.Get(AdminSecretHeader), action)
			if !decision.Granted {
				logrus.Warnf("Admin %s denied for %s: %s", action, c.RealIP(), decision.Reason)
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
					Error:   "not_authorized",
					Message: decision.Reason,
				})
			}
			req := c.Request()
			c.SetRequest(req.WithContext(ctx.WithAdminAction(req.Context(), action)))
			return next(c)
		}
	}
}

// RequestLogger writes one logrus entry per request.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			if action, ok := ctx.GetAdminActionFromContext(c.Request().Context()); ok {
				entry = entry.WithField("admin_action", action)
			}
			switch {
			case v.Error != nil:
				entry.WithError(v.Error).Error("request failed")
			case v.Status >= http.StatusInternalServerError:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	status, code, message := http.StatusInternalServerError, "internal_error", "something went wrong"
	switch {
	case errors.Is(err, dto.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
		message = strings.TrimPrefix(err.Error(), dto.ErrValidation.Error()+": ")
	case errors.Is(err, dto.ErrDuplicateVoter):
		status, code, message = http.StatusConflict, "duplicate_voter", dto.ErrDuplicateVoter.Error()
	case errors.Is(err, dto.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
		message = err.Error()
	case errors.Is(err, dto.ErrNotAuthorized):
		status, code = http.StatusUnauthorized, "not_authorized"
		message = err.Error()
	case errors.Is(err, dto.ErrPersistence):
		status, code = http.StatusServiceUnavailable, "persistence_error"
		message = "storage is unavailable, please try again"
	case errors.Is(err, dto.ErrConfiguration):
		code = "configuration_error"
		message = "the event is not configured correctly"
	}
	if status >= http.StatusInternalServerError {
		logrus.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, dto.ErrorResponse{Error: code, Message: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_error", Message: message})
}
