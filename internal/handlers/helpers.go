package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authbot/internal/services"
)

// statusFor maps the service error taxonomy to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrExpired):
		return http.StatusGone, "code expired"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "code invalid or already used"
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, services.ErrNoChannel):
		return http.StatusNotFound, "no telegram chat linked"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, services.ErrNotification):
		return http.StatusBadGateway, "notification delivery failed"
	case errors.Is(err, services.ErrStorage):
		return http.StatusInternalServerError, "storage unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}
