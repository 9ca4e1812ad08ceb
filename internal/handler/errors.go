package handler

import (
	"errors"
	"net/http"

	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"
	"farm-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service and repository errors to HTTP statuses
func statusFor(err error) int {
	var domainErr *service.DomainError
	var locationErr *models.LocationError
	switch {
	case errors.As(err, &domainErr), errors.Is(err, repository.ErrFollowUpNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &locationErr),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, models.ErrInvalidDataURI),
		errors.Is(err, models.ErrInvalidEntry),
		errors.Is(err, models.ErrInvalidManualLog),
		errors.Is(err, repository.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrEntryNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSuperseded), errors.Is(err, repository.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, service.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the user-facing part of err
func errorBody(err error) gin.H {
	var domainErr *service.DomainError
	switch {
	case errors.As(err, &domainErr):
		return gin.H{"error": domainErr.Message}
	case errors.Is(err, service.ErrTransport):
		return gin.H{"error": service.ErrTransport.Error()}
	}
	if statusFor(err) == http.StatusInternalServerError {
		return gin.H{"error": "internal error"}
	}
	return gin.H{"error": err.Error()}
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, errorBody(err))
}
