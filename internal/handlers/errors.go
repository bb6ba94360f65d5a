package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidBetAmount),
		errors.Is(err, models.ErrNoSelectionMade),
		errors.Is(err, models.ErrInvalidSelection),
		errors.Is(err, models.ErrUnknownGame),
		errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSessionNotActive),
		errors.Is(err, models.ErrSessionPending),
		errors.Is(err, models.ErrBonusAlreadyClaimed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.Errorw(message, "path", c.FullPath(), "player_id", c.GetString("player_id"), "error", err)
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}
