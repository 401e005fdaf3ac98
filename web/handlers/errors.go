package handlers

import (
	"net/http"

	apperrors "planilhas/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}

	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithAppError picks the status for a categorised application error.
func respondWithAppError(c *gin.Context, err error, logger *zap.Logger) {
	switch {
	case apperrors.IsBusy(err):
		respondWithClientError(c, http.StatusConflict, apperrors.MsgBusy)
	case apperrors.IsInsufficientInput(err), apperrors.IsUnsupportedFileType(err):
		respondWithClientError(c, http.StatusBadRequest, apperrors.UserMessage(err))
	case apperrors.IsInvalidInput(err):
		respondWithClientError(c, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		respondWithClientError(c, http.StatusNotFound, err.Error())
	case apperrors.IsTransport(err), apperrors.IsDecode(err):
		respondWithError(c, http.StatusBadGateway, err, apperrors.UserMessage(err), logger)
	default:
		respondWithError(c, http.StatusInternalServerError, err, "Internal server error", logger)
	}
}
