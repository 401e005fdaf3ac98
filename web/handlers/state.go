package handlers

import (
	"net/http"

	"planilhas/app"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StateHandler struct {
	app    *app.App
	logger *zap.Logger
}

func NewStateHandler(a *app.App, logger *zap.Logger) *StateHandler {
	return &StateHandler{app: a, logger: logger}
}

// Get returns the full client state.
func (h *StateHandler) Get(c *gin.Context) {
	state, err := h.app.Snapshot()
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, state)
}

type prefsRequest struct {
	AutoDownload *bool   `json:"auto_download"`
	Draft        *string `json:"draft"`
}

// UpdatePrefs applies the fields present in the body.
func (h *StateHandler) UpdatePrefs(c *gin.Context) {
	var req prefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AutoDownload != nil {
		if err := h.app.SetAutoDownload(*req.AutoDownload); err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
	}
	if req.Draft != nil {
		if err := h.app.SetDraft(*req.Draft); err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
	}
	h.Get(c)
}

// Toasts lists the visible notifications.
func (h *StateHandler) Toasts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"toasts": h.app.Notifier().Active()})
}

func (h *StateHandler) DismissToast(c *gin.Context) {
	if !h.app.Notifier().Dismiss(c.Param("id")) {
		respondWithClientError(c, http.StatusNotFound, "Notification not found")
		return
	}
	c.Status(http.StatusNoContent)
}
