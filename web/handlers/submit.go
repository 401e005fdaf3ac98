package handlers

import (
	"net/http"

	"planilhas/app"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubmitHandler struct {
	app    *app.App
	logger *zap.Logger
}

func NewSubmitHandler(a *app.App, logger *zap.Logger) *SubmitHandler {
	return &SubmitHandler{app: a, logger: logger}
}

type submitRequest struct {
	Prompt *string `json:"prompt"`
}

// Submit sends the current slots. Without a prompt in the body the stored
// draft is used.
func (h *SubmitHandler) Submit(c *gin.Context) {
	var req submitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	prompt := ""
	if req.Prompt != nil {
		prompt = *req.Prompt
	} else {
		draft, err := h.app.Prefs().Draft()
		if err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
		prompt = draft
	}

	res, err := h.app.Submit(c.Request.Context(), prompt)
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome":    res.Kind,
		"saved_path": res.SavedPath,
		"session_id": h.app.Sessions().Current(),
		"message":    res.Message,
	})
}

type downloadRequest struct {
	URL string `json:"url" binding:"required"`
}

// Download fetches a hosted artifact into the download directory.
func (h *SubmitHandler) Download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	path, err := h.app.Download(c.Request.Context(), req.URL)
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_path": path})
}

// NewSession clears the transcript and starts a new session.
func (h *SubmitHandler) NewSession(c *gin.Context) {
	id, err := h.app.NewSession()
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id})
}
