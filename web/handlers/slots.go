package handlers

import (
	"net/http"
	"strconv"

	"planilhas/app"
	apperrors "planilhas/errors"
	"planilhas/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SlotHandler struct {
	app    *app.App
	logger *zap.Logger
}

func NewSlotHandler(a *app.App, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{app: a, logger: logger}
}

type slotCountRequest struct {
	Count int `json:"count"`
}

// SetCount resizes the slot list. Out-of-range counts are clamped.
func (h *SlotHandler) SetCount(c *gin.Context) {
	var req slotCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	n, err := h.app.SetSlotCount(req.Count)
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot_count": n})
}

type slotRequest struct {
	Path  *string `json:"path"`
	Alias *string `json:"alias"`
	Sheet *string `json:"sheet"`
}

// Update applies the fields present in the body to slot :n (1-based).
func (h *SlotHandler) Update(c *gin.Context) {
	i, ok := slotIndex(c)
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.slotExists(c, i) {
		return
	}

	if req.Path != nil {
		if err := h.app.AttachFile(i, *req.Path); err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
	}
	if req.Alias != nil {
		if err := h.app.SetAlias(i, *req.Alias); err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
	}
	if req.Sheet != nil {
		if err := h.app.SetSheet(i, *req.Sheet); err != nil {
			respondWithAppError(c, err, h.logger)
			return
		}
	}
	h.respondSlot(c, i)
}

func (h *SlotHandler) ClearFile(c *gin.Context) {
	i, ok := slotIndex(c)
	if !ok {
		return
	}
	if !h.slotExists(c, i) {
		return
	}
	if err := h.app.ClearFile(i); err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	h.respondSlot(c, i)
}

// Sheets lists the worksheets of the file attached to slot :n.
func (h *SlotHandler) Sheets(c *gin.Context) {
	i, ok := slotIndex(c)
	if !ok {
		return
	}
	slots, err := h.app.Slots()
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	if i >= len(slots) {
		respondWithClientError(c, http.StatusNotFound, "Slot not found")
		return
	}
	if slots[i].Path == "" {
		respondWithClientError(c, http.StatusBadRequest, "Slot has no file")
		return
	}
	names, err := h.app.Sheets().Sheets(slots[i].Path)
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheets": names})
}

func (h *SlotHandler) respondSlot(c *gin.Context, i int) {
	slots, err := h.app.Slots()
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return
	}
	if i >= len(slots) {
		respondWithClientError(c, http.StatusNotFound, "Slot not found")
		return
	}
	c.JSON(http.StatusOK, slots[i])
}

// slotExists writes a 404 when slot i is beyond the current slot count.
func (h *SlotHandler) slotExists(c *gin.Context, i int) bool {
	slots, err := h.app.Slots()
	if err != nil {
		respondWithAppError(c, err, h.logger)
		return false
	}
	if i >= len(slots) {
		respondWithClientError(c, http.StatusNotFound, "Slot not found")
		return false
	}
	return true
}

// slotIndex parses the 1-based :n parameter into a zero-based index.
func slotIndex(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < types.MinSlots || n > types.MaxSlots {
		respondWithAppError(c, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "slot must be %d..%d", types.MinSlots, types.MaxSlots), nil)
		return 0, false
	}
	return n - 1, true
}
