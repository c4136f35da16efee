package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"guestlist-backend/models"
	"guestlist-backend/service"
	"guestlist-backend/store"
)

// CheckinHandler serves the check-in and reset endpoints.
type CheckinHandler struct {
	svc *service.Checkin
	log *slog.Logger
}

func NewCheckinHandler(svc *service.Checkin, log *slog.Logger) *CheckinHandler {
	return &CheckinHandler{svc: svc, log: log}
}

// Status returns the current roster entry for a single guest.
func (h *CheckinHandler) Status(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.svc.Status(c, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.log.Error("status lookup failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// CheckIn marks the guest in the path as present and returns the recorded
// timestamp.
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	id := c.Param("id")

	at, err := h.svc.CheckIn(c, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.log.Error("check-in failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "time": models.FormatTimestamp(at)})
}

// Reset clears the check-in status of one guest, or of the whole roster when
// the path parameter is the literal "all".
func (h *CheckinHandler) Reset(c *gin.Context) {
	target := c.Param("id")

	rows, err := h.svc.Reset(c, target)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.log.Error("reset failed", "target", target, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "rows": rows})
}
