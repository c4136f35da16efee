package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"guestlist-backend/csvio"
	"guestlist-backend/service"
)

// DataHandler serves the CSV roster import and export endpoints.
type DataHandler struct {
	store service.EntryStore
	log   *slog.Logger
}

func NewDataHandler(store service.EntryStore, log *slog.Logger) *DataHandler {
	return &DataHandler{store: store, log: log}
}

// Import replaces the whole roster from an uploaded CSV. The file arrives
// either as a multipart "file" field or as the raw request body.
func (h *DataHandler) Import(c *gin.Context) {
	body, err := h.importBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	entries, err := csvio.Read(body)
	if err != nil {
		var verr *csvio.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.log.Error("failed to read import", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.store.ReplaceAll(c, entries)
	if err != nil {
		h.log.Error("failed to replace entries", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.Info("roster imported", "rows", rows)
	c.JSON(http.StatusCreated, gin.H{"message": "ok", "rows": rows})
}

func (h *DataHandler) importBody(c *gin.Context) (io.ReadCloser, error) {
	file, err := c.FormFile("file")
	if err != nil {
		// not a multipart upload, take the raw body
		return c.Request.Body, nil
	}
	return file.Open()
}

// Export streams the whole roster as a CSV attachment.
func (h *DataHandler) Export(c *gin.Context) {
	entries, err := h.store.ExportAll(c)
	if err != nil {
		h.log.Error("failed to export entries", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=data.csv")
	c.Status(http.StatusOK)
	if err := csvio.Write(c.Writer, entries); err != nil {
		h.log.Error("failed to write export", "err", err)
	}
}
