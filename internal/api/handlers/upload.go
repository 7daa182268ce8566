package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"arena-chat-service/internal/adapters/objectstore"
)

// 20 MiB, matches the bucket-side policy.
const maxAttachmentSize = 20 << 20

type UploadHandler struct {
	objects *objectstore.Client
}

func NewUploadHandler(objects *objectstore.Client) *UploadHandler {
	return &UploadHandler{objects: objects}
}

// Upload stores an attachment and returns its URL. The client then
// sends a normal message carrying the URL; the upload itself notifies
// nobody.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxAttachmentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 20MB limit"})
		return
	}

	url, err := h.objects.UploadAttachment(c.Request.Context(), file)
	if err != nil {
		slog.Error("attachment upload failed", "fileName", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"fileName": file.Filename,
	})
}
