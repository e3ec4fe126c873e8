package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/clients/blobstore"
)

// UploadHandler forwards receipts and photographs to the blob store and
// returns the opaque URL the other endpoints accept.
type UploadHandler struct {
	store  blobstore.Client
	logger *zap.Logger
}

// NewUploadHandler constructs the HTTP handler adapter.
func NewUploadHandler(store blobstore.Client, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{store: store, logger: logger}
}

// Upload streams one multipart file to the blob store.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	url, err := h.store.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("upload failed", zap.Error(err), zap.String("filename", header.Filename))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to store file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
