package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/disposal"
)

// DisposalHandler exposes the condemnation pipeline.
type DisposalHandler struct {
	svc    *disposal.Service
	logger *zap.Logger
}

// NewDisposalHandler constructs the HTTP handler adapter.
func NewDisposalHandler(svc *disposal.Service, logger *zap.Logger) *DisposalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisposalHandler{svc: svc, logger: logger}
}

type disposalRequest struct {
	models.ItemKey
	ReturnIDs []string            `json:"returnIds" binding:"required"`
	Meta      models.DisposalMeta `json:"meta"`
}

// Create stages a disposal over HOO-cleared returns.
func (h *DisposalHandler) Create(c *gin.Context) {
	var req disposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid disposal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	returnIDs := make([]primitive.ObjectID, 0, len(req.ReturnIDs))
	for _, hex := range req.ReturnIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id " + hex})
			return
		}
		returnIDs = append(returnIDs, id)
	}

	pd, err := h.svc.Request(c.Request.Context(), req.ItemKey, returnIDs, req.Meta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pd)
}

type buildingDisposalRequest struct {
	models.ItemKey
	Building models.BuildingDisposal `json:"building" binding:"required"`
	Meta     models.DisposalMeta     `json:"meta"`
}

// CreateBuilding stages a demolition.
func (h *DisposalHandler) CreateBuilding(c *gin.Context) {
	var req buildingDisposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid building disposal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pd, err := h.svc.RequestBuilding(c.Request.Context(), req.ItemKey, req.Building, req.Meta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pd)
}

// List returns pending disposals.
func (h *DisposalHandler) List(c *gin.Context) {
	disposals, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, disposals)
}

// Get returns one pending disposal.
func (h *DisposalHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pd, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pd)
}

// Approve confirms the disposal.
func (h *DisposalHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	disposed, err := h.svc.Dispose(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, disposed)
}

// Cancel backs the disposal out, unlocking its returns.
func (h *DisposalHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id, req.Remarks); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDisposed returns the disposed-asset history.
func (h *DisposalHandler) ListDisposed(c *gin.Context) {
	disposed, err := h.svc.ListDisposed(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, disposed)
}
