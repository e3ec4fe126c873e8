package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/issue"
)

// IssueHandler exposes the issue workflow.
type IssueHandler struct {
	svc    *issue.Service
	logger *zap.Logger
}

// NewIssueHandler constructs the HTTP handler adapter.
func NewIssueHandler(svc *issue.Service, logger *zap.Logger) *IssueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueHandler{svc: svc, logger: logger}
}

type issueRequest struct {
	models.ItemKey
	IssuedTo string   `json:"issuedTo" binding:"required"`
	Quantity int      `json:"quantity" binding:"required"`
	ItemIDs  []string `json:"itemIds"`
}

// Create requests an issue, debiting stock eagerly.
func (h *IssueHandler) Create(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid issue payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), issue.Request{
		Key:      req.ItemKey,
		IssuedTo: req.IssuedTo,
		Quantity: req.Quantity,
		ItemIDs:  req.ItemIDs,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List returns all pending issues.
func (h *IssueHandler) List(c *gin.Context) {
	issues, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// Get returns one pending issue.
func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	i, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

type acknowledgeRequest struct {
	ReceiptURL string `json:"receiptUrl" binding:"required"`
}

// Acknowledge records the countersigned receipt.
func (h *IssueHandler) Acknowledge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.Acknowledge(c.Request.Context(), id, req.ReceiptURL); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Approve moves the acknowledged issue into the outstanding-issue ledger.
func (h *IssueHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Approve(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject returns the reserved stock and sinks the request.
func (h *IssueHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.Reject(c.Request.Context(), id, req.Remarks); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
