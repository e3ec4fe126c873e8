package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/returns"
)

// ReturnHandler exposes the return workflow, including the service and
// exchange sub-flows.
type ReturnHandler struct {
	svc    *returns.Service
	logger *zap.Logger
}

// NewReturnHandler constructs the HTTP handler adapter.
func NewReturnHandler(svc *returns.Service, logger *zap.Logger) *ReturnHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnHandler{svc: svc, logger: logger}
}

type returnRequest struct {
	models.ItemKey
	IssuedTo string   `json:"issuedTo" binding:"required"`
	Quantity int      `json:"quantity"`
	ItemIDs  []string `json:"itemIds"`
	Remarks  string   `json:"remarks"`
}

// Create stages a return of issued stock.
func (h *ReturnHandler) Create(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid return payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	records, err := h.svc.CreateFromIssue(c.Request.Context(), returns.Request{
		Key:      req.ItemKey,
		IssuedTo: req.IssuedTo,
		Quantity: req.Quantity,
		ItemIDs:  req.ItemIDs,
		Remarks:  req.Remarks,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, records)
}

type storeReturnRequest struct {
	models.ItemKey
	Quantity   int      `json:"quantity"`
	ItemIDs    []string `json:"itemIds"`
	ReceiptURL string   `json:"receiptUrl"`
	Remarks    string   `json:"remarks"`
}

// CreateStore stages a return raised by the store itself.
func (h *ReturnHandler) CreateStore(c *gin.Context) {
	var req storeReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid store return payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sr, err := h.svc.CreateStoreReturn(c.Request.Context(), returns.StoreReturnRequest{
		Key:        req.ItemKey,
		Quantity:   req.Quantity,
		ItemIDs:    req.ItemIDs,
		ReceiptURL: req.ReceiptURL,
		Remarks:    req.Remarks,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sr)
}

// ListStore returns store-return staging entries.
func (h *ReturnHandler) ListStore(c *gin.Context) {
	srs, err := h.svc.ListStoreReturns(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, srs)
}

// SetStoreReceipt re-uploads the staged receipt.
func (h *ReturnHandler) SetStoreReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.ReuploadStoreReceipt(c.Request.Context(), id, req.ReceiptURL); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns returned records, optionally filtered by state.
func (h *ReturnHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), models.ReturnState(c.Query("state")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get returns one returned record.
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type resolveRequest struct {
	Condition string `json:"condition" binding:"required"`
	Remarks   string `json:"remarks"`
}

// Resolve applies the Manager's condition call.
func (h *ReturnHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.Resolve(c.Request.Context(), id, returns.Condition(req.Condition), req.Remarks); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HOOApprove clears the Head-of-Office disposal gate.
func (h *ReturnHandler) HOOApprove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.HOOApprove(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HOOReject reverses the return and records the denial.
func (h *ReturnHandler) HOOReject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.HOOReject(c.Request.Context(), id, req.Remarks); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type servicedRequest struct {
	models.ItemKey
	ItemIDs       []string `json:"itemIds"`
	Quantity      int      `json:"quantity"`
	ServiceNo     string   `json:"serviceNo" binding:"required"`
	ServiceDate   string   `json:"serviceDate"`
	ServiceAmount float64  `json:"serviceAmount"`
}

// SaveServiced moves approved returns into an in-service batch.
func (h *ReturnHandler) SaveServiced(c *gin.Context) {
	var req servicedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid serviced payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := h.svc.SaveServiced(c.Request.Context(), returns.ServicedRequest{
		Key:           req.ItemKey,
		ItemIDs:       req.ItemIDs,
		Quantity:      req.Quantity,
		ServiceNo:     req.ServiceNo,
		ServiceDate:   parseDate(req.ServiceDate),
		ServiceAmount: req.ServiceAmount,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// ListServiced returns pending service batches.
func (h *ReturnHandler) ListServiced(c *gin.Context) {
	batches, err := h.svc.ListServicedPending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// ApproveServiced completes a service batch.
func (h *ReturnHandler) ApproveServiced(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.ApproveService(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RejectServiced voids a service batch.
func (h *ReturnHandler) RejectServiced(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RejectService(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ServiceHistory returns completed service records for one item key, bound
// from query parameters.
func (h *ReturnHandler) ServiceHistory(c *gin.Context) {
	var key models.ItemKey
	if err := c.ShouldBindQuery(&key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item key"})
		return
	}
	history, err := h.svc.ListServiceHistory(c.Request.Context(), key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// ListExchanges returns staged consumable exchanges.
func (h *ReturnHandler) ListExchanges(c *gin.Context) {
	exchanges, err := h.svc.ListExchanges(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exchanges)
}

// ApproveExchange confirms the vendor replacement.
func (h *ReturnHandler) ApproveExchange(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.ApproveExchange(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RejectExchange routes the refused exchange toward disposal.
func (h *ReturnHandler) RejectExchange(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RejectExchange(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
