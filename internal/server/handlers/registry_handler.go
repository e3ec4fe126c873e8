package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/deadstock"
)

// RegistryHandler exposes the read-side registers: the stock ledger, the
// outstanding-issue ledger, purchase history, the dead stock register and the
// rejection sink.
type RegistryHandler struct {
	repos  *repository.Store
	dead   *deadstock.Service
	logger *zap.Logger
}

// NewRegistryHandler constructs the HTTP handler adapter.
func NewRegistryHandler(repos *repository.Store, dead *deadstock.Service, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{repos: repos, dead: dead, logger: logger}
}

// ListStock returns the full stock ledger.
func (h *RegistryHandler) ListStock(c *gin.Context) {
	stock, err := h.repos.Stock.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// GetStock returns one stock line, keyed by query parameters.
func (h *RegistryHandler) GetStock(c *gin.Context) {
	key, ok := queryKey(c)
	if !ok {
		return
	}
	entry, err := h.repos.Stock.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListIssued returns the outstanding-issue ledger.
func (h *RegistryHandler) ListIssued(c *gin.Context) {
	issued, err := h.repos.Issued.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, issued)
}

// ListPurchases returns purchase history for one item key.
func (h *RegistryHandler) ListPurchases(c *gin.Context) {
	key, ok := queryKey(c)
	if !ok {
		return
	}
	recs, err := h.repos.Purchases.ListByKey(c.Request.Context(), key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ListDeadStock returns the dead stock register.
func (h *RegistryHandler) ListDeadStock(c *gin.Context) {
	entries, err := h.dead.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RepairDeadStock runs the register repair sweep on demand.
func (h *RegistryHandler) RepairDeadStock(c *gin.Context) {
	if err := h.dead.Repair(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRejections returns the rejection sink.
func (h *RegistryHandler) ListRejections(c *gin.Context) {
	rejections, err := h.repos.Rejections.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rejections)
}

func queryKey(c *gin.Context) (models.ItemKey, bool) {
	var key models.ItemKey
	if err := c.ShouldBindQuery(&key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item key"})
		return models.ItemKey{}, false
	}
	if err := key.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Wrap(apperr.KindValidation, err, "item key").Error()})
		return models.ItemKey{}, false
	}
	return key, true
}
