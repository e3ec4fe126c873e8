package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/server/handlers"
)

// Handlers bundles every HTTP adapter the router mounts.
type Handlers struct {
	Entries   *handlers.EntryHandler
	Issues    *handlers.IssueHandler
	Returns   *handlers.ReturnHandler
	Disposals *handlers.DisposalHandler
	Registry  *handlers.RegistryHandler
	Uploads   *handlers.UploadHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	entries := api.Group("/entries")
	entries.POST("", h.Entries.Create)
	entries.GET("", h.Entries.List)
	entries.GET("/:id", h.Entries.Get)
	entries.POST("/:id/approve", h.Entries.Approve)
	entries.POST("/:id/reject", h.Entries.Reject)

	issues := api.Group("/issues")
	issues.POST("", h.Issues.Create)
	issues.GET("", h.Issues.List)
	issues.GET("/:id", h.Issues.Get)
	issues.POST("/:id/acknowledge", h.Issues.Acknowledge)
	issues.POST("/:id/approve", h.Issues.Approve)
	issues.POST("/:id/reject", h.Issues.Reject)

	returns := api.Group("/returns")
	returns.POST("", h.Returns.Create)
	returns.GET("", h.Returns.List)
	returns.POST("/store", h.Returns.CreateStore)
	returns.GET("/store", h.Returns.ListStore)
	returns.PUT("/store/:id/receipt", h.Returns.SetStoreReceipt)
	returns.GET("/:id", h.Returns.Get)
	returns.POST("/:id/resolve", h.Returns.Resolve)
	returns.POST("/:id/hoo-approve", h.Returns.HOOApprove)
	returns.POST("/:id/hoo-reject", h.Returns.HOOReject)

	service := api.Group("/service")
	service.POST("/batches", h.Returns.SaveServiced)
	service.GET("/batches", h.Returns.ListServiced)
	service.POST("/batches/:id/approve", h.Returns.ApproveServiced)
	service.POST("/batches/:id/reject", h.Returns.RejectServiced)
	service.GET("/history", h.Returns.ServiceHistory)

	exchanges := api.Group("/exchanges")
	exchanges.GET("", h.Returns.ListExchanges)
	exchanges.POST("/:id/approve", h.Returns.ApproveExchange)
	exchanges.POST("/:id/reject", h.Returns.RejectExchange)

	disposals := api.Group("/disposals")
	disposals.POST("", h.Disposals.Create)
	disposals.POST("/building", h.Disposals.CreateBuilding)
	disposals.GET("", h.Disposals.List)
	disposals.GET("/:id", h.Disposals.Get)
	disposals.POST("/:id/approve", h.Disposals.Approve)
	disposals.POST("/:id/cancel", h.Disposals.Cancel)
	api.GET("/disposed", h.Disposals.ListDisposed)

	api.GET("/stock", h.Registry.ListStock)
	api.GET("/stock/item", h.Registry.GetStock)
	api.GET("/issued", h.Registry.ListIssued)
	api.GET("/purchases", h.Registry.ListPurchases)
	api.GET("/dead-stock", h.Registry.ListDeadStock)
	api.POST("/dead-stock/repair", h.Registry.RepairDeadStock)
	api.GET("/rejections", h.Registry.ListRejections)

	api.POST("/uploads", h.Uploads.Upload)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
