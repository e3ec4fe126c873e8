package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/config"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository/mongodb"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/scheduler"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/server/handlers"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/server/router"
	deadstocksvc "github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/deadstock"
	disposalsvc "github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/disposal"
	entrysvc "github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/entry"
	issuesvc "github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/issue"
	returnsvc "github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/returns"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/clients/blobstore"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/clients/notify"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoStore, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to create indexes", zap.Error(err))
	}
	repos := mongoStore.Repositories()

	var notifier notify.Publisher = notify.Nop{}
	if cfg.Notify.BaseURL != "" {
		notifier = notify.NewClient(cfg.Notify.BaseURL, cfg.Notify.Token)
		baseLogger.Info("notification sink enabled")
	} else {
		baseLogger.Warn("notification sink not configured, transition events will be dropped")
	}
	blobClient := blobstore.NewClient(cfg.BlobStore.BaseURL)

	entrySvc := entrysvc.NewService(repos, notifier, baseLogger.Named("svc.entry"))
	issueSvc := issuesvc.NewService(repos, notifier, baseLogger.Named("svc.issue"))
	returnSvc := returnsvc.NewService(repos, notifier, baseLogger.Named("svc.returns"))
	disposalSvc := disposalsvc.NewService(repos, notifier, baseLogger.Named("svc.disposal"))
	deadSvc := deadstocksvc.NewService(repos, baseLogger.Named("svc.deadstock"))

	engine := router.New(router.Handlers{
		Entries:   handlers.NewEntryHandler(entrySvc, baseLogger.Named("handlers.entries")),
		Issues:    handlers.NewIssueHandler(issueSvc, baseLogger.Named("handlers.issues")),
		Returns:   handlers.NewReturnHandler(returnSvc, baseLogger.Named("handlers.returns")),
		Disposals: handlers.NewDisposalHandler(disposalSvc, baseLogger.Named("handlers.disposals")),
		Registry:  handlers.NewRegistryHandler(repos, deadSvc, baseLogger.Named("handlers.registry")),
		Uploads:   handlers.NewUploadHandler(blobClient, baseLogger.Named("handlers.uploads")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, deadSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
