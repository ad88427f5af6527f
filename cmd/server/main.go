// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-admin/internal/apiclient"
	"github.com/unclebandit/campaign-admin/internal/config"
	"github.com/unclebandit/campaign-admin/internal/controller"
	"github.com/unclebandit/campaign-admin/internal/db"
	"github.com/unclebandit/campaign-admin/internal/handler"
	"github.com/unclebandit/campaign-admin/internal/logging"
	"github.com/unclebandit/campaign-admin/internal/queue"
	"github.com/unclebandit/campaign-admin/internal/repository"
	"github.com/unclebandit/campaign-admin/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger is optional: without a database runs are only logged.
	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer conn.Close()
	}

	publisher, closeQueue := buildPublisher(cfg, conn, logger)
	defer closeQueue()

	client := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, nil, logger)
	workspaces := controller.NewWorkspaces(client, publisher, cfg.OTPAuthorizedEmails, cfg.OTPTTL, logger)
	workspaces.Location = cfg.Location
	go workspaces.RunSweeper(ctx, time.Minute, 2*time.Hour)

	deps := controller.RouterDeps{
		Campaigns:        &controller.CampaignController{Workspaces: workspaces, Logger: logger.Named("campaigns")},
		OTP:              &controller.OTPController{Workspaces: workspaces},
		OTPSendPerMinute: cfg.OTPSendPerMinute,
	}
	if conn != nil {
		ledger := &service.LedgerService{Repo: &repository.BatchRunRepository{DB: conn}}
		deps.Batches = handler.NewBatchHandler(ledger, logger)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           controller.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("upstream", cfg.APIBaseURL), zap.Stringer("timezone", cfg.Location))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// buildPublisher picks where finished batch runs go: RabbitMQ when
// configured, otherwise an in-process queue feeding the ledger directly.
func buildPublisher(cfg *config.Config, conn *sql.DB, logger *zap.Logger) (service.RunPublisher, func()) {
	if cfg.AMQPURL != "" {
		q, err := queue.DialAMQP(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("queue unavailable", zap.Error(err))
		}
		return &queue.RunPublisher{Queue: q, Topic: cfg.AMQPQueue}, func() { q.Close() }
	}
	if conn == nil {
		return nil, func() {}
	}

	q := queue.NewInMemoryQueue(logger)
	worker := service.NewLedgerWorker(&repository.BatchRunRepository{DB: conn}, logger)
	if err := worker.Attach(q, cfg.AMQPQueue); err != nil {
		logger.Fatal("failed to start ledger subscriber", zap.Error(err))
	}
	return &queue.RunPublisher{Queue: q, Topic: cfg.AMQPQueue}, q.Wait
}
