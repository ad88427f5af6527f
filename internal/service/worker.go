package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/queue"
)

// RunStore defines the methods the ledger worker needs
type RunStore interface {
	Save(ctx context.Context, run *model.BatchRun) error
}

// LedgerWorker writes published batch runs to the ledger.
type LedgerWorker struct {
	Store   RunStore
	Logger  *zap.Logger
	Timeout time.Duration
}

// Constructor
func NewLedgerWorker(store RunStore, logger *zap.Logger) *LedgerWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerWorker{Store: store, Logger: logger.Named("ledger"), Timeout: 10 * time.Second}
}

var errBadPayload = errors.New("bad batch run payload")

// Handle is a queue.Handler. Undecodable payloads are logged and dropped.
func (w *LedgerWorker) Handle(body []byte) error {
	run, err := queue.DecodeRun(body)
	if err != nil {
		w.Logger.Warn("dropping message", zap.Error(errors.Join(errBadPayload, err)))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()
	if err := w.Store.Save(ctx, run); err != nil {
		w.Logger.Error("failed to save batch run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}
	w.Logger.Info("batch run recorded",
		zap.String("run_id", run.ID),
		zap.Int("success", run.SuccessCount),
		zap.Int("failed", run.FailCount),
	)
	return nil
}

// Attach subscribes the worker to topic on q.
func (w *LedgerWorker) Attach(q queue.Queue, topic string) error {
	return q.Subscribe(topic, w.Handle)
}
