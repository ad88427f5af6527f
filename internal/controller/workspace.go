// internal/controller/workspace.go
package controller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-admin/internal/apiclient"
	"github.com/unclebandit/campaign-admin/internal/service"
	"github.com/unclebandit/campaign-admin/internal/session"
)

// Workspace is the per-token state the web client used to keep in
// component state: the plan on display and the edit gate.
type Workspace struct {
	Session   *session.MemoryStore
	Preview   *service.PlanPreview
	Gate      *service.EditGate
	Scheduler *service.BatchScheduler

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	lastSeen time.Time
}

// Context lives as long as the workspace; background timers hang off it.
func (w *Workspace) Context() context.Context { return w.ctx }

// Expired reports whether the backend rejected this workspace's token.
func (w *Workspace) Expired() bool { return w.Session.Token() == "" }

// Workspaces hands out one Workspace per bearer token.
type Workspaces struct {
	Client     *apiclient.Client
	Publisher  service.RunPublisher
	Authorized []string
	OTPTTL     time.Duration
	// Location reads scheduled dates without an offset. Defaults to UTC.
	Location   *time.Location
	Logger     *zap.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaces(client *apiclient.Client, publisher service.RunPublisher, authorized []string, ttl time.Duration, logger *zap.Logger) *Workspaces {
	return &Workspaces{
		Client:     client,
		Publisher:  publisher,
		Authorized: authorized,
		OTPTTL:     ttl,
		Location:   time.UTC,
		Logger:     logger.Named("workspaces"),
		items:      map[string]*Workspace{},
	}
}

// Get returns the workspace for token, creating it on first use. A
// workspace whose session was cleared by a 401 is replaced.
func (ws *Workspaces) Get(token string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if w, ok := ws.items[token]; ok && !w.Expired() {
		w.touch()
		return w
	} else if ok {
		w.cancel()
		delete(ws.items, token)
	}

	store := session.NewMemoryStore(token, nil)
	client := ws.Client.WithSession(store)
	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspace{
		Session:   store,
		Preview:   service.NewPlanPreview(client, ws.Logger),
		Gate:      service.NewEditGate(client, ws.Authorized, ws.OTPTTL, ws.Logger),
		Scheduler: service.NewBatchScheduler(client, ws.Publisher, ws.Logger),
		ctx:       ctx,
		cancel:    cancel,
	}
	w.Preview.Location = ws.Location
	w.Scheduler.Location = ws.Location
	w.touch()
	ws.items[token] = w
	return w
}

// Drop forgets the workspace for token.
func (ws *Workspaces) Drop(token string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if w, ok := ws.items[token]; ok {
		w.cancel()
		delete(ws.items, token)
	}
}

// Sweep drops workspaces idle for longer than maxIdle and returns how many
// were removed.
func (ws *Workspaces) Sweep(maxIdle time.Duration) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	removed := 0
	for token, w := range ws.items {
		if w.idleFor() > maxIdle || w.Expired() {
			w.cancel()
			delete(ws.items, token)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (ws *Workspaces) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ws.Sweep(maxIdle); n > 0 {
				ws.Logger.Debug("swept idle workspaces", zap.Int("removed", n))
			}
		}
	}
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleFor() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.lastSeen)
}
