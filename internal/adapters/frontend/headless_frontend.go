package frontend

import (
	"fmt"
	"sync"
	"time"

	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
	"go.uber.org/zap"
)

// HeadlessFrontend reports notifications and status through the logger only
type HeadlessFrontend struct {
	view           ports.SessionView
	events         <-chan core.Event
	statusInterval time.Duration
	logger         *zap.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopOnce sync.Once
}

// NewHeadlessFrontend creates a new headless frontend
func NewHeadlessFrontend(view ports.SessionView, events <-chan core.Event, statusInterval time.Duration, logger *zap.Logger) *HeadlessFrontend {
	return &HeadlessFrontend{
		view:           view,
		events:         events,
		statusInterval: statusInterval,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start starts reporting in the background
func (f *HeadlessFrontend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return fmt.Errorf("headless frontend already started")
	}
	f.started = true

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		pump(f.events, nil, f.stopCh, f.statusInterval, handlers{
			onEvent:  f.logEvent,
			onStatus: f.logStatus,
			view:     f.view.Snapshot,
		})
	}()
	return nil
}

// Stop stops reporting
func (f *HeadlessFrontend) Stop() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		f.wg.Wait()
	})
	return nil
}

func (f *HeadlessFrontend) logEvent(e core.Event) {
	f.logger.Info(e.Message,
		zap.String("event", string(e.Kind)),
		zap.String("reason", string(e.Reason)),
		zap.Int("score", e.Score),
		zap.Int("level", e.Level),
		zap.Int("currency", e.Currency))
}

func (f *HeadlessFrontend) logStatus(snap core.SessionSnapshot) {
	f.logger.Debug("Status",
		zap.String("state", string(snap.State)),
		zap.Int("score", snap.Player.Score),
		zap.Int("level", snap.Player.Level),
		zap.Int("currency", snap.Player.Currency),
		zap.Int("inbox_used", snap.Inbox.Used),
		zap.Int("inbox_capacity", snap.Inbox.Capacity))
}
