package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickerScheduler runs periodic tasks on background goroutines
type TickerScheduler struct {
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewTickerScheduler creates a new ticker based scheduler
func NewTickerScheduler(logger *zap.Logger) *TickerScheduler {
	return &TickerScheduler{logger: logger}
}

// Every runs task right away and then once per interval until the returned
// cancel function is called. Cancel only signals the goroutine, so it is
// safe to call from inside task.
func (s *TickerScheduler) Every(interval time.Duration, task func()) func() {
	stopCh := make(chan struct{})
	var once sync.Once

	s.wg.Add(1)
	go s.run(interval, task, stopCh)

	s.logger.Debug("Schedule started", zap.Duration("interval", interval))

	return func() {
		once.Do(func() {
			close(stopCh)
			s.logger.Debug("Schedule cancelled", zap.Duration("interval", interval))
		})
	}
}

// Wait blocks until every cancelled schedule goroutine has returned
func (s *TickerScheduler) Wait() {
	s.wg.Wait()
}

func (s *TickerScheduler) run(interval time.Duration, task func(), stopCh <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if !stopped(stopCh) {
		task()
	}

	for {
		select {
		case <-ticker.C:
			if stopped(stopCh) {
				return
			}
			task()
		case <-stopCh:
			return
		}
	}
}

func stopped(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}
