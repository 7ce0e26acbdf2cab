package frontend

import (
	"bufio"
	"io"
	"time"

	"github.com/mikey/email-defender/internal/core"
)

// handlers are the callbacks a pump dispatches to
type handlers struct {
	onEvent  func(core.Event)
	onLine   func(string)
	onStatus func(core.SessionSnapshot)
	view     func() core.SessionSnapshot
}

// pump delivers events and input lines as they arrive and calls onStatus
// once per interval until stopCh is closed. A non-positive interval disables
// status reports; a nil lines channel disables input.
func pump(events <-chan core.Event, lines <-chan string, stopCh <-chan struct{}, interval time.Duration, h handlers) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case e := <-events:
			h.onEvent(e)
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			h.onLine(line)
		case <-tick:
			h.onStatus(h.view())
		case <-stopCh:
			drain(events, h.onEvent)
			return
		}
	}
}

func drain(events <-chan core.Event, onEvent func(core.Event)) {
	for {
		select {
		case e := <-events:
			onEvent(e)
		default:
			return
		}
	}
}

// readLines feeds lines from r into the returned channel and closes it at
// EOF. The reader goroutine is not stopped by the pump since a blocked read
// on a terminal cannot be interrupted.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
