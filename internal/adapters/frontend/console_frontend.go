package frontend

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
	"github.com/mikey/email-defender/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const consoleHelp = `Commands:
  list                      show the inbox
  respond|delete|spam|ignore <n>  act on email n from the list
  buy <upgrade>             purchase an upgrade level
  upgrades                  show upgrade prices
  pause | resume            pause or resume the game
  quit                      end the game
  help                      show this help
`

// ConsoleFrontend prints notifications and a periodic status line and
// reads player commands from its input, one per line
type ConsoleFrontend struct {
	game           ports.GameSession
	events         <-chan core.Event
	input          io.Reader
	textProcessor  *utils.TextProcessor
	out            io.Writer
	printer        *message.Printer
	statusInterval time.Duration
	previewSize    int
	logger         *zap.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopOnce sync.Once
}

// NewConsoleFrontend creates a new console frontend. A nil input disables
// command handling.
func NewConsoleFrontend(
	game ports.GameSession,
	events <-chan core.Event,
	input io.Reader,
	textProcessor *utils.TextProcessor,
	out io.Writer,
	statusInterval time.Duration,
	previewSize int,
	logger *zap.Logger,
) *ConsoleFrontend {
	return &ConsoleFrontend{
		game:           game,
		events:         events,
		input:          input,
		textProcessor:  textProcessor,
		out:            out,
		printer:        message.NewPrinter(language.English),
		statusInterval: statusInterval,
		previewSize:    previewSize,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start starts printing and reading commands in the background
func (f *ConsoleFrontend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return fmt.Errorf("console frontend already started")
	}
	f.started = true

	var lines <-chan string
	if f.input != nil {
		lines = readLines(f.input)
		fmt.Fprint(f.out, "Type 'help' for commands.\n")
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		pump(f.events, lines, f.stopCh, f.statusInterval, handlers{
			onEvent:  f.printEvent,
			onLine:   f.handleLine,
			onStatus: f.printStatus,
			view:     f.game.Snapshot,
		})
	}()

	f.logger.Info("Console frontend started",
		zap.Duration("status_interval", f.statusInterval),
		zap.Bool("interactive", f.input != nil))
	return nil
}

// Stop stops printing and writes a final status line
func (f *ConsoleFrontend) Stop() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		f.wg.Wait()
		f.printStatus(f.game.Snapshot())
	})
	return nil
}

func (f *ConsoleFrontend) handleLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprint(f.out, consoleHelp)
	case "list", "ls":
		f.printInbox(f.game.Snapshot())
	case "status":
		f.printStatus(f.game.Snapshot())
	case "upgrades":
		f.printUpgrades(f.game.Snapshot())
	case "pause":
		f.game.Pause()
		fmt.Fprint(f.out, "Paused.\n")
	case "resume":
		f.game.Resume()
		fmt.Fprint(f.out, "Resumed.\n")
	case "quit", "exit":
		f.game.Quit()
	case "buy":
		f.buy(strings.Join(args, " "))
	default:
		f.act(cmd, args)
	}
}

func (f *ConsoleFrontend) act(cmd string, args []string) {
	if cmd == "spam" {
		cmd = string(core.ActionMarkSpam)
	}
	kind, err := core.ParseAction(cmd)
	if err != nil {
		fmt.Fprintf(f.out, "Unknown command %q, type 'help' for commands.\n", cmd)
		return
	}
	if len(args) != 1 {
		fmt.Fprintf(f.out, "Usage: %s <n>\n", cmd)
		return
	}

	emails := f.game.Snapshot().Inbox.Emails
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(emails) {
		fmt.Fprintf(f.out, "No email %q in the inbox.\n", args[0])
		return
	}

	email := emails[n-1]
	outcome := f.game.ProcessAction(email.ID, kind)
	f.logger.Debug("Player action",
		zap.String("email_id", email.ID),
		zap.String("action", string(kind)),
		zap.Bool("applied", outcome.Applied),
		zap.Int("points", outcome.Points))

	switch {
	case !outcome.Applied:
		fmt.Fprint(f.out, "Nothing happened.\n")
	case outcome.Correct:
		fmt.Fprintf(f.out, "Correct! %+d points\n", outcome.Points)
	default:
		fmt.Fprintf(f.out, "Wrong! %+d points\n", outcome.Points)
	}
}

func (f *ConsoleFrontend) buy(name string) {
	track, err := core.ParseTrack(name)
	if err != nil {
		fmt.Fprintf(f.out, "Unknown upgrade %q, type 'upgrades' for the list.\n", name)
		return
	}
	if !f.game.PurchaseUpgrade(track) {
		fmt.Fprint(f.out, "Cannot buy that upgrade right now.\n")
		return
	}
	info, _ := core.LookupTrack(track)
	fmt.Fprintf(f.out, "Bought %s.\n", info.Name)
}

func (f *ConsoleFrontend) printInbox(snap core.SessionSnapshot) {
	if len(snap.Inbox.Emails) == 0 {
		fmt.Fprint(f.out, "Inbox is empty.\n")
		return
	}
	for i, e := range snap.Inbox.Emails {
		fmt.Fprintf(f.out, "%3d. %s\n", i+1, f.textProcessor.ProcessText(e.DisplayString(), f.previewSize))
	}
}

func (f *ConsoleFrontend) printUpgrades(snap core.SessionSnapshot) {
	for _, t := range snap.Tracks {
		if t.Maxed {
			f.printer.Fprintf(f.out, "  %-24s level %2d  maxed\n", t.Track, t.Level)
			continue
		}
		f.printer.Fprintf(f.out, "  %-24s level %2d  next %d coins  %s\n", t.Track, t.Level, t.NextCost, t.Effect)
	}
}

func (f *ConsoleFrontend) printEvent(e core.Event) {
	switch e.Kind {
	case core.EventLevelUp:
		f.printer.Fprintf(f.out, "\n*** %s ***\n", e.Message)
	case core.EventGameOver:
		f.printer.Fprintf(f.out, "\n=== %s ===\n", e.Message)
		f.printer.Fprintf(f.out, "Final score: %d | Level: %d | Coins: %d\n", e.Score, e.Level, e.Currency)
	}
}

func (f *ConsoleFrontend) printStatus(snap core.SessionSnapshot) {
	p := snap.Player
	f.printer.Fprintf(f.out, "[%s] Level %d | Score %d/%d | Coins %d | Combo x%.1f | Inbox %d/%d | Wrong %d | Missed %d\n",
		snap.State, p.Level, p.Score, p.NextLevelScore, p.Currency, p.ComboMultiplier,
		snap.Inbox.Used, snap.Inbox.Capacity, snap.WrongDeletes, snap.MissedUrgent)

	if n := len(snap.Inbox.Emails); n > 0 {
		latest := snap.Inbox.Emails[n-1]
		f.printer.Fprintf(f.out, "  latest: %s\n", f.textProcessor.ProcessText(latest.DisplayString(), f.previewSize))
	}
}
