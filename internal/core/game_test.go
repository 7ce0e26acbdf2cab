package core

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// manualScheduler records schedules so tests can fire ticks synchronously
type manualScheduler struct {
	mu        sync.Mutex
	schedules []*manualSchedule
}

type manualSchedule struct {
	interval  time.Duration
	task      func()
	cancelled bool
}

func (s *manualScheduler) Every(interval time.Duration, task func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched := &manualSchedule{interval: interval, task: task}
	s.schedules = append(s.schedules, sched)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sched.cancelled = true
	}
}

func (s *manualScheduler) active() []*manualSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*manualSchedule
	for _, sched := range s.schedules {
		if !sched.cancelled {
			out = append(out, sched)
		}
	}
	return out
}

func (s *manualScheduler) last() *manualSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedules[len(s.schedules)-1]
}

// fire runs the currently active schedule once
func (s *manualScheduler) fire(t *testing.T) {
	t.Helper()
	active := s.active()
	if len(active) != 1 {
		t.Fatalf("%d active schedules, want 1", len(active))
	}
	active[0].task()
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

type testGame struct {
	*GameLoop
	sched    *manualScheduler
	recorder *eventRecorder
}

func newTestGame(t *testing.T, logger *zap.Logger) *testGame {
	t.Helper()
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}
	rng := NewRandom(1)
	sched := &manualScheduler{}
	recorder := &eventRecorder{}
	g := NewGameLoop(
		NewPlayerState(),
		NewInbox(DefaultInitialCapacity),
		NewUpgradeCatalog(logger),
		NewEmailGenerator(rng, logger),
		rng,
		sched,
		recorder,
		logger,
		GameOptions{InitialCapacity: DefaultInitialCapacity, TickUnit: time.Second},
	)
	return &testGame{GameLoop: g, sched: sched, recorder: recorder}
}

func (g *testGame) startOrFail(t *testing.T) {
	t.Helper()
	if err := g.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func (g *testGame) put(t *testing.T, e Email) {
	t.Helper()
	if !g.inbox.Add(e) {
		t.Fatalf("could not seed inbox with %s", e.ID)
	}
}

func TestStartTransitions(t *testing.T) {
	g := newTestGame(t, nil)
	if g.State() != StateStopped {
		t.Fatalf("initial state = %s", g.State())
	}

	g.startOrFail(t)
	if g.State() != StateRunning {
		t.Errorf("state after Start = %s", g.State())
	}
	if err := g.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	iv := g.sched.last().interval
	if iv < 8*time.Second || iv > 10*time.Second {
		t.Errorf("level 1 interval = %v, want 8s..10s", iv)
	}

	g.Quit()
	if err := g.Start(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Start() after game over error = %v, want ErrGameOver", err)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)

	g.Pause()
	g.Pause()
	if g.State() != StatePaused {
		t.Errorf("state after double Pause = %s", g.State())
	}

	g.Resume()
	g.Resume()
	if g.State() != StateRunning {
		t.Errorf("state after double Resume = %s", g.State())
	}
}

func TestTickFillsInboxUntilGameOver(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)

	for i := 0; i < DefaultInitialCapacity; i++ {
		g.sched.fire(t)
	}
	snap := g.Snapshot()
	if snap.Inbox.Used != 3 || snap.State != StateRunning {
		t.Fatalf("after 3 ticks used=%d state=%s", snap.Inbox.Used, snap.State)
	}

	g.sched.fire(t)

	if g.State() != StateGameOver {
		t.Fatalf("state after overflow = %s", g.State())
	}
	if used := g.Snapshot().Inbox.Used; used != 3 {
		t.Errorf("overflowing email entered inbox: used=%d", used)
	}
	if len(g.sched.active()) != 0 {
		t.Errorf("schedule still active after game over")
	}

	events := g.recorder.all()
	if len(events) != 1 || events[0].Kind != EventGameOver || events[0].Reason != ReasonInboxFull {
		t.Fatalf("events = %+v, want one inbox_full game over", events)
	}
	if !strings.Contains(events[0].Message, "inbox is full") {
		t.Errorf("message = %q", events[0].Message)
	}

	select {
	case <-g.Done():
	default:
		t.Errorf("Done() not closed after game over")
	}
}

func TestPausedTickDoesNothing(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)
	g.Pause()

	for i := 0; i < 10; i++ {
		g.sched.fire(t)
	}

	snap := g.Snapshot()
	if snap.Inbox.Used != 0 || snap.Ticks != 0 || snap.State != StatePaused {
		t.Errorf("paused ticks had effect: used=%d ticks=%d state=%s", snap.Inbox.Used, snap.Ticks, snap.State)
	}
}

func TestLevelUpRebuildsScheduleAndCapacity(t *testing.T) {
	g := newTestGame(t, nil)
	for g.player.Score() < 500 {
		g.player.AwardPoints(100)
	}
	currency := g.player.Currency()

	g.startOrFail(t)
	first := g.sched.last()
	g.sched.fire(t)

	snap := g.Snapshot()
	if snap.Player.Level != 2 {
		t.Fatalf("level = %d, want 2", snap.Player.Level)
	}
	if snap.Player.Currency != currency+100 {
		t.Errorf("currency = %d, want %d", snap.Player.Currency, currency+100)
	}
	if snap.Inbox.Capacity != 20 {
		t.Errorf("capacity = %d, want 20", snap.Inbox.Capacity)
	}
	if !first.cancelled {
		t.Errorf("old schedule not cancelled")
	}
	if n := len(g.sched.active()); n != 1 {
		t.Errorf("%d active schedules after rebuild, want 1", n)
	}
	if iv := g.sched.last().interval; iv < 7*time.Second || iv > 9*time.Second {
		t.Errorf("level 2 interval = %v, want 7s..9s", iv)
	}

	// a late firing of the cancelled schedule must not generate
	used := snap.Inbox.Used
	first.task()
	if got := g.Snapshot().Inbox.Used; got != used {
		t.Errorf("stale schedule generated an email: %d -> %d", used, got)
	}

	events := g.recorder.all()
	if len(events) != 1 || events[0].Kind != EventLevelUp || events[0].Level != 2 || events[0].Bonus != 100 {
		t.Fatalf("events = %+v, want one level 2 level-up", events)
	}
	if !strings.Contains(events[0].Message, "Level 2") {
		t.Errorf("message = %q", events[0].Message)
	}
}

func TestIntervalFloor(t *testing.T) {
	g := newTestGame(t, nil)
	for i := 0; i < 20; i++ {
		g.player.LevelUp()
	}

	for i := 0; i < 50; i++ {
		iv := g.intervalLocked()
		if iv < time.Second || iv > 3*time.Second {
			t.Fatalf("level 21 interval = %v, want 1s..3s", iv)
		}
	}
}

func TestSpamFilterCatchesSpam(t *testing.T) {
	g := newTestGame(t, nil)
	g.player.AwardCurrency(6500)
	for i := 0; i < MaxUpgradeLevel; i++ {
		if !g.PurchaseUpgrade(TrackSpamFilter) {
			t.Fatalf("spam filter purchase %d failed", i)
		}
	}
	// raise the threshold so catches cannot trigger a level-up rebuild
	for i := 0; i < 4; i++ {
		g.player.LevelUp()
	}
	g.inbox.SetCapacity(1000)

	g.startOrFail(t)
	const ticks = 200
	for i := 0; i < ticks; i++ {
		g.sched.fire(t)
	}

	snap := g.Snapshot()
	if snap.Ticks != ticks {
		t.Fatalf("ticks = %d, want %d", snap.Ticks, ticks)
	}
	caught := ticks - snap.Inbox.Used
	if caught == 0 {
		t.Errorf("spam filter at 50%% caught nothing")
	}
	if snap.Player.Score < 5*caught {
		t.Errorf("score %d too low for %d caught emails", snap.Player.Score, caught)
	}
}

func TestProcessActionTable(t *testing.T) {
	tests := []struct {
		name        string
		category    Category
		action      ActionKind
		wantCorrect bool
		wantPoints  int
		wantRemoved bool
		wantWrong   int
	}{
		{"respond legitimate", CategoryWork, ActionRespond, true, 10, true, 0},
		{"respond spam", CategoryPhishing, ActionRespond, false, -15, true, 0},
		{"delete legitimate", CategoryPersonal, ActionDelete, false, -15, true, 1},
		{"delete spam", CategoryScam, ActionDelete, true, 5, true, 0},
		{"mark legitimate", CategoryAccount, ActionMarkSpam, false, -15, true, 1},
		{"mark spam", CategoryMalware, ActionMarkSpam, true, 5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, nil)
			g.startOrFail(t)
			g.put(t, testEmail("x", tt.category))

			out := g.ProcessAction("x", tt.action)

			if !out.Applied || out.Correct != tt.wantCorrect || out.Points != tt.wantPoints || out.Removed != tt.wantRemoved {
				t.Errorf("outcome = %+v", out)
			}
			snap := g.Snapshot()
			if snap.Inbox.Used != 0 {
				t.Errorf("email still in inbox")
			}
			if snap.WrongDeletes != tt.wantWrong {
				t.Errorf("wrong deletes = %d, want %d", snap.WrongDeletes, tt.wantWrong)
			}
			if snap.Player.Score < 0 {
				t.Errorf("negative score %d", snap.Player.Score)
			}
		})
	}
}

func TestFiveWrongDeletesEndGame(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	g := newTestGame(t, zap.New(obs))
	g.inbox.SetCapacity(10)
	g.startOrFail(t)

	for i := 0; i < 6; i++ {
		g.put(t, testEmail(string(rune('a'+i)), CategoryWork))
	}
	for i := 0; i < 5; i++ {
		g.ProcessAction(string(rune('a'+i)), ActionDelete)
	}

	if g.State() != StateGameOver {
		t.Fatalf("state = %s, want game over", g.State())
	}
	snap := g.Snapshot()
	if snap.WrongDeletes != 5 || snap.GameOverReason != ReasonTooManyWrongMoves {
		t.Errorf("wrong=%d reason=%s", snap.WrongDeletes, snap.GameOverReason)
	}
	if !strings.Contains(snap.GameOverMessage, "deleted too many legitimate emails") {
		t.Errorf("message = %q", snap.GameOverMessage)
	}

	// no mutation after game over
	if out := g.ProcessAction("f", ActionRespond); out.Applied {
		t.Errorf("action applied after game over")
	}
	if g.PurchaseUpgrade(TrackInboxCapacity) {
		t.Errorf("purchase succeeded after game over")
	}
	if events := g.recorder.all(); len(events) != 1 {
		t.Errorf("%d notifications, want exactly 1", len(events))
	}
	if logs.FilterMessage("Game over").Len() != 1 {
		t.Errorf("expected one game over log entry")
	}
}

func TestMarkSpamGameOverMessage(t *testing.T) {
	g := newTestGame(t, nil)
	g.inbox.SetCapacity(10)
	g.startOrFail(t)

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		g.put(t, testEmail(id, CategorySubscription))
		g.ProcessAction(id, ActionMarkSpam)
	}

	if msg := g.Snapshot().GameOverMessage; !strings.Contains(msg, "marked too many legitimate emails as spam") {
		t.Errorf("message = %q", msg)
	}
}

func TestIgnoreUrgent(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)
	g.player.AwardPoints(10)
	g.player.AwardPoints(10)

	urgent := testEmail("u", CategoryWork)
	urgent.Urgent = true
	g.put(t, urgent)
	g.put(t, testEmail("n", CategoryWork))

	if out := g.ProcessAction("n", ActionIgnore); out.Applied {
		t.Errorf("ignore on non-urgent email applied: %+v", out)
	}
	if streak := g.player.Streak(); streak != 2 {
		t.Errorf("non-urgent ignore changed streak to %d", streak)
	}

	score := g.player.Score()
	out := g.ProcessAction("u", ActionIgnore)
	if !out.Applied || out.Correct || out.Removed || out.Points != -wrongActionPenalty {
		t.Errorf("ignore outcome = %+v", out)
	}
	if got := g.player.Score(); got != score-wrongActionPenalty {
		t.Errorf("score = %d, want %d", got, score-wrongActionPenalty)
	}
	if streak := g.player.Streak(); streak != 0 {
		t.Errorf("streak = %d after ignoring urgent email, want 0", streak)
	}

	g.ProcessAction("u", ActionIgnore)
	snap := g.Snapshot()
	if snap.MissedUrgent != 2 || snap.Inbox.Used != 2 || snap.State != StateRunning {
		t.Fatalf("missed=%d used=%d state=%s", snap.MissedUrgent, snap.Inbox.Used, snap.State)
	}
	if snap.Player.Score != 0 {
		t.Errorf("score = %d, want clamped to 0", snap.Player.Score)
	}

	g.ProcessAction("u", ActionIgnore)
	snap = g.Snapshot()
	if snap.State != StateGameOver || snap.GameOverReason != ReasonTooManyMissed {
		t.Errorf("state=%s reason=%s, want missed urgent game over", snap.State, snap.GameOverReason)
	}
}

func TestIgnoreUrgentSpamCountsAsMissed(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)

	phish := testEmail("p", CategoryPhishing)
	phish.Urgent = true
	g.put(t, phish)

	out := g.ProcessAction("p", ActionIgnore)
	if !out.Applied || out.Removed || out.Points != -wrongActionPenalty {
		t.Errorf("ignore outcome = %+v", out)
	}
	snap := g.Snapshot()
	if snap.MissedUrgent != 1 || snap.Inbox.Used != 1 {
		t.Errorf("missed=%d used=%d, want 1 and 1", snap.MissedUrgent, snap.Inbox.Used)
	}
}

func TestActionsIgnoredWhenNotRunning(t *testing.T) {
	g := newTestGame(t, nil)
	g.put(t, testEmail("a", CategoryWork))

	if out := g.ProcessAction("a", ActionRespond); out.Applied {
		t.Errorf("action applied before Start")
	}

	g.startOrFail(t)
	g.Pause()
	if out := g.ProcessAction("a", ActionRespond); out.Applied {
		t.Errorf("action applied while paused")
	}

	g.Resume()
	if out := g.ProcessAction("missing", ActionRespond); out.Applied {
		t.Errorf("action applied to unknown email")
	}
	if out := g.ProcessAction("a", ActionKind("archive")); out.Applied {
		t.Errorf("unknown action applied")
	}
	if out := g.ProcessAction("a", ActionRespond); !out.Applied {
		t.Errorf("respond while running not applied")
	}
}

func TestPurchaseInboxCapacityAppliesImmediately(t *testing.T) {
	g := newTestGame(t, nil)
	g.startOrFail(t)
	g.player.AwardCurrency(100)

	if !g.PurchaseUpgrade(TrackInboxCapacity) {
		t.Fatalf("PurchaseUpgrade failed with exact funds")
	}
	snap := g.Snapshot()
	if snap.Player.Currency != 0 || snap.Player.Upgrades[TrackInboxCapacity] != 1 {
		t.Errorf("currency=%d level=%d", snap.Player.Currency, snap.Player.Upgrades[TrackInboxCapacity])
	}
	if snap.Inbox.Capacity != 30 {
		t.Errorf("capacity = %d, want 30", snap.Inbox.Capacity)
	}

	if g.PurchaseUpgrade(TrackInboxCapacity) {
		t.Errorf("purchase without funds succeeded")
	}
	g.player.AwardCurrency(150)
	if !g.PurchaseUpgrade(TrackResponseSpeed) {
		t.Fatalf("response speed purchase failed")
	}
	if got := g.Snapshot().Inbox.Capacity; got != 30 {
		t.Errorf("non-capacity purchase changed capacity to %d", got)
	}
}

func TestConcurrentTicksAndActions(t *testing.T) {
	g := newTestGame(t, zap.NewNop())
	g.inbox.SetCapacity(50)
	g.startOrFail(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			if sched := g.sched.active(); len(sched) == 1 {
				sched[0].task()
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			snap := g.Snapshot()
			for _, e := range snap.Inbox.Emails {
				if e.IsSpam() {
					g.ProcessAction(e.ID, ActionMarkSpam)
				} else if !e.Urgent {
					g.ProcessAction(e.ID, ActionRespond)
				}
			}
		}
	}()
	wg.Wait()

	snap := g.Snapshot()
	if snap.Inbox.Used != len(snap.Inbox.Emails) {
		t.Errorf("used=%d with %d emails", snap.Inbox.Used, len(snap.Inbox.Emails))
	}
	if len(g.sched.active()) > 1 {
		t.Errorf("more than one active schedule")
	}
}
