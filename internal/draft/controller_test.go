package draft

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, et := range r.types() {
		if et == t {
			n++
		}
	}
	return n
}

func newTestController(seed uint64) (*Controller, *ManualScheduler, *recorder) {
	ms := NewManualScheduler()
	rec := &recorder{}
	c := NewController(Options{
		Event:     "Test Cup",
		Random:    NewSeededSource(seed),
		Jitter:    NewSeededSource(seed + 1000),
		Scheduler: ms,
		OnEvent:   rec.record,
		Now:       func() time.Time { return fixedNow },
	})
	return c, ms, rec
}

// spinToEnd drives an interactive draft until the last reveal
func spinToEnd(t *testing.T, c *Controller, ms *ManualScheduler) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		view := c.View()
		if view.OnTheBlock == nil {
			return
		}
		_, accepted, err := c.Spin()
		require.NoError(t, err)
		require.True(t, accepted)
		ms.Advance(DefaultRevealDelay)
	}
	t.Fatal("draft did not finish")
}

func TestStartRejectsInsufficientPlayers(t *testing.T) {
	c, _, rec := newTestController(1)

	_, err := c.Start(makePool(1, 0, 0), nil, 2)
	require.ErrorIs(t, err, ErrInsufficientPlayers)
	require.Equal(t, StateIdle, c.State())
	require.Empty(t, rec.types())
}

func TestStartBuildsReadyView(t *testing.T) {
	c, _, rec := newTestController(1)

	view, err := c.Start(makePool(3, 2, 1), []string{"Red", "Blue"}, 2)
	require.NoError(t, err)
	require.Equal(t, StateReady, view.State)
	require.Equal(t, 6, view.Remaining)
	require.NotNil(t, view.OnTheBlock)
	require.Equal(t, models.TierA, view.OnTheBlock.Tier)
	require.Len(t, view.Segments, 2)
	require.Equal(t, "Red", view.Teams[0].Name)
	require.Equal(t, []TierProgress{
		{Tier: models.TierA, Current: 0, Cap: 2},
		{Tier: models.TierB, Current: 0, Cap: 1},
		{Tier: models.TierC, Current: 0, Cap: 1},
	}, view.Progress[1].Tiers)
	require.Equal(t, []EventType{EventStart}, rec.types())

	_, err = c.Start(makePool(3, 2, 1), nil, 2)
	require.ErrorIs(t, err, ErrDraftInProgress)
}

func TestInteractiveSpinRevealsAfterDelay(t *testing.T) {
	c, ms, rec := newTestController(3)
	_, err := c.Start(makePool(2, 1, 1), nil, 2)
	require.NoError(t, err)

	result, accepted, err := c.Spin()
	require.NoError(t, err)
	require.True(t, accepted)
	require.Equal(t, DefaultRevealDelay, result.RevealIn)
	require.Equal(t, result.Winner.TeamID, result.Rotation.Winner.TeamID)
	require.True(t, result.Rotation.Winner.Contains(result.Rotation.PointerAngle()))

	// a second spin while the first is in flight is ignored
	_, accepted, err = c.Spin()
	require.NoError(t, err)
	require.False(t, accepted)

	_, err = c.AutoFinish()
	require.ErrorIs(t, err, ErrSpinInFlight)

	ms.Advance(DefaultRevealDelay - time.Millisecond)
	view := c.View()
	require.Equal(t, StateRevealing, view.State)
	require.True(t, view.Spinning)
	require.Empty(t, view.History)

	ms.Advance(time.Millisecond)
	view = c.View()
	require.Equal(t, StatePicking, view.State)
	require.False(t, view.Spinning)
	require.Len(t, view.History, 1)
	require.Equal(t, result.Player.ID, view.History[0].Player.ID)
	require.Equal(t, result.Winner.TeamID, view.History[0].TeamID)
	require.Equal(t, 3, view.Remaining)

	require.Equal(t, []EventType{EventStart, EventBegin, EventSpin, EventPick}, rec.types())
}

func TestInteractiveDraftCompletesAfterTerminalDelay(t *testing.T) {
	c, ms, rec := newTestController(4)
	pool := makePool(3, 2, 1)
	_, err := c.Start(pool, nil, 2)
	require.NoError(t, err)

	spinToEnd(t, c, ms)

	require.Equal(t, StateRevealing, c.State())
	_, ok := c.Roster()
	require.False(t, ok)
	_, _, err = c.Spin()
	require.ErrorIs(t, err, ErrDraftComplete)

	ms.Advance(DefaultCompleteDelay - time.Millisecond)
	require.Equal(t, StateRevealing, c.State())
	ms.Advance(time.Millisecond)
	require.Equal(t, StateComplete, c.State())

	roster, ok := c.Roster()
	require.True(t, ok)
	require.Equal(t, models.ModeInteractive, roster.Mode)
	require.Equal(t, "Test Cup", roster.Event)
	require.Equal(t, fixedNow, roster.CompletedAt)
	require.Len(t, roster.History, len(pool))
	require.Equal(t, len(pool), rec.count(EventPick))
	require.Equal(t, 1, rec.count(EventComplete))

	var members []models.Player
	for _, team := range roster.Teams {
		members = append(members, team.Members...)
	}
	require.Equal(t, sortedIDs(pool), sortedIDs(members))
	require.Zero(t, ms.Pending())
}

func TestAutoFinishMatchesInteractiveOutcome(t *testing.T) {
	for seed := uint64(1); seed <= 15; seed++ {
		pool := fakePool(seed, 12+int(seed%9))
		teamCount := 2 + int(seed%4)

		interactive, ms, _ := newTestController(seed)
		_, err := interactive.Start(pool, nil, teamCount)
		require.NoError(t, err)
		spinToEnd(t, interactive, ms)
		ms.Advance(DefaultCompleteDelay)
		spun, ok := interactive.Roster()
		require.True(t, ok)

		auto, _, _ := newTestController(seed)
		_, err = auto.Start(pool, nil, teamCount)
		require.NoError(t, err)
		finished, err := auto.AutoFinish()
		require.NoError(t, err)

		require.Equal(t, models.ModeAuto, finished.Mode)
		spun.Mode = finished.Mode
		if diff := cmp.Diff(spun, finished); diff != "" {
			t.Fatalf("seed %d: auto-finish diverged from interactive draft (-spun +auto):\n%s", seed, diff)
		}
	}
}

func TestAutoFinishMidDraft(t *testing.T) {
	c, ms, rec := newTestController(6)
	pool := makePool(4, 3, 2)
	_, err := c.Start(pool, nil, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := c.Spin()
		require.NoError(t, err)
		ms.Advance(DefaultRevealDelay)
	}

	roster, err := c.AutoFinish()
	require.NoError(t, err)
	require.Equal(t, StateComplete, c.State())
	require.Len(t, roster.History, len(pool))
	require.Equal(t, len(pool), rec.count(EventPick))

	// interactive picks stay at the tail of the most-recent-first history
	require.Equal(t, 1, roster.History[len(pool)-1].Pick)

	for _, team := range roster.Teams {
		for _, tier := range models.Tiers {
			require.LessOrEqual(t, team.Stats[tier], CapPerTeam(TierTotals(pool)[tier], 3))
		}
	}

	_, err = c.AutoFinish()
	require.ErrorIs(t, err, ErrDraftComplete)
}

func TestAutoFinishFromReady(t *testing.T) {
	c, _, rec := newTestController(7)
	_, err := c.Start(makePool(2, 2, 2), nil, 2)
	require.NoError(t, err)

	roster, err := c.AutoFinish()
	require.NoError(t, err)
	require.Len(t, roster.History, 6)
	types := rec.types()
	require.Equal(t, EventComplete, types[len(types)-1])
}

func TestResetCancelsPendingReveal(t *testing.T) {
	c, ms, rec := newTestController(8)
	_, err := c.Start(makePool(2, 2, 0), nil, 2)
	require.NoError(t, err)
	_, _, err = c.Spin()
	require.NoError(t, err)
	require.Equal(t, 1, ms.Pending())

	c.Reset()
	require.Equal(t, StateIdle, c.State())
	require.Zero(t, ms.Pending())

	ms.Advance(time.Minute)
	view := c.View()
	require.Equal(t, StateIdle, view.State)
	require.Empty(t, view.History)
	require.Nil(t, view.OnTheBlock)
	require.Zero(t, rec.count(EventPick))
	require.Equal(t, EventReset, rec.types()[len(rec.types())-1])
}

func TestStaleCallbackIsIgnoredAfterRestart(t *testing.T) {
	ms := NewManualScheduler()
	c := NewController(Options{Random: NewSeededSource(9), Jitter: NewSeededSource(10), Scheduler: &leakyScheduler{ms}})
	_, err := c.Start(makePool(2, 2, 0), nil, 2)
	require.NoError(t, err)
	_, _, err = c.Spin()
	require.NoError(t, err)

	// the timer survives Reset because Stop is a no-op
	c.Reset()
	_, err = c.Start(makePool(2, 2, 0), nil, 2)
	require.NoError(t, err)

	ms.Advance(DefaultRevealDelay)
	view := c.View()
	require.Equal(t, StateReady, view.State)
	require.Empty(t, view.History)
	require.Equal(t, 4, view.Remaining)
}

func TestControllerErrorsOutsideDraft(t *testing.T) {
	c, _, _ := newTestController(1)

	_, _, err := c.Spin()
	require.ErrorIs(t, err, ErrNoDraft)
	_, err = c.AutoFinish()
	require.ErrorIs(t, err, ErrNoDraft)
	_, err = c.Begin()
	require.ErrorIs(t, err, ErrNotReady)
	_, ok := c.Roster()
	require.False(t, ok)
}

func TestBeginMovesReadyToPicking(t *testing.T) {
	c, _, rec := newTestController(1)
	_, err := c.Start(makePool(2, 0, 0), nil, 2)
	require.NoError(t, err)

	view, err := c.Begin()
	require.NoError(t, err)
	require.Equal(t, StatePicking, view.State)

	// repeated Begin is harmless
	_, err = c.Begin()
	require.NoError(t, err)
	require.Equal(t, []EventType{EventStart, EventBegin}, rec.types())
}

func TestRestartAfterComplete(t *testing.T) {
	c, _, _ := newTestController(2)
	_, err := c.Start(makePool(2, 0, 0), nil, 2)
	require.NoError(t, err)
	_, err = c.AutoFinish()
	require.NoError(t, err)

	view, err := c.Start(makePool(3, 0, 0), nil, 3)
	require.NoError(t, err)
	require.Equal(t, StateReady, view.State)
	_, ok := c.Roster()
	require.False(t, ok)
}

func TestRosterIsACopy(t *testing.T) {
	c, _, _ := newTestController(2)
	_, err := c.Start(makePool(2, 2, 0), nil, 2)
	require.NoError(t, err)
	_, err = c.AutoFinish()
	require.NoError(t, err)

	first, _ := c.Roster()
	first.Teams[0].Name = "mutated"
	first.Teams[0].Members[0].Name = "mutated"

	second, _ := c.Roster()
	require.NotEqual(t, "mutated", second.Teams[0].Name)
	require.NotEqual(t, "mutated", second.Teams[0].Members[0].Name)
}

// leakyScheduler hands out timers that cannot be stopped
type leakyScheduler struct{ ms *ManualScheduler }

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (l *leakyScheduler) AfterFunc(d time.Duration, f func()) Timer {
	l.ms.AfterFunc(d, f)
	return leakyTimer{}
}

func TestSetEventStampsNextRoster(t *testing.T) {
	c, _, _ := newTestController(4)
	require.NoError(t, c.SetEvent("Football"))

	_, err := c.Start(makePool(2, 1, 1), nil, 2)
	require.NoError(t, err)
	require.ErrorIs(t, c.SetEvent("Kabaddi"), ErrDraftInProgress)

	roster, err := c.AutoFinish()
	require.NoError(t, err)
	require.Equal(t, "Football", roster.Event)
	require.NoError(t, c.SetEvent("Kabaddi"))
}

func TestAutoFinishAfterLastRevealKeepsInteractiveMode(t *testing.T) {
	c, ms, rec := newTestController(8)
	pool := makePool(2, 1, 1)
	_, err := c.Start(pool, nil, 2)
	require.NoError(t, err)
	spinToEnd(t, c, ms)
	require.Equal(t, StateRevealing, c.State())

	roster, err := c.AutoFinish()
	require.NoError(t, err)
	require.Equal(t, models.ModeInteractive, roster.Mode)
	require.Len(t, roster.History, len(pool))
	require.Equal(t, StateComplete, c.State())
	require.Zero(t, ms.Pending())

	require.Equal(t, len(pool), rec.count(EventPick))
	require.Equal(t, 1, rec.count(EventComplete))
	last := rec.events[len(rec.events)-1]
	require.Equal(t, models.ModeInteractive, last.Mode)
}

// goScheduler runs every task at once on its own goroutine
type goScheduler struct{}

func (goScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	go f()
	return leakyTimer{}
}

func TestEventsKeepTransitionOrderAcrossGoroutines(t *testing.T) {
	var (
		c   *Controller
		mu  sync.Mutex
		got []EventType
	)
	c = NewController(Options{
		Random:    NewSeededSource(3),
		Jitter:    NewSeededSource(4),
		Scheduler: goScheduler{},
		OnEvent: func(ev Event) {
			mu.Lock()
			got = append(got, ev.Type)
			mu.Unlock()
			if ev.Type != EventBegin {
				return
			}
			// hold delivery until the reveal has committed the pick
			require.Eventually(t, func() bool { return c.State() == StatePicking }, time.Second, time.Millisecond)
		},
	})
	_, err := c.Start(makePool(1, 1, 1), nil, 2)
	require.NoError(t, err)

	_, accepted, err := c.Spin()
	require.NoError(t, err)
	require.True(t, accepted)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	}, time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []EventType{EventStart, EventBegin, EventSpin, EventPick}, got)
}
