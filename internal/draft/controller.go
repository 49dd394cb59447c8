package draft

import (
	"errors"
	"sync"
	"time"

	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// State is the controller's position in the draft lifecycle
type State string

const (
	StateIdle          State = "idle"
	StateReady         State = "ready"
	StatePicking       State = "picking"
	StateRevealing     State = "revealing"
	StateAutoFinishing State = "auto_finishing"
	StateComplete      State = "complete"
)

var (
	ErrNoDraft         = errors.New("no draft in progress")
	ErrDraftInProgress = errors.New("a draft is already in progress")
	ErrDraftComplete   = errors.New("draft already complete")
	ErrSpinInFlight    = errors.New("a spin is in flight")
	ErrNotReady        = errors.New("draft is not ready")
)

const (
	DefaultRevealDelay   = 3000 * time.Millisecond
	DefaultCompleteDelay = 1500 * time.Millisecond
)

// EventType names a controller notification
type EventType string

const (
	EventStart    EventType = "draft:start"
	EventBegin    EventType = "draft:begin"
	EventSpin     EventType = "draft:spin"
	EventPick     EventType = "draft:pick"
	EventComplete EventType = "draft:complete"
	EventReset    EventType = "draft:reset"
)

// Event is delivered to Options.OnEvent after every transition, in the
// order the transitions happened
type Event struct {
	Type   EventType
	State  State
	Spin   *SpinResult
	Pick   *models.PickRecord
	Roster *models.Roster
	// Mode is set on pick and complete events
	Mode models.DraftMode
}

// Options configures a Controller. Zero values get defaults.
type Options struct {
	Event         string
	Random        RandomSource
	Jitter        RandomSource
	Scheduler     Scheduler
	RevealDelay   time.Duration
	CompleteDelay time.Duration
	OnEvent       func(Event)
	Now           func() time.Time
}

// SpinResult describes a started spin
type SpinResult struct {
	Player     models.Player  `json:"player"`
	Candidates []WeightedTeam `json:"candidates"`
	Winner     WeightedTeam   `json:"winner"`
	Rotation   Rotation       `json:"rotation"`
	RevealIn   time.Duration  `json:"revealIn"`
}

// TierProgress is a team's count of one tier against the even-spread cap
type TierProgress struct {
	Tier    models.Tier `json:"tier"`
	Current int         `json:"current"`
	Cap     int         `json:"cap"`
}

// TeamProgress summarizes one team for live display
type TeamProgress struct {
	TeamID  int            `json:"teamId"`
	Name    string         `json:"name"`
	Members int            `json:"members"`
	Score   int            `json:"score"`
	Tiers   []TierProgress `json:"tiers"`
}

// View is a snapshot of the controller for display
type View struct {
	State      State               `json:"state"`
	Spinning   bool                `json:"spinning"`
	OnTheBlock *models.Player      `json:"onTheBlock,omitempty"`
	Remaining  int                 `json:"remaining"`
	Candidates []WeightedTeam      `json:"candidates"`
	Segments   []Segment           `json:"segments"`
	Teams      []models.Team       `json:"teams"`
	Progress   []TeamProgress      `json:"progress"`
	History    []models.PickRecord `json:"history"`
	Rotation   float64             `json:"rotation"`
	LastSpin   *SpinResult         `json:"lastSpin,omitempty"`
}

// Controller sequences the draft. It owns the session; every other
// component only sees copies.
type Controller struct {
	mu         sync.Mutex
	opts       Options
	state      State
	session    Session
	spinning   bool
	rotation   float64
	lastSpin   *SpinResult
	roster     *models.Roster
	pending    Timer
	generation int

	// outbox holds events in transition order until flush delivers them
	outbox []Event
	emitMu sync.Mutex
}

// NewController creates an idle controller
func NewController(opts Options) *Controller {
	if opts.Random == nil {
		opts.Random = NewSource()
	}
	if opts.Jitter == nil {
		opts.Jitter = NewSource()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewWallScheduler()
	}
	if opts.RevealDelay == 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	if opts.CompleteDelay == 0 {
		opts.CompleteDelay = DefaultCompleteDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts, state: StateIdle}
}

// SetEvent renames the event stamped on the next roster. It is refused
// while a draft is running.
func (c *Controller) SetEvent(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle && c.state != StateComplete {
		return ErrDraftInProgress
	}
	c.opts.Event = name
	return nil
}

// Start builds a new session. On error the controller is left unchanged.
func (c *Controller) Start(pool []models.Player, teamNames []string, teamCount int) (View, error) {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateComplete {
		c.mu.Unlock()
		return View{}, ErrDraftInProgress
	}

	session, err := NewSession(pool, teamNames, teamCount, c.opts.Random)
	if err != nil {
		c.mu.Unlock()
		logger.Warn("Draft start rejected", "error", err, "players", len(pool), "teams", teamCount)
		return View{}, err
	}

	c.generation++
	c.session = session
	c.state = StateReady
	c.spinning = false
	c.rotation = 0
	c.lastSpin = nil
	c.roster = nil
	view := c.viewLocked()
	c.enqueueLocked(Event{Type: EventStart, State: StateReady})
	c.mu.Unlock()

	logger.Info("Draft started", "players", len(pool), "teams", teamCount)
	c.flush()
	return view, nil
}

// Begin puts the first queued player on the block
func (c *Controller) Begin() (View, error) {
	c.mu.Lock()
	switch c.state {
	case StateReady:
		c.state = StatePicking
	case StatePicking:
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	default:
		c.mu.Unlock()
		return View{}, ErrNotReady
	}
	view := c.viewLocked()
	c.enqueueLocked(Event{Type: EventBegin, State: StatePicking})
	c.mu.Unlock()

	c.flush()
	return view, nil
}

// Spin selects the team for the player on the block and schedules the
// assignment after the reveal delay. A call made while another spin is in
// flight is ignored and reports accepted == false.
func (c *Controller) Spin() (result SpinResult, accepted bool, err error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		logger.Debug("Spin ignored, another spin is in flight")
		return SpinResult{}, false, nil
	}

	var events []Event
	switch c.state {
	case StateReady:
		c.state = StatePicking
		events = append(events, Event{Type: EventBegin, State: StatePicking})
	case StatePicking:
	case StateIdle:
		c.mu.Unlock()
		return SpinResult{}, false, ErrNoDraft
	default:
		c.mu.Unlock()
		return SpinResult{}, false, ErrDraftComplete
	}

	player, ok := c.session.OnTheBlock()
	if !ok {
		c.mu.Unlock()
		return SpinResult{}, false, ErrDraftComplete
	}
	candidates := c.session.Candidates()
	idx, err := Select(candidates, c.opts.Random)
	if err != nil {
		c.mu.Unlock()
		return SpinResult{}, false, err
	}
	rot := PlanRotation(c.rotation, candidates, idx, c.opts.Jitter)

	result = SpinResult{
		Player:     player,
		Candidates: candidates,
		Winner:     candidates[idx],
		Rotation:   rot,
		RevealIn:   c.opts.RevealDelay,
	}
	c.rotation = rot.Target
	c.lastSpin = &result
	c.spinning = true
	c.state = StateRevealing

	gen := c.generation
	teamID := candidates[idx].TeamID
	spin := result
	events = append(events, Event{Type: EventSpin, State: StateRevealing, Spin: &spin})
	c.enqueueLocked(events...)
	c.pending = c.opts.Scheduler.AfterFunc(c.opts.RevealDelay, func() {
		c.reveal(gen, teamID)
	})
	c.mu.Unlock()

	logger.Debug("Spin started", "player_id", player.ID, "tier", player.Tier, "team_id", teamID, "target", rot.Target)
	c.flush()
	return result, true, nil
}

// reveal commits the pick chosen by the spin of generation gen
func (c *Controller) reveal(gen, teamID int) {
	c.mu.Lock()
	if gen != c.generation || !c.spinning {
		c.mu.Unlock()
		return
	}

	next, pick, err := c.session.Assign(teamID)
	if err != nil {
		c.spinning = false
		c.state = StatePicking
		c.mu.Unlock()
		logger.Error("Failed to commit pick", "error", err, "team_id", teamID)
		return
	}
	c.session = next
	c.spinning = false
	c.pending = nil

	events := []Event{{Type: EventPick, Pick: &pick, Mode: models.ModeInteractive}}
	if !next.Done() {
		c.state = StatePicking
		events[0].State = StatePicking
	} else {
		events[0].State = StateRevealing
		c.pending = c.opts.Scheduler.AfterFunc(c.opts.CompleteDelay, func() {
			c.complete(gen)
		})
	}
	c.enqueueLocked(events...)
	c.mu.Unlock()

	logger.Debug("Pick committed", "pick", pick.Pick, "player_id", pick.Player.ID, "team_id", pick.TeamID)
	c.flush()
}

func (c *Controller) complete(gen int) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateRevealing || c.spinning {
		c.mu.Unlock()
		return
	}
	roster := c.finishLocked(models.ModeInteractive)
	c.enqueueLocked(Event{Type: EventComplete, State: StateComplete, Roster: &roster, Mode: roster.Mode})
	c.mu.Unlock()

	logger.Info("Draft complete", "mode", roster.Mode, "teams", len(roster.Teams))
	c.flush()
}

// AutoFinish resolves every remaining player at once with the same
// selection rules and publishes the final roster. When the last pick was
// already revealed interactively it only skips the terminal delay, and the
// roster keeps ModeInteractive.
func (c *Controller) AutoFinish() (models.Roster, error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return models.Roster{}, ErrSpinInFlight
	}
	switch c.state {
	case StateReady, StatePicking, StateRevealing:
	case StateIdle:
		c.mu.Unlock()
		return models.Roster{}, ErrNoDraft
	default:
		c.mu.Unlock()
		return models.Roster{}, ErrDraftComplete
	}

	prev := c.state
	c.state = StateAutoFinishing
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	work := c.session.Clone()
	var events []Event
	for !work.Done() {
		next, pick, err := work.Resolve(c.opts.Random)
		if err != nil {
			c.state = prev
			c.mu.Unlock()
			logger.Error("Auto-finish failed", "error", err)
			return models.Roster{}, err
		}
		work = next
		events = append(events, Event{Type: EventPick, State: StateAutoFinishing, Pick: &pick, Mode: models.ModeAuto})
	}
	mode := models.ModeAuto
	if len(events) == 0 {
		mode = models.ModeInteractive
	}
	c.session = work
	roster := c.finishLocked(mode)
	events = append(events, Event{Type: EventComplete, State: StateComplete, Roster: &roster, Mode: mode})
	c.enqueueLocked(events...)
	c.mu.Unlock()

	logger.Info("Draft auto-finished", "picks", len(events)-1, "mode", mode, "teams", len(roster.Teams))
	c.flush()
	return roster, nil
}

// Reset cancels any scheduled work and returns to idle
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.generation++
	c.state = StateIdle
	c.session = Session{}
	c.spinning = false
	c.rotation = 0
	c.lastSpin = nil
	c.roster = nil
	c.enqueueLocked(Event{Type: EventReset, State: StateIdle})
	c.mu.Unlock()

	logger.Info("Draft reset")
	c.flush()
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns a snapshot of the live draft
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Roster returns the final roster once the draft is complete
func (c *Controller) Roster() (models.Roster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roster == nil {
		return models.Roster{}, false
	}
	return cloneRoster(*c.roster), true
}

func (c *Controller) finishLocked(mode models.DraftMode) models.Roster {
	snapshot := c.session.Clone()
	roster := models.Roster{
		Event:       c.opts.Event,
		Mode:        mode,
		Teams:       snapshot.Teams,
		History:     snapshot.History,
		CompletedAt: c.opts.Now(),
	}
	c.roster = &roster
	c.state = StateComplete
	c.pending = nil
	return cloneRoster(roster)
}

func (c *Controller) viewLocked() View {
	snapshot := c.session.Clone()
	view := View{
		State:     c.state,
		Spinning:  c.spinning,
		Remaining: len(snapshot.Queue),
		Teams:     snapshot.Teams,
		History:   snapshot.History,
		Rotation:  c.rotation,
		LastSpin:  c.lastSpin,
	}
	if player, ok := snapshot.OnTheBlock(); ok && c.state != StateIdle {
		view.OnTheBlock = &player
		view.Candidates = snapshot.Candidates()
		view.Segments = Segments(view.Candidates)
	}
	for _, t := range snapshot.Teams {
		progress := TeamProgress{TeamID: t.ID, Name: t.Name, Members: len(t.Members), Score: t.Score}
		for _, tier := range models.Tiers {
			progress.Tiers = append(progress.Tiers, TierProgress{
				Tier:    tier,
				Current: t.Stats[tier],
				Cap:     CapPerTeam(snapshot.TierTotals[tier], snapshot.TeamCount),
			})
		}
		view.Progress = append(view.Progress, progress)
	}
	return view
}

func (c *Controller) enqueueLocked(events ...Event) {
	if c.opts.OnEvent == nil {
		return
	}
	c.outbox = append(c.outbox, events...)
}

// flush delivers queued events outside c.mu. One goroutine delivers at a
// time; a caller that finds delivery in progress leaves its events to that
// goroutine, which checks the outbox again after releasing emitMu.
func (c *Controller) flush() {
	for {
		if !c.emitMu.TryLock() {
			return
		}
		for {
			c.mu.Lock()
			batch := c.outbox
			c.outbox = nil
			c.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, ev := range batch {
				c.opts.OnEvent(ev)
			}
		}
		c.emitMu.Unlock()

		c.mu.Lock()
		empty := len(c.outbox) == 0
		c.mu.Unlock()
		if empty {
			return
		}
	}
}

func cloneRoster(r models.Roster) models.Roster {
	teams := make([]models.Team, len(r.Teams))
	for i, t := range r.Teams {
		teams[i] = t.Clone()
	}
	history := make([]models.PickRecord, len(r.History))
	copy(history, r.History)
	r.Teams = teams
	r.History = history
	return r
}
