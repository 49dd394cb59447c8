package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Billy-Davies-2/team-draft/internal/clickhouse"
	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/metrics"
	"github.com/Billy-Davies-2/team-draft/internal/models"
	"github.com/Billy-Davies-2/team-draft/internal/pubsub"
)

// ErrInvalid marks a request rejected by input validation
var ErrInvalid = errors.New("invalid input")

// MaxTeams bounds the team count accepted from clients
const MaxTeams = 32

// Options wires a Service. DAL and PubSub are required.
type Options struct {
	DAL       dal.DraftDAL
	PubSub    *pubsub.PubSub
	Analytics clickhouse.Recorder
	Metrics   *metrics.Recorder
	// Draft configures the controller; OnEvent is owned by the service
	Draft draft.Options
}

// Service runs the draft controller against the player registry and fans
// controller events out to subscribers, metrics and storage
type Service struct {
	dal       dal.DraftDAL
	ps        *pubsub.PubSub
	analytics clickhouse.Recorder
	metrics   *metrics.Recorder
	validate  *validator.Validate
	ctl       *draft.Controller
}

// New creates a Service with an idle controller
func New(opts Options) *Service {
	s := &Service{
		dal:       opts.DAL,
		ps:        opts.PubSub,
		analytics: opts.Analytics,
		metrics:   opts.Metrics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	dopts := opts.Draft
	dopts.OnEvent = s.handleEvent
	s.ctl = draft.NewController(dopts)
	return s
}

// EventPayload is the pub/sub body of a controller event
type EventPayload struct {
	State  draft.State        `json:"state"`
	Mode   models.DraftMode   `json:"mode,omitempty"`
	Spin   *draft.SpinResult  `json:"spin,omitempty"`
	Pick   *models.PickRecord `json:"pick,omitempty"`
	Roster *models.Roster     `json:"roster,omitempty"`
}

func (s *Service) handleEvent(ev draft.Event) {
	if s.metrics != nil {
		s.metrics.Observe(ev)
	}
	if ev.Type == draft.EventComplete && ev.Roster != nil {
		if err := s.dal.SaveRoster(ev.Roster); err != nil {
			logger.Error("Failed to save roster", "error", err, "event", ev.Roster.Event)
		}
	}
	s.ps.Publish(pubsub.NewEvent(string(ev.Type), EventPayload{
		State:  ev.State,
		Mode:   ev.Mode,
		Spin:   ev.Spin,
		Pick:   ev.Pick,
		Roster: ev.Roster,
	}))
}

// State returns the player registry
func (s *Service) State(ctx context.Context) (*models.EventState, error) {
	return s.dal.GetState()
}

// SetEvent switches the event being drafted
func (s *Service) SetEvent(ctx context.Context, name string) (*models.EventState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalid)
	}
	if err := s.ctl.SetEvent(name); err != nil {
		return nil, err
	}
	state, err := s.dal.SetEvent(name)
	if err != nil {
		return nil, err
	}
	s.ps.Publish(pubsub.NewEvent(pubsub.EventUpdate, map[string]string{"event": state.Event}))
	return state, nil
}

// AddPlayer validates and registers a player
func (s *Service) AddPlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	if err := s.checkPlayer(&p); err != nil {
		return nil, err
	}
	added, err := s.dal.AddPlayer(&p)
	if err != nil {
		return nil, err
	}
	logger.Info("Player registered", "player_id", added.ID, "tier", added.Tier)
	s.ps.Publish(pubsub.NewEvent(pubsub.PlayersAdd, added))
	return added, nil
}

// UpdatePlayer validates and replaces a registered player
func (s *Service) UpdatePlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalid)
	}
	if err := s.checkPlayer(&p); err != nil {
		return nil, err
	}
	updated, err := s.dal.UpdatePlayer(&p)
	if err != nil {
		return nil, err
	}
	s.ps.Publish(pubsub.NewEvent(pubsub.PlayersUpdate, updated))
	return updated, nil
}

// DeletePlayer removes a registered player
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	if err := s.dal.DeletePlayer(id); err != nil {
		return err
	}
	s.ps.Publish(pubsub.NewEvent(pubsub.PlayersDelete, map[string]string{"id": id}))
	return nil
}

// SetTeamCount changes how many teams the next draft forms
func (s *Service) SetTeamCount(ctx context.Context, count int) (*models.EventState, error) {
	if count > MaxTeams {
		return nil, fmt.Errorf("%w: at most %d teams", ErrInvalid, MaxTeams)
	}
	state, err := s.dal.SetTeamCount(count)
	if err != nil {
		return nil, err
	}
	s.publishTeams(state)
	return state, nil
}

// RenameTeam sets the display name of team index
func (s *Service) RenameTeam(ctx context.Context, index int, name string) (*models.EventState, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 60 {
		return nil, fmt.Errorf("%w: team name must be 1-60 characters", ErrInvalid)
	}
	state, err := s.dal.RenameTeam(index, name)
	if err != nil {
		return nil, err
	}
	s.publishTeams(state)
	return state, nil
}

func (s *Service) publishTeams(state *models.EventState) {
	s.ps.Publish(pubsub.NewEvent(pubsub.TeamsUpdate, map[string]any{
		"teamCount": state.TeamCount,
		"teamNames": state.TeamNames,
	}))
}

// ResetRegistry clears players and rosters and cancels any running draft
func (s *Service) ResetRegistry(ctx context.Context) error {
	s.ctl.Reset()
	return s.dal.Reset()
}

// StartDraft snapshots the registry and builds a new draft session
func (s *Service) StartDraft(ctx context.Context) (draft.View, error) {
	state, err := s.dal.GetState()
	if err != nil {
		return draft.View{}, err
	}
	if err := s.ctl.SetEvent(state.Event); err != nil {
		return draft.View{}, err
	}
	return s.ctl.Start(state.Players, state.TeamNames, state.TeamCount)
}

// Begin puts the first player on the block
func (s *Service) Begin(ctx context.Context) (draft.View, error) {
	return s.ctl.Begin()
}

// Spin starts an interactive pick
func (s *Service) Spin(ctx context.Context) (draft.SpinResult, bool, error) {
	return s.ctl.Spin()
}

// AutoFinish resolves the rest of the draft at once
func (s *Service) AutoFinish(ctx context.Context) (models.Roster, error) {
	return s.ctl.AutoFinish()
}

// ResetDraft abandons the running draft
func (s *Service) ResetDraft(ctx context.Context) {
	s.ctl.Reset()
}

// View returns the live draft snapshot
func (s *Service) View(ctx context.Context) draft.View {
	return s.ctl.View()
}

// Roster returns the final roster of the current draft, falling back to
// the last stored roster for the event
func (s *Service) Roster(ctx context.Context) (*models.Roster, error) {
	if roster, ok := s.ctl.Roster(); ok {
		return &roster, nil
	}
	state, err := s.dal.GetState()
	if err != nil {
		return nil, err
	}
	return s.dal.LatestRoster(state.Event)
}

// TeamScores reads per-team scores of the event's latest recorded draft
// from the analytics store
func (s *Service) TeamScores(ctx context.Context) (map[string]int, error) {
	if s.analytics == nil {
		return nil, ErrAnalyticsDisabled
	}
	state, err := s.dal.GetState()
	if err != nil {
		return nil, err
	}
	return s.analytics.TeamScores(ctx, state.Event)
}

// Ready reports whether the backing stores answer
func (s *Service) Ready(ctx context.Context) error {
	if _, err := s.dal.GetState(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if s.analytics != nil {
		if err := s.analytics.Ping(ctx); err != nil {
			return fmt.Errorf("analytics: %w", err)
		}
	}
	return nil
}

func (s *Service) checkPlayer(p *models.Player) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Tier = models.Tier(strings.ToUpper(strings.TrimSpace(string(p.Tier))))
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
