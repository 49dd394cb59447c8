package dal

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// DefaultEvent is the event a fresh registry starts with
const DefaultEvent = "Cricket"

// positionOptions lists the playing positions offered per sport
var positionOptions = map[string][]string{
	"Cricket":  {"All-rounder", "Batsman", "Bowler", "Wicket Keeper"},
	"Football": {"Striker", "Midfielder", "Defender", "Goalkeeper"},
}

var batchOptions = []string{"Batch 15", "Batch 16", "Batch 17", "Batch 18", "Batch 19", "Batch 20"}

// PositionsFor returns the positions offered for event. Unknown events get
// every known position.
func PositionsFor(event string) []string {
	if p, ok := positionOptions[event]; ok {
		return append([]string(nil), p...)
	}
	var all []string
	for _, sport := range []string{"Cricket", "Football"} {
		all = append(all, positionOptions[sport]...)
	}
	return all
}

// Batches returns the batch labels offered at registration
func Batches() []string {
	return append([]string(nil), batchOptions...)
}

func defaultTeamName(i int) string {
	return fmt.Sprintf("Team %c", 'A'+rune(i%26))
}

func defaultState(event string) *models.EventState {
	return &models.EventState{
		Event:     event,
		Positions: PositionsFor(event),
		Batches:   Batches(),
		Players:   []models.Player{},
		TeamCount: 2,
		TeamNames: []string{"Team Alpha", "Team Beta"},
	}
}

// resizeTeamNames keeps existing names and fills new slots with defaults
func resizeTeamNames(names []string, count int) []string {
	out := make([]string, count)
	for i := range out {
		if i < len(names) && names[i] != "" {
			out[i] = names[i]
		} else {
			out[i] = defaultTeamName(i)
		}
	}
	return out
}

func genID() string {
	return uuid.NewString()
}

func cloneState(s *models.EventState) *models.EventState {
	return &models.EventState{
		Event:     s.Event,
		Positions: append([]string(nil), s.Positions...),
		Batches:   append([]string(nil), s.Batches...),
		Players:   append([]models.Player{}, s.Players...),
		TeamCount: s.TeamCount,
		TeamNames: append([]string(nil), s.TeamNames...),
	}
}
