package dal

import (
	"errors"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidTeamCount = errors.New("team count must be at least 2")
	ErrInvalidTeamIndex = errors.New("team index out of range")
)

// DraftDAL defines the interface for data access layer
type DraftDAL interface {
	GetState() (*models.EventState, error)
	Reset() error
	SetEvent(name string) (*models.EventState, error)
	AddPlayer(player *models.Player) (*models.Player, error)
	UpdatePlayer(player *models.Player) (*models.Player, error)
	DeletePlayer(id string) error
	SetTeamCount(count int) (*models.EventState, error)
	RenameTeam(index int, name string) (*models.EventState, error)
	SaveRoster(roster *models.Roster) error
	// LatestRoster returns ErrNotFound when event has never completed a draft
	LatestRoster(event string) (*models.Roster, error)
	Close() error
}
