package models

import "time"

// Tier represents the player skill tier
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Tiers lists every tier in draft priority order (highest value first)
var Tiers = []Tier{TierA, TierB, TierC}

// Value returns the points a player of this tier adds to a team score
func (t Tier) Value() int {
	switch t {
	case TierA:
		return 100
	case TierB:
		return 50
	case TierC:
		return 10
	default:
		return 0
	}
}

// Valid reports whether t is one of the known tiers
func (t Tier) Valid() bool {
	return t == TierA || t == TierB || t == TierC
}

// Player represents a registered participant
type Player struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name" validate:"required,max=80"`
	Position string `json:"position" yaml:"position" validate:"max=40"`
	Tier     Tier   `json:"tier" yaml:"tier" validate:"required,oneof=A B C"`
	Batch    string `json:"batch" yaml:"batch" validate:"max=40"`
	Photo    string `json:"photo,omitempty" yaml:"photo,omitempty" validate:"max=512"`
}

// TierCounts maps a tier to the number of players of that tier
type TierCounts map[Tier]int

// Clone returns an independent copy of the counts
func (c TierCounts) Clone() TierCounts {
	out := make(TierCounts, len(Tiers))
	for _, t := range Tiers {
		out[t] = c[t]
	}
	return out
}

// Total returns the sum of all counts
func (c TierCounts) Total() int {
	n := 0
	for _, t := range Tiers {
		n += c[t]
	}
	return n
}

// Team represents one team during and after a draft
type Team struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Members []Player   `json:"members"`
	Stats   TierCounts `json:"stats"`
	Score   int        `json:"score"`
}

// NewTeam creates an empty team
func NewTeam(id int, name string) Team {
	return Team{
		ID:      id,
		Name:    name,
		Members: []Player{},
		Stats:   TierCounts{TierA: 0, TierB: 0, TierC: 0},
	}
}

// Clone returns a copy of the team that shares no mutable state with t
func (t Team) Clone() Team {
	members := make([]Player, len(t.Members))
	copy(members, t.Members)
	return Team{
		ID:      t.ID,
		Name:    t.Name,
		Members: members,
		Stats:   t.Stats.Clone(),
		Score:   t.Score,
	}
}

// PickRecord is one completed assignment
type PickRecord struct {
	Pick     int    `json:"pick"`
	Player   Player `json:"player"`
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName"`
}

// DraftMode tells how a roster was produced
type DraftMode string

const (
	ModeInteractive DraftMode = "interactive"
	ModeAuto        DraftMode = "auto"
)

// Roster is the final result of a draft
type Roster struct {
	Event       string       `json:"event"`
	Mode        DraftMode    `json:"mode"`
	Teams       []Team       `json:"teams"`
	History     []PickRecord `json:"history"`
	CompletedAt time.Time    `json:"completedAt"`
}

// EventState is the host registry for the current event
type EventState struct {
	Event     string   `json:"event"`
	Positions []string `json:"positions"`
	Batches   []string `json:"batches"`
	Players   []Player `json:"players"`
	TeamCount int      `json:"teamCount"`
	TeamNames []string `json:"teamNames"`
}
