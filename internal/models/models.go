package models

import (
	"fmt"
	"strings"
)

type NodeID int

type PassengerID int

// Direction is one of the four cardinal directions a seat, compartment or
// passenger can face.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts a single letter or the full name, in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NORTH":
		return North, nil
	case "E", "EAST":
		return East, nil
	case "S", "SOUTH":
		return South, nil
	case "W", "WEST":
		return West, nil
	}
	return North, fmt.Errorf("bad direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const placeholderClass = "fake"

type Ticket struct {
	Class  string `json:"class"`
	Aisle  int    `json:"aisle"`
	Letter string `json:"letter"`
}

// PlaceholderTicket is the construction default for a passenger. It never
// matches a real seat.
func PlaceholderTicket() Ticket {
	return Ticket{Class: placeholderClass, Aisle: -1, Letter: "$"}
}

func (t Ticket) IsPlaceholder() bool {
	return t.Class == placeholderClass && t.Aisle == -1
}

func (t Ticket) String() string {
	return fmt.Sprintf("{%s: %d%s}", t.Class, t.Aisle, t.Letter)
}

type Seat struct {
	Class  string    `json:"class"`
	Aisle  int       `json:"aisle"`
	Letter string    `json:"letter"`
	Facing Direction `json:"direction"`
}

// Matches reports whether the ticket was issued for this seat.
func (s Seat) Matches(t Ticket) bool {
	if t.IsPlaceholder() {
		return false
	}
	return s.Class == t.Class && s.Aisle == t.Aisle && s.Letter == t.Letter
}

type PassengerState string

const (
	PassengerQueued         PassengerState = "queued"
	PassengerWalking        PassengerState = "walking"
	PassengerStowingBaggage PassengerState = "stowing_baggage"
	PassengerShuffling      PassengerState = "shuffling"
	PassengerSeated         PassengerState = "seated"
)

type Stats struct {
	TotalSteps int `json:"total_steps"`
	Shuffles   int `json:"shuffles"`
	Ticks      int `json:"ticks"`
	// SearchedNodes counts nodes expanded by route searches during the run.
	SearchedNodes int `json:"searched_nodes"`
}

type PassengerView struct {
	ID         PassengerID    `json:"id"`
	Ticket     Ticket         `json:"ticket"`
	State      PassengerState `json:"state"`
	NodeID     *NodeID        `json:"node_id,omitempty"`
	Path       []NodeID       `json:"path"`
	Steps      int            `json:"steps"`
	Facing     Direction      `json:"facing"`
	HasBaggage bool           `json:"has_baggage"`
}

type SimState struct {
	RunID        string          `json:"run_id"`
	Level        string          `json:"level"`
	Tick         int             `json:"tick"`
	IsRunning    bool            `json:"is_running"`
	Speed        int             `json:"speed"`
	Complete     bool            `json:"complete"`
	Stats        Stats           `json:"stats"`
	Queue        []PassengerID   `json:"queue"`
	Active       []PassengerID   `json:"active"`
	Passengers   []PassengerView `json:"passengers"`
	RecentEvents []string        `json:"recent_events"`
	Error        string          `json:"error,omitempty"`
}
