package game

import (
	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
)

// Passenger is one boarding passenger. Path[0] is the next hop; an empty
// path means the passenger has arrived where it was heading.
type Passenger struct {
	ID          models.PassengerID
	BaggageSize int
	HasBaggage  bool
	Path        []*cabin.Node
	Steps       int
	Facing      models.Direction
	State       models.PassengerState

	ticket    models.Ticket
	shuffle   *shuffle
	stowTicks int
}

func newPassenger(id models.PassengerID) *Passenger {
	return &Passenger{
		ID:     id,
		ticket: models.PlaceholderTicket(),
		Facing: models.North,
		State:  models.PassengerQueued,
	}
}

func (p *Passenger) Ticket() models.Ticket {
	return p.ticket
}

func (p *Passenger) Shuffling() bool {
	return p.shuffle != nil
}

func (p *Passenger) pathIDs() []models.NodeID {
	out := make([]models.NodeID, 0, len(p.Path))
	for _, n := range p.Path {
		out = append(out, n.ID)
	}
	return out
}
