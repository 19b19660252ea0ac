package cabin

import (
	"errors"
	"fmt"

	"cabin_boarding/internal/models"
)

var ErrCompartmentFull = errors.New("compartment full")

// BaggageCompartment is an overhead bin. Used never exceeds Max.
type BaggageCompartment struct {
	Direction models.Direction
	Max       int

	used  int
	items map[models.PassengerID]int
}

func newCompartment(dir models.Direction, max int) *BaggageCompartment {
	return &BaggageCompartment{
		Direction: dir,
		Max:       max,
		items:     make(map[models.PassengerID]int),
	}
}

func (c *BaggageCompartment) Used() int {
	return c.used
}

func (c *BaggageCompartment) HasRoom(size int) bool {
	return c.Max-c.used >= size
}

// Store puts owner's baggage of the given size into the compartment.
func (c *BaggageCompartment) Store(owner models.PassengerID, size int) error {
	if size < 0 {
		return fmt.Errorf("passenger %d: negative baggage size %d", owner, size)
	}
	if !c.HasRoom(size) {
		return fmt.Errorf("passenger %d size %d into %d/%d: %w", owner, size, c.used, c.Max, ErrCompartmentFull)
	}
	c.used += size
	c.items[owner] += size
	return nil
}

// StoredBy returns how much baggage owner keeps in this compartment.
func (c *BaggageCompartment) StoredBy(owner models.PassengerID) int {
	return c.items[owner]
}
