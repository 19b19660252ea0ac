package game

import (
	"cmp"
	"fmt"
	"math/rand"
	"strings"
)

// Queue ordering names accepted by ApplyOrdering.
const (
	OrderLevel       = "level"
	OrderRandom      = "random"
	OrderFrontToBack = "front_to_back"
	OrderBackToFront = "back_to_front"
	OrderOutToIn     = "out_to_in"
	OrderSteffen     = "steffen"
)

// Seat letters in the order they should board within a row when filling
// from the window inwards on a six-abreast cabin.
var (
	windowFirstRank = map[string]int{"A": 0, "F": 0, "B": 1, "E": 1, "D": 2, "C": 3}
	outToInRank     = map[string]int{"A": 0, "F": 1, "B": 2, "E": 3, "D": 4, "C": 5}
)

func letterRank(ranks map[string]int, letter string) int {
	if r, ok := ranks[strings.ToUpper(letter)]; ok {
		return r
	}
	return len(ranks)
}

func tiebreak(a, b QueueEntry) int {
	if c := strings.Compare(a.Ticket.Letter, b.Ticket.Letter); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// FrontToBack boards low aisle numbers first, window seats first within a row.
func FrontToBack(a, b QueueEntry) int {
	return cmpOr(
		cmp.Compare(a.Ticket.Aisle, b.Ticket.Aisle),
		cmp.Compare(letterRank(windowFirstRank, a.Ticket.Letter), letterRank(windowFirstRank, b.Ticket.Letter)),
		tiebreak(a, b),
	)
}

// BackToFront boards high aisle numbers first, window seats first within a row.
func BackToFront(a, b QueueEntry) int {
	return cmpOr(
		cmp.Compare(b.Ticket.Aisle, a.Ticket.Aisle),
		cmp.Compare(letterRank(windowFirstRank, a.Ticket.Letter), letterRank(windowFirstRank, b.Ticket.Letter)),
		tiebreak(a, b),
	)
}

// OutToIn boards every window seat before any middle seat, then the aisle
// seats, back rows first within each letter.
func OutToIn(a, b QueueEntry) int {
	return cmpOr(
		cmp.Compare(letterRank(outToInRank, a.Ticket.Letter), letterRank(outToInRank, b.Ticket.Letter)),
		cmp.Compare(b.Ticket.Aisle, a.Ticket.Aisle),
		tiebreak(a, b),
	)
}

// Steffen is OutToIn with alternate rows: odd aisles of a letter go before
// even ones.
func Steffen(a, b QueueEntry) int {
	return cmpOr(
		cmp.Compare(letterRank(outToInRank, a.Ticket.Letter), letterRank(outToInRank, b.Ticket.Letter)),
		cmp.Compare(parity(a.Ticket.Aisle), parity(b.Ticket.Aisle)),
		cmp.Compare(b.Ticket.Aisle, a.Ticket.Aisle),
		tiebreak(a, b),
	)
}

// parity is 0 for odd aisles and 1 for even ones.
func parity(aisle int) int {
	if aisle%2 != 0 {
		return 0
	}
	return 1
}

// ApplyOrdering reorders the boarding queue by name. Random orderings use
// seed. The level order is left as defined.
func ApplyOrdering(s *Simulation, name string, seed int64) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OrderLevel:
		if s.Started() {
			return ErrBoardingStarted
		}
		return nil
	case OrderRandom:
		return s.ShuffleQueue(rand.New(rand.NewSource(seed)))
	case OrderFrontToBack:
		return s.ReorderQueue(FrontToBack)
	case OrderBackToFront:
		return s.ReorderQueue(BackToFront)
	case OrderOutToIn:
		return s.ReorderQueue(OutToIn)
	case OrderSteffen:
		return s.ReorderQueue(Steffen)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOrdering, name)
	}
}

// cmpOr returns the first of its arguments that is not zero, or zero if
// all are. It matches cmp.Or from Go 1.22 for toolchains that lack it.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
