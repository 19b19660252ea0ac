package game

import (
	"testing"

	"cabin_boarding/internal/models"
)

func aisleNode(id int, neighbors ...int) models.NodeDef {
	def := models.NodeDef{ID: models.NodeID(id)}
	for _, n := range neighbors {
		def.Neighbors = append(def.Neighbors, models.NodeID(n))
	}
	return def
}

func seatNode(id, aisle int, letter string, neighbors ...int) models.NodeDef {
	def := aisleNode(id, neighbors...)
	def.Seat = &models.SeatDef{Class: "economy", Aisle: aisle, Letter: letter, Direction: "N"}
	return def
}

func ticket(aisle int, letter string) *models.Ticket {
	return &models.Ticket{Class: "economy", Aisle: aisle, Letter: letter}
}

func startAt(id int) *models.NodeID {
	n := models.NodeID(id)
	return &n
}

type recorder struct {
	events []models.Event
}

func (r *recorder) Notify(ev models.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) ofType(t models.EventType) []models.Event {
	var out []models.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// runToCompletion ticks until the simulation completes, checking invariants
// after every tick.
func runToCompletion(t *testing.T, s *Simulation, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if s.IsComplete() {
			return
		}
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		if err := s.CheckInvariants(); err != nil {
			t.Fatalf("after tick %d: %v", i+1, err)
		}
	}
	if !s.IsComplete() {
		t.Fatalf("not complete after %d ticks, queue=%v active=%v", maxTicks, s.Queue(), s.Active())
	}
}

// shuffleLevel has a main aisle 0-1-2-3 and a two-seat row off node 2:
// node 4 is seat B and node 5, behind it, is seat A. Passenger 1 sits in B,
// passenger 2 starts at node 0 holding a ticket for A.
func shuffleLevel() models.Level {
	return models.Level{
		Name: "shuffle",
		Nodes: []models.NodeDef{
			aisleNode(0, 1),
			aisleNode(1, 0, 2),
			aisleNode(2, 1, 3, 4),
			aisleNode(3, 2),
			seatNode(4, 1, "B", 2, 5),
			seatNode(5, 1, "A", 4),
		},
		Passengers: []models.PassengerDef{
			{ID: 1, Ticket: ticket(1, "B"), StartNodeID: startAt(4)},
			{ID: 2, Ticket: ticket(1, "A"), StartNodeID: startAt(0)},
		},
	}
}

// wedgedLevel never finishes: passenger 3 waits on node 2 for seat A behind
// passenger 2, and the only other neighbour of node 2 is taken.
func wedgedLevel() models.Level {
	return models.Level{
		Name: "wedged",
		Nodes: []models.NodeDef{
			seatNode(1, 9, "Z", 2),
			aisleNode(2, 1, 4),
			seatNode(4, 1, "B", 2, 5),
			seatNode(5, 1, "A", 4),
		},
		Passengers: []models.PassengerDef{
			{ID: 1, Ticket: ticket(9, "Z"), StartNodeID: startAt(1)},
			{ID: 2, Ticket: ticket(1, "B"), StartNodeID: startAt(4)},
			{ID: 3, Ticket: ticket(1, "A"), StartNodeID: startAt(2)},
		},
	}
}
