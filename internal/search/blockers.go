package search

import (
	"github.com/zyedidia/generic/mapset"

	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
)

// Occupants answers who is standing on a node.
type Occupants interface {
	OccupantAt(id models.NodeID) (models.PassengerID, bool)
}

// BlockersBetween lists the passengers standing on seats of the ticket's aisle
// that can be reached from entry without leaving the aisle and without
// passing the ticket's own seat. Order is traversal order, nearest to entry
// first.
func BlockersBetween(t models.Ticket, entry *cabin.Node, occupants Occupants) []models.PassengerID {
	visited := mapset.New[*cabin.Node]()
	var blockers []models.PassengerID
	collectBlockers(t, entry, visited, occupants, &blockers)
	return blockers
}

func collectBlockers(t models.Ticket, node *cabin.Node, visited mapset.Set[*cabin.Node], occupants Occupants, out *[]models.PassengerID) {
	if visited.Has(node) {
		return
	}
	visited.Put(node)

	if node.IsTicketSeat(t) {
		return
	}
	if !node.InAisle(t.Aisle) {
		return
	}
	if pid, ok := occupants.OccupantAt(node.ID); ok {
		*out = append(*out, pid)
	}
	for _, neighbor := range node.Neighbors() {
		collectBlockers(t, neighbor, visited, occupants, out)
	}
}
