package game

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"cabin_boarding/internal/models"
)

type groupClaim struct {
	shuffle int
	members mapset.Set[models.PassengerID]
}

// Occupancy tracks where passengers stand and which nodes are locked.
//
// The passenger -> node relation is authoritative. The node -> passenger
// index is derived from it and doubles as the solo lock. Group locks reserve
// nodes for the members of one shuffle.
type Occupancy struct {
	at       map[models.PassengerID]models.NodeID
	occupant map[models.NodeID]models.PassengerID
	groups   map[models.NodeID]*groupClaim
}

func newOccupancy() *Occupancy {
	return &Occupancy{
		at:       make(map[models.PassengerID]models.NodeID),
		occupant: make(map[models.NodeID]models.PassengerID),
		groups:   make(map[models.NodeID]*groupClaim),
	}
}

func (o *Occupancy) NodeOf(pid models.PassengerID) (models.NodeID, bool) {
	n, ok := o.at[pid]
	return n, ok
}

func (o *Occupancy) OccupantAt(node models.NodeID) (models.PassengerID, bool) {
	p, ok := o.occupant[node]
	return p, ok
}

// Place puts a passenger that is not yet on the graph onto node.
func (o *Occupancy) Place(pid models.PassengerID, node models.NodeID) error {
	if at, ok := o.at[pid]; ok {
		return invariantError("passenger %d already placed on node %d", pid, at)
	}
	if holder, ok := o.occupant[node]; ok {
		return invariantError("node %d already held by passenger %d", node, holder)
	}
	o.at[pid] = node
	o.occupant[node] = pid
	return nil
}

// Move releases the solo lock on the passenger's current node and acquires
// the one on to.
func (o *Occupancy) Move(pid models.PassengerID, to models.NodeID) error {
	from, ok := o.at[pid]
	if !ok {
		return invariantError("passenger %d is not on the graph", pid)
	}
	if holder, ok := o.occupant[to]; ok && holder != pid {
		return invariantError("node %d already held by passenger %d", to, holder)
	}
	if o.occupant[from] != pid {
		return invariantError("node %d not held by passenger %d", from, pid)
	}
	delete(o.occupant, from)
	o.occupant[to] = pid
	o.at[pid] = to
	return nil
}

// CanEnter reports whether pid may step onto node: nobody else holds it and
// any group lock on it includes pid.
func (o *Occupancy) CanEnter(pid models.PassengerID, node models.NodeID) bool {
	if holder, ok := o.occupant[node]; ok && holder != pid {
		return false
	}
	if g, ok := o.groups[node]; ok && !g.members.Has(pid) {
		return false
	}
	return true
}

func (o *Occupancy) GroupLocked(node models.NodeID) bool {
	_, ok := o.groups[node]
	return ok
}

// LockGroup claims every node for the members of a shuffle. Nothing is locked
// unless all nodes are free of other group locks and of non-member walkers.
func (o *Occupancy) LockGroup(shuffle int, nodes []models.NodeID, members []models.PassengerID) bool {
	set := mapset.New[models.PassengerID]()
	for _, m := range members {
		set.Put(m)
	}
	for _, n := range nodes {
		if _, ok := o.groups[n]; ok {
			return false
		}
		if holder, ok := o.occupant[n]; ok && !set.Has(holder) {
			return false
		}
	}
	claim := &groupClaim{shuffle: shuffle, members: set}
	for _, n := range nodes {
		o.groups[n] = claim
	}
	return true
}

// UnlockGroup releases nodes claimed by the given shuffle.
func (o *Occupancy) UnlockGroup(shuffle int, nodes []models.NodeID) error {
	for _, n := range nodes {
		g, ok := o.groups[n]
		if !ok || g.shuffle != shuffle {
			return invariantError("node %d is not locked by shuffle %d", n, shuffle)
		}
	}
	for _, n := range nodes {
		delete(o.groups, n)
	}
	return nil
}

// Check verifies that the derived index matches the authoritative relation
// and that group-locked nodes are only held by members of their group.
func (o *Occupancy) Check() error {
	if len(o.at) != len(o.occupant) {
		return invariantError("%d passengers placed but %d nodes held", len(o.at), len(o.occupant))
	}
	for pid, node := range o.at {
		if holder, ok := o.occupant[node]; !ok || holder != pid {
			return invariantError("passenger %d on node %d but index says %v", pid, node, fmtHolder(holder, ok))
		}
	}
	for node, g := range o.groups {
		if holder, ok := o.occupant[node]; ok && !g.members.Has(holder) {
			return invariantError("node %d locked by shuffle %d but held by outsider %d", node, g.shuffle, holder)
		}
	}
	return nil
}

func fmtHolder(pid models.PassengerID, ok bool) string {
	if !ok {
		return "nobody"
	}
	return fmt.Sprintf("passenger %d", pid)
}
