package game

import (
	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
	"cabin_boarding/internal/search"
)

type shufflePhase int

const (
	phaseEvacuating shufflePhase = iota
	phaseHolderSeating
	phaseBlockersSeating
	phaseReleasing
	phaseDone
)

func (p shufflePhase) String() string {
	switch p {
	case phaseEvacuating:
		return "evacuating"
	case phaseHolderSeating:
		return "holder_seating"
	case phaseBlockersSeating:
		return "blockers_seating"
	case phaseReleasing:
		return "releasing"
	default:
		return "done"
	}
}

// shuffle is one seat-shuffle in progress. Blockers leave the row for the
// holding spaces, the ticket holder takes its seat, then the blockers return.
type shuffle struct {
	id       int
	phase    shufflePhase
	holder   *Passenger
	blockers []*Passenger
	locked   []models.NodeID
}

func (sh *shuffle) memberIDs() []models.PassengerID {
	out := make([]models.PassengerID, 0, len(sh.blockers)+1)
	out = append(out, sh.holder.ID)
	for _, b := range sh.blockers {
		out = append(out, b.ID)
	}
	return out
}

func (sh *shuffle) blockerIDs() []models.PassengerID {
	out := make([]models.PassengerID, 0, len(sh.blockers))
	for _, b := range sh.blockers {
		out = append(out, b.ID)
	}
	return out
}

// tryShuffle runs when p is about to step into its seat aisle. It reports
// whether the turn was consumed: either a shuffle started or p has to wait.
// With no blockers the caller moves p as usual.
func (s *Simulation) tryShuffle(p *Passenger, current *cabin.Node) (bool, error) {
	blockers := search.BlockersBetween(p.ticket, p.Path[0], s.occ)
	if len(blockers) == 0 {
		return false, nil
	}
	members := make([]*Passenger, 0, len(blockers))
	for _, id := range blockers {
		b, ok := s.passengers[id]
		if !ok {
			return false, invariantError("blocker %d is not a known passenger", id)
		}
		if b.Shuffling() || b.State == models.PassengerStowingBaggage {
			s.activate(p)
			return true, nil
		}
		members = append(members, b)
	}

	spaces := search.FindFreeSpaces(p.Path, current, len(blockers), s.occ)
	if !spaces.HasFreeSpaces {
		s.activate(p)
		return true, nil
	}
	if spaces.HolderSlot() == nil {
		return false, invariantError("shuffle for passenger %d found no holder slot", p.ID)
	}

	sh := &shuffle{
		id:       s.nextShuffle,
		phase:    phaseEvacuating,
		holder:   p,
		blockers: members,
	}
	lockSet := []*cabin.Node{current}
	lockSet = append(lockSet, spaces.Nodes()...)
	for _, n := range lockSet {
		sh.locked = append(sh.locked, n.ID)
	}
	for _, b := range members {
		at, _ := s.occ.NodeOf(b.ID)
		sh.locked = append(sh.locked, at)
	}
	if !s.occ.LockGroup(sh.id, sh.locked, sh.memberIDs()) {
		s.activate(p)
		return true, nil
	}
	s.nextShuffle++

	p.shuffle = sh
	p.State = models.PassengerShuffling
	p.Path = append([]*cabin.Node(nil), spaces.TicketHolder...)
	s.activate(p)

	slots := spaces.BlockerSlots(len(members))
	if len(slots) != len(members) {
		return false, invariantError("shuffle %d found %d holding nodes for %d blockers", sh.id, len(slots), len(members))
	}
	for i, b := range members {
		from := s.nodeOf(b)
		res := search.ShortestPath(from, search.NodeGoal(slots[i]))
		s.stats.SearchedNodes += res.ExpandedNodes
		if !res.Found {
			return false, invariantError("blocker %d cannot reach holding node %d", b.ID, slots[i].ID)
		}
		b.shuffle = sh
		b.State = models.PassengerShuffling
		b.Path = res.Path
		s.activate(b)
	}

	if !s.barrier.Register(sh.blockerIDs(), func() error { return s.advanceShuffle(sh) }) {
		return false, invariantError("shuffle %d: blockers already waiting on another group", sh.id)
	}
	s.shuffles[sh.id] = sh
	s.emit(models.Event{
		Type:        models.EventShuffleBegin,
		PassengerID: p.ID,
		NodeID:      nodeRef(current.ID),
		Passengers:  sh.memberIDs(),
	})
	return true, nil
}

// advanceShuffle is the barrier callback that moves a shuffle to its next
// phase.
func (s *Simulation) advanceShuffle(sh *shuffle) error {
	switch sh.phase {
	case phaseEvacuating:
		sh.phase = phaseHolderSeating
		if err := s.routeToSeat(sh.holder, s.nodeOf(sh.holder)); err != nil {
			return err
		}
		s.activate(sh.holder)
		if !s.barrier.Register([]models.PassengerID{sh.holder.ID}, func() error { return s.advanceShuffle(sh) }) {
			return invariantError("shuffle %d: holder %d already waiting", sh.id, sh.holder.ID)
		}
	case phaseHolderSeating:
		sh.phase = phaseBlockersSeating
		for _, b := range sh.blockers {
			if err := s.routeToSeat(b, s.nodeOf(b)); err != nil {
				return err
			}
			s.activate(b)
		}
		if !s.barrier.Register(sh.blockerIDs(), func() error { return s.advanceShuffle(sh) }) {
			return invariantError("shuffle %d: blockers already waiting", sh.id)
		}
	case phaseBlockersSeating:
		sh.phase = phaseReleasing
		return s.releaseShuffle(sh)
	default:
		return invariantError("shuffle %d advanced from phase %s", sh.id, sh.phase)
	}
	return nil
}

func (s *Simulation) releaseShuffle(sh *shuffle) error {
	if err := s.occ.UnlockGroup(sh.id, sh.locked); err != nil {
		return err
	}
	members := append([]*Passenger{sh.holder}, sh.blockers...)
	for _, m := range members {
		m.shuffle = nil
		m.State = models.PassengerWalking
		node := s.nodeOf(m)
		if len(m.Path) == 0 && node.IsTicketSeat(m.ticket) {
			s.settle(m, node)
			continue
		}
		s.activate(m)
	}
	delete(s.shuffles, sh.id)
	sh.phase = phaseDone
	s.stats.Shuffles++
	s.emit(models.Event{
		Type:        models.EventShuffleEnd,
		PassengerID: sh.holder.ID,
		Passengers:  sh.memberIDs(),
	})
	return nil
}
