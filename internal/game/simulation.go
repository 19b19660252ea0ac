package game

import (
	"log"
	"math/rand"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"cabin_boarding/internal/barrier"
	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
	"cabin_boarding/internal/search"
)

const defaultBaggageLoadTicks = 3

// Listener receives every event the simulation emits, in order.
type Listener interface {
	Notify(ev models.Event)
}

type ListenerFunc func(ev models.Event)

func (f ListenerFunc) Notify(ev models.Event) { f(ev) }

type Options struct {
	BaggageLoadTicks int
	Listeners        []Listener
}

type Option func(*Options)

func WithBaggageLoadTicks(n int) Option {
	return func(o *Options) { o.BaggageLoadTicks = n }
}

func WithListener(l Listener) Option {
	return func(o *Options) { o.Listeners = append(o.Listeners, l) }
}

// Simulation is the tick-driven boarding driver. It is not safe for
// concurrent use; Engine serialises access to it.
type Simulation struct {
	graph      *cabin.Graph
	entry      *cabin.Node
	passengers map[models.PassengerID]*Passenger
	ordered    []*Passenger

	occ     *Occupancy
	barrier *barrier.Barrier[models.PassengerID]

	queue    []*Passenger
	active   []*Passenger
	inActive mapset.Set[models.PassengerID]

	shuffles    map[int]*shuffle
	nextShuffle int
	stats       models.Stats
	opts        Options
}

// NewSimulation builds the cabin graph and passengers described by level.
// Passengers with a start node are placed and activated; the rest queue at
// the entry node in level order.
func NewSimulation(level models.Level, opts ...Option) (*Simulation, error) {
	o := Options{BaggageLoadTicks: defaultBaggageLoadTicks}
	for _, opt := range opts {
		opt(&o)
	}

	g, err := buildGraph(level)
	if err != nil {
		return nil, err
	}
	placements, err := buildPassengers(level, g)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		graph:      g,
		passengers: make(map[models.PassengerID]*Passenger, len(placements)),
		occ:        newOccupancy(),
		barrier:    barrier.New[models.PassengerID](),
		inActive:   mapset.New[models.PassengerID](),
		shuffles:   make(map[int]*shuffle),
		opts:       o,
	}
	if entries := g.EntryNodes(); len(entries) == 1 {
		s.entry = entries[0]
	}
	for _, pl := range placements {
		p := pl.passenger
		s.passengers[p.ID] = p
		s.ordered = append(s.ordered, p)
		if pl.start == nil {
			s.queue = append(s.queue, p)
			continue
		}
		if err := s.occ.Place(p.ID, pl.start.ID); err != nil {
			return nil, err
		}
		p.State = models.PassengerWalking
		s.activate(p)
	}
	return s, nil
}

func (s *Simulation) Graph() *cabin.Graph {
	return s.graph
}

func (s *Simulation) Stats() models.Stats {
	return s.stats
}

// Started reports whether at least one tick has run.
func (s *Simulation) Started() bool {
	return s.stats.Ticks > 0
}

// Tick advances the simulation by one step. The active batch is fixed at the
// start of the tick; passengers admitted or activated during the tick act on
// the next one. Any error leaves the simulation unusable.
func (s *Simulation) Tick() error {
	s.stats.Ticks++
	batch := s.active
	s.active = nil
	s.inActive = mapset.New[models.PassengerID]()

	if err := s.admit(); err != nil {
		return err
	}
	for _, p := range batch {
		if err := s.turn(p); err != nil {
			return err
		}
	}
	return nil
}

// IsComplete reports whether everyone sits in their ticket seat and nothing
// is left to do.
func (s *Simulation) IsComplete() bool {
	if len(s.active) > 0 || len(s.queue) > 0 || len(s.shuffles) > 0 {
		return false
	}
	for _, p := range s.ordered {
		at, ok := s.occ.NodeOf(p.ID)
		if !ok {
			return false
		}
		node, _ := s.graph.Node(at)
		if !node.IsTicketSeat(p.ticket) {
			return false
		}
	}
	return true
}

func (s *Simulation) admit() error {
	if len(s.queue) == 0 || s.entry == nil {
		return nil
	}
	p := s.queue[0]
	if !s.occ.CanEnter(p.ID, s.entry.ID) {
		return nil
	}
	s.queue = s.queue[1:]
	if err := s.occ.Place(p.ID, s.entry.ID); err != nil {
		return err
	}
	p.State = models.PassengerWalking
	s.emit(models.Event{Type: models.EventEnterNode, PassengerID: p.ID, NodeID: nodeRef(s.entry.ID)})
	s.activate(p)
	return nil
}

// turn lets one passenger act once.
func (s *Simulation) turn(p *Passenger) error {
	current := s.nodeOf(p)
	if current == nil {
		return invariantError("active passenger %d is not on the graph", p.ID)
	}

	if p.State == models.PassengerStowingBaggage {
		s.continueStowing(p, current)
		return nil
	}

	if !p.Shuffling() && len(p.Path) == 0 && !current.IsTicketSeat(p.ticket) {
		if err := s.routeToSeat(p, current); err != nil {
			return err
		}
	}

	if !p.Shuffling() && p.HasBaggage && s.startStowing(p, current) {
		return nil
	}

	if len(p.Path) == 0 {
		if _, err := s.barrier.MarkDone(p.ID); err != nil {
			return err
		}
		if len(p.Path) > 0 {
			return nil
		}
		if !p.Shuffling() && current.IsTicketSeat(p.ticket) {
			s.settle(p, current)
		}
		return nil
	}

	next := p.Path[0]
	if !p.Shuffling() && !current.InAisle(p.ticket.Aisle) && next.InAisle(p.ticket.Aisle) {
		handled, err := s.tryShuffle(p, current)
		if err != nil || handled {
			return err
		}
	}

	if !s.occ.CanEnter(p.ID, next.ID) {
		s.activate(p)
		return nil
	}
	if err := s.occ.Move(p.ID, next.ID); err != nil {
		return err
	}
	p.Path = p.Path[1:]
	p.Steps++
	s.stats.TotalSteps++
	if d, ok := cabin.Facing(current, next); ok {
		p.Facing = d
	}
	if !p.Shuffling() {
		p.State = models.PassengerWalking
	}
	s.emit(models.Event{Type: models.EventDepartNode, PassengerID: p.ID, NodeID: nodeRef(current.ID)})
	s.emit(models.Event{Type: models.EventEnterNode, PassengerID: p.ID, NodeID: nodeRef(next.ID)})
	s.activate(p)
	return nil
}

func (s *Simulation) routeToSeat(p *Passenger, from *cabin.Node) error {
	res := search.ShortestPath(from, search.SeatGoal(p.ticket))
	s.stats.SearchedNodes += res.ExpandedNodes
	if !res.Found {
		return configError("passenger %d: seat %s unreachable from node %d", p.ID, p.ticket, from.ID)
	}
	p.Path = res.Path
	return nil
}

// startStowing begins loading baggage on the current node when no node
// further along the path has room and this one does. The space is claimed
// immediately so nobody else takes it during the load delay.
func (s *Simulation) startStowing(p *Passenger, current *cabin.Node) bool {
	if _, ahead := cabin.NearestOpenBaggageNode(p.Path, p.BaggageSize); ahead {
		return false
	}
	comp, ok := current.OpenCompartment(p.BaggageSize)
	if !ok {
		if len(p.Path) == 0 {
			log.Printf("passenger %d reached seat %s still carrying baggage", p.ID, p.ticket)
		}
		return false
	}
	if err := comp.Store(p.ID, p.BaggageSize); err != nil {
		return false
	}
	p.Facing = comp.Direction
	if s.opts.BaggageLoadTicks <= 0 {
		s.finishStowing(p, current)
		return false
	}
	p.State = models.PassengerStowingBaggage
	p.stowTicks = s.opts.BaggageLoadTicks
	s.activate(p)
	return true
}

func (s *Simulation) continueStowing(p *Passenger, current *cabin.Node) {
	p.stowTicks--
	if p.stowTicks <= 0 {
		s.finishStowing(p, current)
	}
	s.activate(p)
}

func (s *Simulation) finishStowing(p *Passenger, current *cabin.Node) {
	p.HasBaggage = false
	p.stowTicks = 0
	p.State = models.PassengerWalking
	s.emit(models.Event{Type: models.EventBaggageStored, PassengerID: p.ID, NodeID: nodeRef(current.ID)})
}

func (s *Simulation) settle(p *Passenger, node *cabin.Node) {
	if p.State == models.PassengerSeated {
		return
	}
	p.State = models.PassengerSeated
	if seat, ok := node.Seat(); ok {
		p.Facing = seat.Facing
	}
	s.emit(models.Event{Type: models.EventSeated, PassengerID: p.ID, NodeID: nodeRef(node.ID)})
}

// activate appends p to the active queue unless it is already there.
func (s *Simulation) activate(p *Passenger) {
	if s.inActive.Has(p.ID) {
		return
	}
	s.inActive.Put(p.ID)
	s.active = append(s.active, p)
}

func (s *Simulation) nodeOf(p *Passenger) *cabin.Node {
	at, ok := s.occ.NodeOf(p.ID)
	if !ok {
		return nil
	}
	node, _ := s.graph.Node(at)
	return node
}

func (s *Simulation) emit(ev models.Event) {
	ev.Tick = s.stats.Ticks
	for _, l := range s.opts.Listeners {
		l.Notify(ev)
	}
}

func nodeRef(id models.NodeID) *models.NodeID {
	return &id
}

// QueueEntry is what a queue ordering sees of a waiting passenger.
type QueueEntry struct {
	ID     models.PassengerID
	Ticket models.Ticket
}

// ReorderQueue sorts the boarding queue with cmp. It is only allowed before
// the first tick.
func (s *Simulation) ReorderQueue(cmp func(a, b QueueEntry) int) error {
	if s.Started() {
		return ErrBoardingStarted
	}
	slices.SortStableFunc(s.queue, func(a, b *Passenger) int {
		return cmp(QueueEntry{ID: a.ID, Ticket: a.ticket}, QueueEntry{ID: b.ID, Ticket: b.ticket})
	})
	return nil
}

// ShuffleQueue puts the boarding queue in random order. It is only allowed
// before the first tick.
func (s *Simulation) ShuffleQueue(rng *rand.Rand) error {
	if s.Started() {
		return ErrBoardingStarted
	}
	rng.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
	return nil
}

func (s *Simulation) Queue() []models.PassengerID {
	out := make([]models.PassengerID, 0, len(s.queue))
	for _, p := range s.queue {
		out = append(out, p.ID)
	}
	return out
}

func (s *Simulation) Active() []models.PassengerID {
	out := make([]models.PassengerID, 0, len(s.active))
	for _, p := range s.active {
		out = append(out, p.ID)
	}
	return out
}

// Passenger returns the passenger with the given id.
func (s *Simulation) Passenger(id models.PassengerID) (*Passenger, bool) {
	p, ok := s.passengers[id]
	return p, ok
}

// NodeOf returns where a passenger stands. Queued passengers are nowhere.
func (s *Simulation) NodeOf(id models.PassengerID) (models.NodeID, bool) {
	return s.occ.NodeOf(id)
}

// Passengers returns a view of every passenger in level order.
func (s *Simulation) Passengers() []models.PassengerView {
	out := make([]models.PassengerView, 0, len(s.ordered))
	for _, p := range s.ordered {
		view := models.PassengerView{
			ID:         p.ID,
			Ticket:     p.Ticket(),
			State:      p.State,
			Path:       p.pathIDs(),
			Steps:      p.Steps,
			Facing:     p.Facing,
			HasBaggage: p.HasBaggage,
		}
		if at, ok := s.occ.NodeOf(p.ID); ok {
			view.NodeID = nodeRef(at)
		}
		out = append(out, view)
	}
	return out
}

// CheckInvariants verifies the occupancy bookkeeping and that passenger and
// shuffle state agree with each other.
func (s *Simulation) CheckInvariants() error {
	if err := s.occ.Check(); err != nil {
		return err
	}
	for _, p := range s.queue {
		if at, ok := s.occ.NodeOf(p.ID); ok {
			return invariantError("queued passenger %d is on node %d", p.ID, at)
		}
	}
	for _, p := range s.ordered {
		if p.shuffle != nil {
			if _, ok := s.shuffles[p.shuffle.id]; !ok {
				return invariantError("passenger %d belongs to finished shuffle %d", p.ID, p.shuffle.id)
			}
		}
		if s.barrier.Waiting(p.ID) && !p.Shuffling() {
			return invariantError("passenger %d waits on the barrier outside a shuffle", p.ID)
		}
		if p.State == models.PassengerSeated {
			node := s.nodeOf(p)
			if node == nil || !node.IsTicketSeat(p.ticket) {
				return invariantError("passenger %d marked seated away from seat %s", p.ID, p.ticket)
			}
		}
	}
	if len(s.shuffles) == 0 && s.barrier.Len() > 0 {
		return invariantError("%d passengers registered on the barrier with no shuffle running", s.barrier.Len())
	}
	for _, sh := range s.shuffles {
		waiting := sh.blockers
		if sh.phase == phaseHolderSeating {
			waiting = []*Passenger{sh.holder}
		}
		for _, m := range waiting {
			if !s.barrier.Pending(m.ID) {
				return invariantError("shuffle %d in phase %s: passenger %d not registered", sh.id, sh.phase, m.ID)
			}
		}
	}
	return nil
}
