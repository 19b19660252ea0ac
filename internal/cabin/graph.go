// Package cabin holds the walkable node graph of an aircraft cabin together
// with its seat and baggage-compartment metadata.
package cabin

import (
	"errors"
	"fmt"

	"cabin_boarding/internal/models"
)

var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrUnknownNode   = errors.New("unknown node")
)

type Point struct {
	X float64
	Y float64
}

// Node is a walkable spot in the cabin. Nodes are created at load time and
// live for the whole run.
type Node struct {
	ID    models.NodeID
	Entry bool

	position     *Point
	neighbors    []*Node
	seat         models.Seat
	hasSeat      bool
	compartments []*BaggageCompartment
}

func (n *Node) Neighbors() []*Node {
	return n.neighbors
}

// Seat returns the seat on this node, if any.
func (n *Node) Seat() (models.Seat, bool) {
	return n.seat, n.hasSeat
}

func (n *Node) SetSeat(seat models.Seat) {
	n.seat = seat
	n.hasSeat = true
}

// InAisle reports whether the node holds a seat of the given aisle. A node
// without a seat belongs to no aisle.
func (n *Node) InAisle(aisle int) bool {
	return n.hasSeat && n.seat.Aisle == aisle
}

// IsTicketSeat reports whether the node holds the seat the ticket was issued for.
func (n *Node) IsTicketSeat(t models.Ticket) bool {
	return n.hasSeat && n.seat.Matches(t)
}

func (n *Node) Position() (Point, bool) {
	if n.position == nil {
		return Point{}, false
	}
	return *n.position, true
}

func (n *Node) SetPosition(p Point) {
	n.position = &p
}

// AddCompartment attaches a compartment facing dir. One compartment per direction.
func (n *Node) AddCompartment(dir models.Direction, max int) (*BaggageCompartment, error) {
	if max < 0 {
		return nil, fmt.Errorf("node %d: negative compartment size %d", n.ID, max)
	}
	for _, c := range n.compartments {
		if c.Direction == dir {
			return nil, fmt.Errorf("node %d: compartment %s already defined", n.ID, dir)
		}
	}
	c := newCompartment(dir, max)
	n.compartments = append(n.compartments, c)
	return c, nil
}

func (n *Node) Compartments() []*BaggageCompartment {
	return n.compartments
}

// OpenCompartment returns the first compartment with room for size.
func (n *Node) OpenCompartment(size int) (*BaggageCompartment, bool) {
	for _, c := range n.compartments {
		if c.HasRoom(size) {
			return c, true
		}
	}
	return nil, false
}

func (n *Node) HasOpenCompartment(size int) bool {
	_, ok := n.OpenCompartment(size)
	return ok
}

func (n *Node) addNeighbor(other *Node) {
	for _, existing := range n.neighbors {
		if existing == other {
			return
		}
	}
	n.neighbors = append(n.neighbors, other)
}

// Graph is an undirected graph of cabin nodes.
type Graph struct {
	nodes map[models.NodeID]*Node
	order []*Node
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[models.NodeID]*Node)}
}

func (g *Graph) AddNode(id models.NodeID) (*Node, error) {
	if _, ok := g.nodes[id]; ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrDuplicateNode)
	}
	n := &Node{ID: id}
	g.nodes[id] = n
	g.order = append(g.order, n)
	return n, nil
}

// Connect links a and b in both directions.
func (g *Graph) Connect(a, b models.NodeID) error {
	na, ok := g.nodes[a]
	if !ok {
		return fmt.Errorf("node %d: %w", a, ErrUnknownNode)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return fmt.Errorf("node %d: %w", b, ErrUnknownNode)
	}
	if na == nb {
		return fmt.Errorf("node %d: cannot connect to itself", a)
	}
	na.addNeighbor(nb)
	nb.addNeighbor(na)
	return nil
}

func (g *Graph) Node(id models.NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.order
}

func (g *Graph) EntryNodes() []*Node {
	var out []*Node
	for _, n := range g.order {
		if n.Entry {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) Len() int {
	return len(g.order)
}

// NearestOpenBaggageNode scans path from its tail and returns the first node
// with a compartment that can take size, so baggage ends up as close to the
// seat as possible.
func NearestOpenBaggageNode(path []*Node, size int) (*Node, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].HasOpenCompartment(size) {
			return path[i], true
		}
	}
	return nil, false
}

// Facing derives the direction of travel between two positioned nodes.
// Horizontal displacement wins over vertical; screen coordinates grow
// southwards.
func Facing(from, to *Node) (models.Direction, bool) {
	a, ok := from.Position()
	if !ok {
		return models.North, false
	}
	b, ok := to.Position()
	if !ok {
		return models.North, false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return models.East, true
		}
		return models.West, true
	}
	if dy > 0 {
		return models.South, true
	}
	return models.North, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
