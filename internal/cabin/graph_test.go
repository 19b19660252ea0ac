package cabin

import (
	"errors"
	"testing"

	"cabin_boarding/internal/models"
)

func buildLine(t *testing.T, ids ...models.NodeID) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range ids {
		if _, err := g.AddNode(id); err != nil {
			t.Fatalf("AddNode(%d): %v", id, err)
		}
	}
	for i := 1; i < len(ids); i++ {
		if err := g.Connect(ids[i-1], ids[i]); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	return g
}

func TestConnectIsSymmetric(t *testing.T) {
	g := buildLine(t, 0, 1)
	a, _ := g.Node(0)
	b, _ := g.Node(1)
	if len(a.Neighbors()) != 1 || a.Neighbors()[0] != b {
		t.Fatalf("expected 0 -> 1 edge, got %v", a.Neighbors())
	}
	if len(b.Neighbors()) != 1 || b.Neighbors()[0] != a {
		t.Fatalf("expected reverse edge 1 -> 0, got %v", b.Neighbors())
	}
	if err := g.Connect(1, 0); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if len(a.Neighbors()) != 1 {
		t.Fatalf("duplicate edge added: %d neighbours", len(a.Neighbors()))
	}
}

func TestAddNodeRejectsDuplicates(t *testing.T) {
	g := NewGraph()
	if _, err := g.AddNode(3); err != nil {
		t.Fatalf("first AddNode: %v", err)
	}
	if _, err := g.AddNode(3); !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestConnectUnknownNode(t *testing.T) {
	g := buildLine(t, 0)
	if err := g.Connect(0, 9); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if err := g.Connect(0, 0); err == nil {
		t.Fatalf("expected self-loop error")
	}
}

func TestSeatIsOptional(t *testing.T) {
	g := buildLine(t, 0, 1)
	plain, _ := g.Node(0)
	if _, ok := plain.Seat(); ok {
		t.Fatalf("node without seat reported one")
	}
	if plain.InAisle(1) {
		t.Fatalf("node without seat must not belong to an aisle")
	}

	seated, _ := g.Node(1)
	seated.SetSeat(models.Seat{Class: "coach", Aisle: 1, Letter: "A", Facing: models.West})
	if !seated.IsTicketSeat(models.Ticket{Class: "coach", Aisle: 1, Letter: "A"}) {
		t.Fatalf("expected ticket to match seat")
	}
	if seated.IsTicketSeat(models.Ticket{Class: "first", Aisle: 1, Letter: "A"}) {
		t.Fatalf("class mismatch should not match")
	}
	if seated.IsTicketSeat(models.PlaceholderTicket()) {
		t.Fatalf("placeholder ticket must never match")
	}
}

func TestNearestOpenBaggageNodeScansFromTail(t *testing.T) {
	g := buildLine(t, 1, 2, 3, 4)
	n1, _ := g.Node(1)
	n2, _ := g.Node(2)
	n3, _ := g.Node(3)
	n4, _ := g.Node(4)
	if _, err := n1.AddCompartment(models.North, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := n2.AddCompartment(models.North, 10); err != nil {
		t.Fatal(err)
	}
	full, err := n3.AddCompartment(models.South, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := full.Store(7, 3); err != nil {
		t.Fatal(err)
	}

	path := []*Node{n1, n2, n3, n4}
	got, ok := NearestOpenBaggageNode(path, 2)
	if !ok || got != n2 {
		t.Fatalf("expected node 2, got %v (ok=%v)", got, ok)
	}
	got, ok = NearestOpenBaggageNode(path, 1)
	if !ok || got != n3 {
		t.Fatalf("expected node 3 with 1 unit left, got %v (ok=%v)", got, ok)
	}
	if _, ok := NearestOpenBaggageNode(path, 11); ok {
		t.Fatalf("expected no node for oversized baggage")
	}
	if _, ok := NearestOpenBaggageNode(nil, 1); ok {
		t.Fatalf("expected no node on empty path")
	}
}

func TestCompartmentCapacity(t *testing.T) {
	n := &Node{ID: 1}
	c, err := n.AddCompartment(models.North, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.AddCompartment(models.North, 5); err == nil {
		t.Fatalf("expected duplicate direction error")
	}
	if err := c.Store(1, 3); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.HasRoom(3) {
		t.Fatalf("3 + 3 should not fit in 5")
	}
	if err := c.Store(2, 3); !errors.Is(err, ErrCompartmentFull) {
		t.Fatalf("expected ErrCompartmentFull, got %v", err)
	}
	if c.Used() != 3 || c.StoredBy(1) != 3 || c.StoredBy(2) != 0 {
		t.Fatalf("unexpected contents used=%d", c.Used())
	}
}

func TestFacing(t *testing.T) {
	a := &Node{ID: 1}
	b := &Node{ID: 2}
	if _, ok := Facing(a, b); ok {
		t.Fatalf("facing without positions should be unknown")
	}
	a.SetPosition(Point{X: 0, Y: 0})
	b.SetPosition(Point{X: 10, Y: 2})
	if d, ok := Facing(a, b); !ok || d != models.East {
		t.Fatalf("expected east, got %v", d)
	}
	b.SetPosition(Point{X: 1, Y: -8})
	if d, _ := Facing(a, b); d != models.North {
		t.Fatalf("expected north, got %v", d)
	}
}
