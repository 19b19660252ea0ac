package game

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zyedidia/generic/mapset"

	"cabin_boarding/internal/cabin"
	"cabin_boarding/internal/models"
	"cabin_boarding/internal/search"
)

// LoadLevel reads a level definition from a JSON file.
func LoadLevel(path string) (models.Level, error) {
	var level models.Level
	data, err := os.ReadFile(path)
	if err != nil {
		return level, fmt.Errorf("read level: %w", err)
	}
	if err := json.Unmarshal(data, &level); err != nil {
		return level, fmt.Errorf("%w: parse level %s: %v", ErrConfiguration, path, err)
	}
	if level.Name == "" {
		level.Name = path
	}
	return level, nil
}

func buildGraph(level models.Level) (*cabin.Graph, error) {
	g := cabin.NewGraph()
	for _, def := range level.Nodes {
		node, err := g.AddNode(def.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		node.Entry = def.Entry
		if def.X != nil && def.Y != nil {
			node.SetPosition(cabin.Point{X: *def.X, Y: *def.Y})
		}
		if def.Seat != nil {
			facing := models.North
			if def.Seat.Direction != "" {
				facing, err = models.ParseDirection(def.Seat.Direction)
				if err != nil {
					return nil, configError("node %d seat: %v", def.ID, err)
				}
			}
			node.SetSeat(models.Seat{
				Class:  def.Seat.Class,
				Aisle:  def.Seat.Aisle,
				Letter: def.Seat.Letter,
				Facing: facing,
			})
		}
		for _, c := range def.Compartments {
			dir, err := models.ParseDirection(c.Direction)
			if err != nil {
				return nil, configError("node %d compartment: %v", def.ID, err)
			}
			if _, err := node.AddCompartment(dir, c.Size); err != nil {
				return nil, configError("node %d compartment: %v", def.ID, err)
			}
		}
	}
	for _, def := range level.Nodes {
		for _, nb := range def.Neighbors {
			if err := g.Connect(def.ID, nb); err != nil {
				return nil, fmt.Errorf("%w: node %d: %w", ErrConfiguration, def.ID, err)
			}
		}
	}
	if entries := g.EntryNodes(); len(entries) > 1 {
		return nil, configError("level has %d entry nodes, want at most one", len(entries))
	}
	return g, nil
}

// placement is where a passenger starts: on a node or in the boarding queue.
type placement struct {
	passenger *Passenger
	start     *cabin.Node
}

func buildPassengers(level models.Level, g *cabin.Graph) ([]placement, error) {
	ids := mapset.New[models.PassengerID]()
	tickets := mapset.New[models.Ticket]()
	starts := mapset.New[models.NodeID]()
	var entry *cabin.Node
	if entries := g.EntryNodes(); len(entries) == 1 {
		entry = entries[0]
	}

	out := make([]placement, 0, len(level.Passengers))
	for _, def := range level.Passengers {
		if ids.Has(def.ID) {
			return nil, configError("duplicate passenger %d", def.ID)
		}
		ids.Put(def.ID)
		if def.Ticket == nil {
			return nil, configError("passenger %d has no ticket", def.ID)
		}
		if def.Ticket.IsPlaceholder() {
			return nil, configError("passenger %d has a placeholder ticket", def.ID)
		}
		if tickets.Has(*def.Ticket) {
			return nil, configError("passenger %d: ticket %s issued twice", def.ID, def.Ticket)
		}
		tickets.Put(*def.Ticket)

		p := newPassenger(def.ID)
		p.ticket = *def.Ticket
		if def.Direction != "" {
			facing, err := models.ParseDirection(def.Direction)
			if err != nil {
				return nil, configError("passenger %d: %v", def.ID, err)
			}
			p.Facing = facing
		}

		bags := len(def.Baggage)
		if def.BaggageSize != nil {
			bags++
		}
		switch {
		case bags > 1:
			return nil, configError("passenger %d carries %d bags, at most one allowed", def.ID, bags)
		case def.BaggageSize != nil:
			p.BaggageSize = *def.BaggageSize
		case len(def.Baggage) == 1:
			p.BaggageSize = def.Baggage[0].Size
		}
		if p.BaggageSize < 0 {
			return nil, configError("passenger %d has negative baggage size", def.ID)
		}
		p.HasBaggage = bags == 1 && p.BaggageSize > 0

		pl := placement{passenger: p}
		origin := entry
		if def.StartNodeID != nil {
			node, ok := g.Node(*def.StartNodeID)
			if !ok {
				return nil, configError("passenger %d starts on unknown node %d", def.ID, *def.StartNodeID)
			}
			if starts.Has(node.ID) {
				return nil, configError("passenger %d starts on node %d, which is already taken", def.ID, node.ID)
			}
			starts.Put(node.ID)
			pl.start = node
			origin = node
		} else if entry == nil {
			return nil, configError("passenger %d is queued but the level has no entry node", def.ID)
		}

		if res := search.ShortestPath(origin, search.SeatGoal(p.ticket)); !res.Found {
			return nil, configError("passenger %d: seat %s unreachable from node %d", def.ID, p.ticket, origin.ID)
		}
		out = append(out, pl)
	}
	return out, nil
}
