package models

import "encoding/json"

// Level is the JSON definition of a cabin and the passengers boarding it.
type Level struct {
	Name       string         `json:"name"`
	Nodes      []NodeDef      `json:"nodes"`
	Passengers []PassengerDef `json:"passengers"`
}

type NodeDef struct {
	ID           NodeID           `json:"id"`
	Neighbors    []NodeID         `json:"neighborIds"`
	Seat         *SeatDef         `json:"seat,omitempty"`
	Compartments []CompartmentDef `json:"baggageCompartments,omitempty"`
	Entry        bool             `json:"isEntry,omitempty"`
	X            *float64         `json:"x,omitempty"`
	Y            *float64         `json:"y,omitempty"`
}

// UnmarshalJSON also accepts the short keys neighbors, compartments and
// entry written by older level files. The long keys win when both are set.
func (d *NodeDef) UnmarshalJSON(b []byte) error {
	type plain NodeDef
	var aux struct {
		plain
		OldNeighbors    []NodeID         `json:"neighbors"`
		OldCompartments []CompartmentDef `json:"compartments"`
		OldEntry        *bool            `json:"entry"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*d = NodeDef(aux.plain)
	if d.Neighbors == nil {
		d.Neighbors = aux.OldNeighbors
	}
	if d.Compartments == nil {
		d.Compartments = aux.OldCompartments
	}
	if !d.Entry && aux.OldEntry != nil {
		d.Entry = *aux.OldEntry
	}
	return nil
}

type SeatDef struct {
	Class     string `json:"class"`
	Aisle     int    `json:"aisle"`
	Letter    string `json:"letter"`
	Direction string `json:"direction"`
}

type CompartmentDef struct {
	Direction string `json:"direction"`
	Size      int    `json:"size"`
}

type BaggageDef struct {
	Size int `json:"size"`
}

type PassengerDef struct {
	ID          PassengerID  `json:"id"`
	Ticket      *Ticket      `json:"ticket,omitempty"`
	BaggageSize *int         `json:"baggageSize,omitempty"`
	Baggage     []BaggageDef `json:"baggage,omitempty"`
	StartNodeID *NodeID      `json:"startNodeId,omitempty"`
	Direction   string       `json:"direction,omitempty"`
}
