package models

type EventType string

const (
	EventEnterNode     EventType = "enter_node"
	EventDepartNode    EventType = "depart_node"
	EventBaggageStored EventType = "baggage_stored"
	EventSeated        EventType = "seated"
	EventShuffleBegin  EventType = "shuffle_begin"
	EventShuffleEnd    EventType = "shuffle_end"
)

// Event is a notification emitted by the simulation for renderers and other
// observers. Fields that do not apply to the event type are left empty.
type Event struct {
	Type        EventType     `json:"type"`
	Tick        int           `json:"tick"`
	PassengerID PassengerID   `json:"passenger_id"`
	NodeID      *NodeID       `json:"node_id,omitempty"`
	Passengers  []PassengerID `json:"passengers,omitempty"`
}
