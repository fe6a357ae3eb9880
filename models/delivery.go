package models

import "time"

// Delivery statuses. A record is created as "assigned"; later transitions are
// driven by the dashboard, not by the chat core.
const (
	DeliveryStatusPending  = "pending"
	DeliveryStatusAssigned = "assigned"
	DeliveryStatusInFlight = "in-flight"
	DeliveryStatusDone     = "delivered"
)

// Delivery is a confirmed, persisted delivery record. It is only ever created
// by the confirmation step, from a pending delivery backed by a successful
// plan_delivery_path call plus a cost recovered from the assistant's own text.
type Delivery struct {
	ID            int64             `json:"id" bson:"id"`
	Weight        float64           `json:"weight" bson:"weight"`
	Location      string            `json:"location" bson:"location"` // display name, not coordinates
	Date          string            `json:"date" bson:"date"`
	Time          string            `json:"time" bson:"time"`
	Cooling       bool              `json:"cooling" bson:"cooling"`
	Heating       bool              `json:"heating" bson:"heating"`
	Status        string            `json:"status" bson:"status"`
	AssignedDrone string            `json:"assignedDrone,omitempty" bson:"assignedDrone,omitempty"`
	Cost          float64           `json:"cost,omitempty" bson:"cost,omitempty"`
	Coordinates   *GeoPoint         `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Path          []DeliverySegment `json:"path,omitempty" bson:"path,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// PendingDelivery is the conversation-scoped draft awaiting explicit user
// confirmation. Fields parsed from free text merge in over turns; a successful
// plan call overwrites the whole draft from its structured input.
type PendingDelivery struct {
	Weight      float64   `json:"weight,omitempty"`
	Cooling     bool      `json:"cooling"`
	Heating     bool      `json:"heating"`
	Date        string    `json:"date,omitempty"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Coordinates *GeoPoint `json:"coordinates,omitempty"`
}

// ConversationState is the single-owner state threaded through each turn and
// persisted between turns in the session store. PlannedInput preserves the
// exact structured arguments of the last successful plan call; it is the
// source of truth for coordinates and weights at confirmation time.
type ConversationState struct {
	Pending      *PendingDelivery  `json:"pending,omitempty"`
	JustPlanned  bool              `json:"justPlanned"`
	PlannedPaths []DronePath       `json:"plannedPaths,omitempty"`
	PlannedInput []DispatchRequest `json:"plannedInput,omitempty"`
}
