package models

// DroneCapability describes what a drone can carry and what it costs to fly.
type DroneCapability struct {
	Cooling     bool    `json:"cooling"`
	Heating     bool    `json:"heating"`
	Capacity    float64 `json:"capacity"`
	MaxMoves    int     `json:"maxMoves"`
	CostPerMove float64 `json:"costPerMove"`
	CostInitial float64 `json:"costInitial"`
	CostFinal   float64 `json:"costFinal"`
}

// Drone is the fleet record returned by the routing backend.
type Drone struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Capability DroneCapability `json:"capability"`
}

// DroneCheck is one drone's availability verdict for a single dispatch,
// with human-readable reasons for each constraint pass/failure.
type DroneCheck struct {
	DroneID   string   `json:"droneId"`
	DroneName string   `json:"droneName"`
	Available bool     `json:"available"`
	Reasons   []string `json:"reasons"`
}

// AvailabilityExplanation is the backend's diagnosis of why drones can or
// cannot handle a dispatch, plus suggestions for alternatives.
type AvailabilityExplanation struct {
	DroneChecks []DroneCheck `json:"droneChecks"`
	Suggestions []string     `json:"suggestions"`
}
