package models

// DeliverySegment is one delivery leg flown by a drone. The deliveryId refers
// back to the DispatchRequest the segment fulfils; backend responses may
// reorder or drop entries, so consumers must join by id, never by position.
type DeliverySegment struct {
	DeliveryID int64      `json:"deliveryId"`
	FlightPath []GeoPoint `json:"flightPath"`
}

// DronePath is one drone's assignment within a plan.
type DronePath struct {
	DroneID    string            `json:"droneId"`
	Deliveries []DeliverySegment `json:"deliveries"`
}

// PlanResult is the routing backend's answer to a path calculation.
// The backend serializes the total cost under the "cost" key.
type PlanResult struct {
	TotalCost  float64     `json:"cost"`
	TotalMoves int         `json:"totalMoves"`
	DronePaths []DronePath `json:"dronePaths"`
}

// PlannedCount returns how many delivery segments the plan actually covers,
// summed across all drone assignments. Comparing it against the requested
// count distinguishes partial from total planning success.
func (p PlanResult) PlannedCount() int {
	count := 0
	for _, dp := range p.DronePaths {
		count += len(dp.Deliveries)
	}
	return count
}
