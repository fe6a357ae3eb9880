package models

// GeoPoint is a lng/lat coordinate pair as used by the routing backend.
type GeoPoint struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// DispatchRequirements captures what a delivery needs from a drone.
type DispatchRequirements struct {
	Capacity float64  `json:"capacity"`          // required capacity in kg
	Cooling  bool     `json:"cooling,omitempty"` // temperature-controlled (cold)
	Heating  bool     `json:"heating,omitempty"` // temperature-controlled (warm)
	MaxCost  *float64 `json:"maxCost,omitempty"` // maximum acceptable cost in GBP
}

// DispatchRequest is one delivery's requirements plus target coordinates and
// timing. It is the unit of planning; the id joins tool-call input to the
// per-segment deliveryId in the backend's plan response.
type DispatchRequest struct {
	ID           int64                `json:"id"`
	Date         string               `json:"date"` // YYYY-MM-DD
	Time         string               `json:"time"` // HH:MM, 24-hour
	Requirements DispatchRequirements `json:"requirements"`
	Delivery     GeoPoint             `json:"delivery"` // target point ("delivery" on the wire)
}
