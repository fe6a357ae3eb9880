// File: services/assistant/pending.go
package assistant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aeromed/models"
)

// Fallbacks used at materialization when the draft never captured a schedule.
const (
	defaultDeliveryDate = "2025-12-10"
	defaultDeliveryTime = "15:00"
)

var (
	// ErrNoCost means the confirming turn's preceding assistant message
	// carried no recoverable cost. The draft stays pending.
	ErrNoCost = errors.New("no cost found in the assistant's last message")

	// ErrNothingPlanned means confirmation arrived without a backing plan.
	ErrNothingPlanned = errors.New("no planned delivery path to confirm")
)

// MergePending folds freshly parsed fields into the conversation draft.
// Present fields win over older ones; cooling and heating are sticky once set.
func MergePending(state *models.ConversationState, parsed *models.PendingDelivery) {
	if parsed == nil {
		return
	}
	if state.Pending == nil {
		state.Pending = parsed
		return
	}

	p := state.Pending
	if parsed.Weight > 0 {
		p.Weight = parsed.Weight
	}
	if parsed.Location != "" && parsed.Location != UnknownLocation {
		p.Location = parsed.Location
	}
	if parsed.Date != "" {
		p.Date = parsed.Date
	}
	if parsed.Time != "" {
		p.Time = parsed.Time
	}
	if parsed.Coordinates != nil {
		p.Coordinates = parsed.Coordinates
	}
	p.Cooling = p.Cooling || parsed.Cooling
	p.Heating = p.Heating || parsed.Heating
}

// ApplyToolTrace updates the draft from the turn's tool call records. The last
// successful plan_delivery_path call overwrites the whole draft from its
// structured input, which from then on outranks anything parsed from text.
// A turn that completes without a successful plan drops the just-planned mark,
// so stale plans cannot be confirmed later in the conversation.
func ApplyToolTrace(state *models.ConversationState, records []models.ToolCallRecord) {
	var planned *models.ToolCallRecord
	for i := range records {
		r := &records[i]
		if r.Name != ToolPlanDeliveryPath || r.Status != models.ToolStatusCompleted {
			continue
		}
		if ok, _ := r.Result["success"].(bool); ok {
			planned = r
		}
	}
	if planned == nil {
		state.JustPlanned = false
		return
	}

	var input []models.DispatchRequest
	if err := reencode(planned.Input["deliveries"], &input); err != nil || len(input) == 0 {
		state.JustPlanned = false
		return
	}
	var paths []models.DronePath
	if err := reencode(planned.Result["dronePaths"], &paths); err != nil {
		state.JustPlanned = false
		return
	}

	var totalWeight float64
	var cooling, heating bool
	for _, d := range input {
		totalWeight += d.Requirements.Capacity
		cooling = cooling || d.Requirements.Cooling
		heating = heating || d.Requirements.Heating
	}

	location := "Delivery location"
	if len(input) > 1 {
		location = fmt.Sprintf("Multi-stop delivery (%d stops)", len(input))
	}
	first := input[0]

	state.Pending = &models.PendingDelivery{
		Weight:      totalWeight,
		Cooling:     cooling,
		Heating:     heating,
		Date:        first.Date,
		Time:        first.Time,
		Location:    location,
		Coordinates: &models.GeoPoint{Lng: first.Delivery.Lng, Lat: first.Delivery.Lat},
	}
	state.JustPlanned = true
	state.PlannedPaths = paths
	state.PlannedInput = input
}

// Materialize turns a confirmed draft into persistent delivery records, one
// per drone path in the plan. The cost comes from the assistant's own last
// message; if none is recoverable the draft is left untouched and ErrNoCost is
// returned so the user can be asked to re-plan.
func Materialize(state *models.ConversationState, lastAssistantText string, now time.Time) ([]models.Delivery, error) {
	if state.Pending == nil || len(state.PlannedPaths) == 0 {
		return nil, ErrNothingPlanned
	}

	costInfo := ParseCost(lastAssistantText)
	if costInfo == nil || costInfo.Cost == 0 {
		return nil, ErrNoCost
	}

	inputByID := make(map[int64]models.DispatchRequest, len(state.PlannedInput))
	for _, d := range state.PlannedInput {
		inputByID[d.ID] = d
	}

	costPerDrone := costInfo.Cost / float64(len(state.PlannedPaths))
	deliveries := make([]models.Delivery, 0, len(state.PlannedPaths))

	for i, path := range state.PlannedPaths {
		var weight float64
		var cooling, heating bool
		var names []string
		var coords *models.GeoPoint
		date := state.Pending.Date
		timeOfDay := state.Pending.Time

		for _, segment := range path.Deliveries {
			dispatch, ok := inputByID[segment.DeliveryID]
			if !ok {
				continue
			}
			weight += dispatch.Requirements.Capacity
			cooling = cooling || dispatch.Requirements.Cooling
			heating = heating || dispatch.Requirements.Heating
			names = append(names, LocationNameFor(dispatch.Delivery.Lng, dispatch.Delivery.Lat))
			if coords == nil {
				point := dispatch.Delivery
				coords = &point
				date = dispatch.Date
				timeOfDay = dispatch.Time
			}
		}

		location := strings.Join(names, " → ")
		if location == "" {
			location = state.Pending.Location
		}
		if date == "" {
			date = defaultDeliveryDate
		}
		if timeOfDay == "" {
			timeOfDay = defaultDeliveryTime
		}

		deliveries = append(deliveries, models.Delivery{
			ID:            now.UnixMilli() + int64(i*100),
			Weight:        weight,
			Location:      location,
			Date:          date,
			Time:          timeOfDay,
			Cooling:       cooling,
			Heating:       heating,
			Status:        models.DeliveryStatusAssigned,
			AssignedDrone: path.DroneID,
			Cost:          costPerDrone,
			Coordinates:   coords,
			Path:          path.Deliveries,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return deliveries, nil
}

// ClearPlan wipes the draft after successful materialization.
func ClearPlan(state *models.ConversationState) {
	state.Pending = nil
	state.JustPlanned = false
	state.PlannedPaths = nil
	state.PlannedInput = nil
}
