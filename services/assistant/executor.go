// File: services/assistant/executor.go
package assistant

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"aeromed/models"

	"go.uber.org/zap"
)

// RoutingBackend is the slice of the dispatch gateway the tool executor needs.
type RoutingBackend interface {
	QueryAvailableDrones(ctx context.Context, dispatches []models.DispatchRequest) ([]string, error)
	CalcDeliveryPath(ctx context.Context, dispatches []models.DispatchRequest) (*models.PlanResult, error)
	DroneDetails(ctx context.Context, droneID string) (*models.Drone, error)
	DronesWithCooling(ctx context.Context, hasCooling bool) ([]string, error)
	ExplainAvailability(ctx context.Context, dispatch models.DispatchRequest) (*models.AvailabilityExplanation, error)
}

// ToolExecutor maps tool calls from the model onto the routing backend and
// shapes the results the model sees.
type ToolExecutor struct {
	backend RoutingBackend
	logger  *zap.Logger
}

func NewToolExecutor(backend RoutingBackend, logger *zap.Logger) *ToolExecutor {
	return &ToolExecutor{backend: backend, logger: logger}
}

// Execute runs a single named tool call. Errors returned here are recorded as
// failed tool calls and reported back to the model; they never abort the turn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	e.logger.Info("Executing tool call", zap.String("tool", name))

	switch name {
	case ToolQueryAvailableDrones:
		return e.queryAvailableDrones(ctx, args)
	case ToolPlanDeliveryPath:
		return e.planDeliveryPath(ctx, args)
	case ToolGetDroneDetails:
		return e.getDroneDetails(ctx, args)
	case ToolFindDronesWithCooling:
		return e.findDronesWithCooling(ctx, args)
	case ToolExplainWhyUnavailable:
		return e.explainWhyUnavailable(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func (e *ToolExecutor) queryAvailableDrones(ctx context.Context, args map[string]any) (map[string]any, error) {
	dispatches, err := decodeDispatches(args)
	if err != nil {
		return nil, err
	}

	droneIDs, err := e.backend.QueryAvailableDrones(ctx, dispatches)
	if err != nil {
		return nil, err
	}

	if len(droneIDs) == 0 {
		return map[string]any{
			"availableDrones": []any{},
			"count":           0,
			"message":         "No drones can handle these deliveries. Call explain_why_unavailable to find out why.",
		}, nil
	}
	return map[string]any{
		"availableDrones": jsonify(droneIDs),
		"count":           len(droneIDs),
		"instruction":     "Drones are available. Now call plan_delivery_path with the same deliveries to calculate the route and cost before answering the user.",
	}, nil
}

func (e *ToolExecutor) planDeliveryPath(ctx context.Context, args map[string]any) (map[string]any, error) {
	dispatches, err := decodeDispatches(args)
	if err != nil {
		return nil, err
	}

	plan, err := e.backend.CalcDeliveryPath(ctx, dispatches)
	if err != nil {
		return nil, err
	}

	requested := len(dispatches)
	planned := plan.PlannedCount()
	if planned < requested {
		// A partial plan must not surface cost figures: the model would quote
		// them as if the whole request had been scheduled.
		return map[string]any{
			"success":        false,
			"requestedCount": requested,
			"plannedCount":   planned,
			"reason": fmt.Sprintf(
				"Only %d of %d deliveries could be planned. The remaining deliveries have no feasible drone assignment. Do not quote a cost; explain the shortfall to the user instead.",
				planned, requested),
		}, nil
	}

	dronesUsed := make([]string, 0, len(plan.DronePaths))
	for _, dp := range plan.DronePaths {
		dronesUsed = append(dronesUsed, dp.DroneID)
	}

	times := make([]string, 0, requested)
	for _, d := range dispatches {
		times = append(times, d.Time)
	}
	sort.Strings(times)
	timeWindow := times[0]
	if len(times) > 1 && times[len(times)-1] != times[0] {
		timeWindow = times[0] + " to " + times[len(times)-1]
	}

	flightTime := int(math.Ceil(float64(plan.TotalMoves) / 60.0))

	var droneLabel string
	if len(dronesUsed) == 1 {
		droneLabel = "Drone #" + dronesUsed[0]
	} else {
		labels := make([]string, len(dronesUsed))
		for i, id := range dronesUsed {
			labels[i] = "#" + id
		}
		droneLabel = "Drones used: " + strings.Join(labels, " and ")
	}
	summary := fmt.Sprintf("Total cost: £%.2f, %s, Flight time: ~%d min, Window: %s",
		plan.TotalCost, droneLabel, flightTime, timeWindow)

	return map[string]any{
		"success":           true,
		"totalCost":         plan.TotalCost,
		"totalMoves":        plan.TotalMoves,
		"flightTimeMinutes": flightTime,
		"timeWindow":        timeWindow,
		"dronesUsed":        jsonify(dronesUsed),
		"dronePaths":        jsonify(plan.DronePaths),
		"summary":           summary,
	}, nil
}

func (e *ToolExecutor) getDroneDetails(ctx context.Context, args map[string]any) (map[string]any, error) {
	droneID, err := stringArg(args, "droneId")
	if err != nil {
		return nil, err
	}

	drone, err := e.backend.DroneDetails(ctx, droneID)
	if err != nil {
		return nil, err
	}
	if drone == nil {
		return map[string]any{
			"found":   false,
			"message": fmt.Sprintf("No drone with ID %q exists.", droneID),
		}, nil
	}
	return map[string]any{
		"found": true,
		"drone": jsonify(drone),
	}, nil
}

func (e *ToolExecutor) findDronesWithCooling(ctx context.Context, args map[string]any) (map[string]any, error) {
	hasCooling, ok := args["hasCooling"].(bool)
	if !ok {
		return nil, fmt.Errorf("missing or invalid required field \"hasCooling\"")
	}

	droneIDs, err := e.backend.DronesWithCooling(ctx, hasCooling)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"hasCooling": hasCooling,
		"droneIds":   jsonify(droneIDs),
		"count":      len(droneIDs),
	}, nil
}

func (e *ToolExecutor) explainWhyUnavailable(ctx context.Context, args map[string]any) (map[string]any, error) {
	dispatch, err := decodeSingleDispatch(args["delivery"])
	if err != nil {
		// Diagnostics degrade instead of failing the call: the model gets a
		// plain "cannot explain" result it can relay to the user.
		e.logger.Warn("Could not decode delivery for availability explanation", zap.Error(err))
		return map[string]any{
			"canExplain": false,
			"message":    "Could not analyze the delivery input, so no availability explanation is possible.",
		}, nil
	}

	explanation, err := e.backend.ExplainAvailability(ctx, dispatch)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0)
	unavailable := make([]map[string]any, 0)
	for _, check := range explanation.DroneChecks {
		label := fmt.Sprintf("Drone %s (%s)", check.DroneID, check.DroneName)
		if check.Available {
			available = append(available, label)
			continue
		}
		failures := make([]string, 0, len(check.Reasons))
		for _, reason := range check.Reasons {
			if strings.Contains(reason, "❌") {
				failures = append(failures, reason)
			}
		}
		unavailable = append(unavailable, map[string]any{
			"drone":   label,
			"reasons": failures,
		})
	}

	return map[string]any{
		"canExplain":       true,
		"availableCount":   len(available),
		"unavailableCount": len(unavailable),
		"available":        jsonify(available),
		"unavailable":      jsonify(unavailable),
		"suggestions":      jsonify(explanation.Suggestions),
	}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	switch v := args[key].(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("field %q must not be empty", key)
		}
		return v, nil
	case float64:
		// The model occasionally sends numeric IDs despite the string schema.
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("missing or invalid required field %q", key)
	}
}
