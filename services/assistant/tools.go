// File: services/assistant/tools.go
package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"

	"aeromed/models"

	"github.com/google/generative-ai-go/genai"
)

// The fixed tool catalogue. Tool names are part of the dashboard contract
// (ToolCallRecord.Name) as well as the model contract.
const (
	ToolQueryAvailableDrones  = "query_available_drones"
	ToolPlanDeliveryPath      = "plan_delivery_path"
	ToolGetDroneDetails       = "get_drone_details"
	ToolFindDronesWithCooling = "find_drones_with_cooling"
	ToolExplainWhyUnavailable = "explain_why_unavailable"
)

func dispatchSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":   {Type: genai.TypeInteger, Description: "Unique delivery ID"},
			"date": {Type: genai.TypeString, Description: "Delivery date in YYYY-MM-DD format"},
			"time": {Type: genai.TypeString, Description: "Delivery time in HH:MM format (24-hour)"},
			"requirements": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"capacity": {Type: genai.TypeNumber, Description: "Required capacity in kg"},
					"cooling":  {Type: genai.TypeBoolean, Description: "Whether cooling is required"},
					"heating":  {Type: genai.TypeBoolean, Description: "Whether heating is required"},
					"maxCost":  {Type: genai.TypeNumber, Description: "Maximum acceptable cost in GBP"},
				},
				Required: []string{"capacity"},
			},
			"delivery": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"lng": {Type: genai.TypeNumber, Description: "Delivery longitude"},
					"lat": {Type: genai.TypeNumber, Description: "Delivery latitude"},
				},
				Required: []string{"lng", "lat"},
			},
		},
		Required: []string{"id", "date", "time", "requirements", "delivery"},
	}
}

// ToolCatalogue returns the fixed tool set as Gemini function declarations.
func ToolCatalogue() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolQueryAvailableDrones,
				Description: "Finds drones that can handle one or more deliveries based on their requirements (capacity, cooling, heating, time windows, max cost). Returns list of drone IDs that meet ALL requirements for ALL deliveries.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"deliveries": {
							Type:        genai.TypeArray,
							Description: "Array of delivery requests to check availability for",
							Items:       dispatchSchema(),
						},
					},
					Required: []string{"deliveries"},
				},
			},
			{
				Name:        ToolPlanDeliveryPath,
				Description: "Calculates the optimal delivery path for one or more deliveries. Returns complete flight paths, costs, and move counts. Handles multi-delivery optimization.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"deliveries": {
							Type:  genai.TypeArray,
							Items: dispatchSchema(),
						},
					},
					Required: []string{"deliveries"},
				},
			},
			{
				Name:        ToolGetDroneDetails,
				Description: "Gets detailed information about a specific drone by its ID, including capabilities, costs, and capacity",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"droneId": {
							Type:        genai.TypeString,
							Description: "The ID of the drone (e.g., '1', '4', '7')",
						},
					},
					Required: []string{"droneId"},
				},
			},
			{
				Name:        ToolFindDronesWithCooling,
				Description: "Finds all drones that have (or don't have) cooling capability. Useful when deliveries require temperature-controlled transport.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"hasCooling": {
							Type:        genai.TypeBoolean,
							Description: "True to find drones WITH cooling, false to find drones WITHOUT cooling",
						},
					},
					Required: []string{"hasCooling"},
				},
			},
			{
				Name:        ToolExplainWhyUnavailable,
				Description: "When no drones are available for a delivery, this explains WHY each drone cannot handle it. Provides detailed breakdown of constraint failures and suggestions for alternatives.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"delivery": {
							Type:        genai.TypeObject,
							Description: "The delivery to explain unavailability for",
							Properties:  dispatchSchema().Properties,
							Required:    dispatchSchema().Required,
						},
					},
					Required: []string{"delivery"},
				},
			},
		},
	}}
}

var (
	dateFormatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeFormatRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// The model emits free-form JSON for tool inputs; everything below re-checks
// it against the declared schema so invalid arguments are rejected with an
// error instead of reaching the backend.

func decodeDispatches(args map[string]any) ([]models.DispatchRequest, error) {
	raw, ok := args["deliveries"]
	if !ok {
		return nil, fmt.Errorf("missing required field \"deliveries\"")
	}

	var dispatches []models.DispatchRequest
	if err := reencode(raw, &dispatches); err != nil {
		return nil, fmt.Errorf("invalid \"deliveries\" input: %w", err)
	}
	if len(dispatches) == 0 {
		return nil, fmt.Errorf("\"deliveries\" must contain at least one delivery")
	}

	for i, d := range dispatches {
		if err := validateDispatch(d); err != nil {
			return nil, fmt.Errorf("delivery %d: %w", i, err)
		}
	}
	return dispatches, nil
}

func decodeSingleDispatch(raw any) (models.DispatchRequest, error) {
	// The model sometimes serializes structured input as a JSON string.
	if s, ok := raw.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return models.DispatchRequest{}, fmt.Errorf("delivery input is not valid JSON: %w", err)
		}
		raw = decoded
	}

	var dispatch models.DispatchRequest
	if err := reencode(raw, &dispatch); err != nil {
		return models.DispatchRequest{}, fmt.Errorf("invalid delivery input: %w", err)
	}
	if err := validateDispatch(dispatch); err != nil {
		return models.DispatchRequest{}, err
	}
	return dispatch, nil
}

func validateDispatch(d models.DispatchRequest) error {
	if !dateFormatRe.MatchString(d.Date) {
		return fmt.Errorf("date %q is not in YYYY-MM-DD format", d.Date)
	}
	if !timeFormatRe.MatchString(d.Time) {
		return fmt.Errorf("time %q is not in HH:MM format", d.Time)
	}
	if d.Requirements.Capacity <= 0 {
		return fmt.Errorf("requirements.capacity must be positive")
	}
	if d.Delivery.Lng < -180 || d.Delivery.Lng > 180 {
		return fmt.Errorf("delivery.lng %v is out of range", d.Delivery.Lng)
	}
	if d.Delivery.Lat < -90 || d.Delivery.Lat > 90 {
		return fmt.Errorf("delivery.lat %v is out of range", d.Delivery.Lat)
	}
	return nil
}

// reencode round-trips a loosely-typed value through JSON into a typed one.
func reencode(raw any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// jsonify converts a typed value into plain maps/slices/scalars so it can sit
// inside a tool-result map (function responses only carry basic JSON kinds).
func jsonify(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
