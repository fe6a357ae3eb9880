package assistant

import (
	"testing"
)

func TestExtractLocation(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{"exact western general", "deliver to -3.2351, 55.9623 please", "Western General Hospital"},
		{"exact royal infirmary", "coordinates -3.1365, 55.9215", "Royal Infirmary of Edinburgh"},
		{"within tolerance", "-3.2351, 55.9643", "Western General Hospital"},
		{"just outside tolerance", "-3.2351, 55.96441", "Unknown Location"},
		{"no coordinates", "deliver to the hospital", "Unknown Location"},
		{"longitude out of range", "200.5, 55.9623", "Unknown Location"},
		{"latitude out of range", "-3.2351, 95.1234", "Unknown Location"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractLocation(tc.text)
			if got != tc.expected {
				t.Errorf("ExtractLocation(%q) = %q, want %q", tc.text, got, tc.expected)
			}
		})
	}
}

func TestExtractLocationToleranceBoundary(t *testing.T) {
	// Distance exactly at the tolerance still matches; 0.0001 past it does not.
	if got := ExtractLocation("-3.2331, 55.9623"); got != "Western General Hospital" {
		t.Errorf("at tolerance: got %q, want Western General Hospital", got)
	}
	if got := ExtractLocation("-3.2330, 55.9623"); got != UnknownLocation {
		t.Errorf("past tolerance: got %q, want %q", got, UnknownLocation)
	}
}

func TestLocationNameFor(t *testing.T) {
	if got := LocationNameFor(-3.5103, 55.9297); got != "St John's Hospital" {
		t.Errorf("known point: got %q", got)
	}
	// Fallback renders "lat, lng" to four decimal places.
	if got := LocationNameFor(-3.3000, 55.9000); got != "55.9000, -3.3000" {
		t.Errorf("fallback: got %q", got)
	}
}

func TestParseDeliveryRequestNotADeliveryMessage(t *testing.T) {
	if got := ParseDeliveryRequest("what's the weather like today?"); got != nil {
		t.Fatalf("expected nil for non-delivery message, got %+v", got)
	}
}

func TestParseDeliveryRequestFullMessage(t *testing.T) {
	msg := "I need to schedule a delivery of 2kg of blood to Western General Hospital at 14:00 on 2025-12-15, coordinates -3.2351, 55.9623. It needs cooling."

	parsed := ParseDeliveryRequest(msg)
	if parsed == nil {
		t.Fatal("expected a parsed delivery request")
	}
	if parsed.Weight != 2 {
		t.Errorf("weight = %v, want 2", parsed.Weight)
	}
	if parsed.Location != "Western General Hospital" {
		t.Errorf("location = %q", parsed.Location)
	}
	if parsed.Date != "2025-12-15" {
		t.Errorf("date = %q", parsed.Date)
	}
	if parsed.Time != "14:00" {
		t.Errorf("time = %q", parsed.Time)
	}
	if !parsed.Cooling {
		t.Error("expected cooling to be set")
	}
	if parsed.Heating {
		t.Error("heating should not be set")
	}
	if parsed.Coordinates == nil || parsed.Coordinates.Lng != -3.2351 || parsed.Coordinates.Lat != 55.9623 {
		t.Errorf("coordinates = %+v", parsed.Coordinates)
	}
}

func TestParseDeliveryRequestCoordinatesEndSentence(t *testing.T) {
	// Coordinates followed by a full stop must still parse; the capture has
	// to leave the punctuation behind for strconv.ParseFloat.
	parsed := ParseDeliveryRequest("Please deliver 1kg of plasma, coordinates -3.1365, 55.9215. Thanks!")
	if parsed == nil {
		t.Fatal("expected a parsed delivery request")
	}
	if parsed.Coordinates == nil || parsed.Coordinates.Lng != -3.1365 || parsed.Coordinates.Lat != 55.9215 {
		t.Errorf("coordinates = %+v", parsed.Coordinates)
	}
}

func TestParseDeliveryRequestPartialFields(t *testing.T) {
	parsed := ParseDeliveryRequest("please dispatch 5.5kg of supplies")
	if parsed == nil {
		t.Fatal("expected a parsed delivery request")
	}
	if parsed.Weight != 5.5 {
		t.Errorf("weight = %v, want 5.5", parsed.Weight)
	}
	if parsed.Location != "" {
		t.Errorf("location = %q, want empty", parsed.Location)
	}
	if parsed.Coordinates != nil {
		t.Errorf("coordinates = %+v, want nil", parsed.Coordinates)
	}
}

func TestParseCost(t *testing.T) {
	testCases := []struct {
		name       string
		message    string
		wantNil    bool
		wantCost   float64
		wantDrones []string
	}{
		{"simple cost", "Total cost: £12.50", false, 12.50, nil},
		{"cost with thousands separator", "Total cost: £1,234.56", false, 1234.56, nil},
		{"cost without pound sign", "cost: 45.00", false, 45, nil},
		{"single drone", "Total cost: £12.50, Drone #5, Flight time: ~1 min", false, 12.50, []string{"5"}},
		{"multi drone preserves textual order", "Drones used: #9 and #1, total cost: £63.10", false, 63.10, []string{"9", "1"}},
		{"cost ending a sentence", "All planned with Drone #5. Total cost: £12.50.", false, 12.50, []string{"5"}},
		{"no cost token", "The drones are ready whenever you are.", true, 0, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCost(tc.message)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected cost info, got nil")
			}
			if got.Cost != tc.wantCost {
				t.Errorf("cost = %v, want %v", got.Cost, tc.wantCost)
			}
			if len(got.Drones) != len(tc.wantDrones) {
				t.Fatalf("drones = %v, want %v", got.Drones, tc.wantDrones)
			}
			for i := range tc.wantDrones {
				if got.Drones[i] != tc.wantDrones[i] {
					t.Errorf("drones[%d] = %q, want %q", i, got.Drones[i], tc.wantDrones[i])
				}
			}
		})
	}
}

func TestIsConfirmation(t *testing.T) {
	confirmations := []string{
		"yes", "Yes", "YES", "confirm", "ok", "proceed",
		"go ahead", "do it", "sounds good", "perfect", "great", "looks good",
		"yes, please", "yes please", "ok thanks", "confirm, please",
		"  yes  ",
	}
	for _, msg := range confirmations {
		if !IsConfirmation(msg) {
			t.Errorf("IsConfirmation(%q) = false, want true", msg)
		}
	}

	rejections := []string{
		"no", "maybe", "yes I said that earlier but changed my mind",
		"is it ok to wait?", "the great hall", "confirm the details first",
		"", "okay fine whatever",
	}
	for _, msg := range rejections {
		if IsConfirmation(msg) {
			t.Errorf("IsConfirmation(%q) = true, want false", msg)
		}
	}
}
