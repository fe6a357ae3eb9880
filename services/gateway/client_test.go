package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aeromed/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func testDispatch() models.DispatchRequest {
	return models.DispatchRequest{
		ID:   1,
		Date: "2025-12-15",
		Time: "14:00",
		Requirements: models.DispatchRequirements{
			Capacity: 2,
			Cooling:  true,
		},
		Delivery: models.GeoPoint{Lng: -3.2351, Lat: 55.9623},
	}
}

func TestQueryAvailableDrones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/queryAvailableDrones" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var dispatches []models.DispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&dispatches); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(dispatches) != 1 || dispatches[0].ID != 1 {
			t.Errorf("dispatches = %+v", dispatches)
		}
		json.NewEncoder(w).Encode([]string{"1", "5"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())
	ids, err := client.QueryAvailableDrones(context.Background(), []models.DispatchRequest{testDispatch()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "5" {
		t.Errorf("ids = %v", ids)
	}
}

func TestCalcDeliveryPathReadsCostKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/calcDeliveryPath" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// The backend serializes the total under "cost".
		w.Write([]byte(`{
			"cost": 12.5,
			"totalMoves": 42,
			"dronePaths": [
				{"droneId": "5", "deliveries": [
					{"deliveryId": 1, "flightPath": [{"lng": -3.2, "lat": 55.95}]}
				]}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())
	plan, err := client.CalcDeliveryPath(context.Background(), []models.DispatchRequest{testDispatch()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.TotalCost != 12.5 {
		t.Errorf("totalCost = %v", plan.TotalCost)
	}
	if plan.TotalMoves != 42 {
		t.Errorf("totalMoves = %v", plan.TotalMoves)
	}
	if plan.PlannedCount() != 1 {
		t.Errorf("plannedCount = %d", plan.PlannedCount())
	}
}

func TestDroneDetailsNotFoundIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/droneDetails/7" {
			json.NewEncoder(w).Encode(models.Drone{ID: "7", Name: "Falcon"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())

	drone, err := client.DroneDetails(context.Background(), "7")
	if err != nil || drone == nil || drone.Name != "Falcon" {
		t.Fatalf("drone = %+v, err = %v", drone, err)
	}

	missing, err := client.DroneDetails(context.Background(), "404")
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if missing != nil {
		t.Errorf("missing drone = %+v, want nil", missing)
	}
}

func TestDroneDetailsServedFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(models.Drone{ID: "7", Name: "Falcon"})
	}))
	defer srv.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := NewClient(srv.URL, cache, zap.NewNop())

	for i := 0; i < 3; i++ {
		drone, err := client.DroneDetails(context.Background(), "7")
		if err != nil || drone == nil || drone.Name != "Falcon" {
			t.Fatalf("lookup %d: drone = %+v, err = %v", i, drone, err)
		}
	}
	if hits != 1 {
		t.Errorf("backend hits = %d, want 1", hits)
	}

	// The cache entry expires; the next lookup goes back to the backend.
	mr.FastForward(fleetCacheTTL + time.Second)
	if _, err := client.DroneDetails(context.Background(), "7"); err != nil {
		t.Fatalf("post-expiry lookup: %v", err)
	}
	if hits != 2 {
		t.Errorf("backend hits after expiry = %d, want 2", hits)
	}
}

func TestDroneDetailsMissIsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	var found bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !found {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(models.Drone{ID: "9", Name: "Osprey"})
	}))
	defer srv.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := NewClient(srv.URL, cache, zap.NewNop())

	if drone, err := client.DroneDetails(context.Background(), "9"); err != nil || drone != nil {
		t.Fatalf("before registration: drone = %+v, err = %v", drone, err)
	}

	// A drone registered after a missed lookup must be visible right away.
	found = true
	drone, err := client.DroneDetails(context.Background(), "9")
	if err != nil || drone == nil || drone.Name != "Osprey" {
		t.Fatalf("after registration: drone = %+v, err = %v", drone, err)
	}
}

func TestDronesWithCoolingPathEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dronesWithCooling/true" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]string{"1", "4"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())
	ids, err := client.DronesWithCooling(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
}

func TestExplainAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/explainAvailability" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.AvailabilityExplanation{
			DroneChecks: []models.DroneCheck{
				{DroneID: "2", DroneName: "Heron", Available: false, Reasons: []string{"❌ no cooling"}},
			},
			Suggestions: []string{"Split into two deliveries"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())
	explanation, err := client.ExplainAvailability(context.Background(), testDispatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(explanation.DroneChecks) != 1 || explanation.DroneChecks[0].DroneID != "2" {
		t.Errorf("explanation = %+v", explanation)
	}
}

func TestBackendErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "routing engine offline", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, zap.NewNop())
	_, err := client.QueryAvailableDrones(context.Background(), []models.DispatchRequest{testDispatch()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "routing engine offline") {
		t.Errorf("err = %v", err)
	}
}
