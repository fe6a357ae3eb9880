// Package gateway wraps the external drone-routing backend behind typed
// request/response methods. It contains transport and status-code translation
// only; all interpretation of results happens in the assistant service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aeromed/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// fleetCacheTTL bounds how stale cached fleet lookups may get. Drone
// specifications change rarely, so a short TTL is enough to keep repeated
// conversational lookups off the backend.
const fleetCacheTTL = 5 * time.Minute

// Client calls the routing backend's REST API. When a Redis client is
// provided, read-only fleet lookups (drone details, cooling queries) are
// served through a read-through cache; routing calls always hit the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	logger     *zap.Logger
}

// NewClient returns a gateway client for the given backend base URL. A nil
// cache disables fleet-lookup caching.
func NewClient(baseURL string, cache *redis.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

// QueryAvailableDrones returns the IDs of drones that satisfy all
// requirements of all given dispatches.
func (c *Client) QueryAvailableDrones(ctx context.Context, dispatches []models.DispatchRequest) ([]string, error) {
	var ids []string
	if err := c.postJSON(ctx, "/api/v1/queryAvailableDrones", dispatches, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CalcDeliveryPath asks the backend to route the given dispatches and returns
// the raw plan. Partial-success classification is the caller's concern.
func (c *Client) CalcDeliveryPath(ctx context.Context, dispatches []models.DispatchRequest) (*models.PlanResult, error) {
	var plan models.PlanResult
	if err := c.postJSON(ctx, "/api/v1/calcDeliveryPath", dispatches, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// DroneDetails returns the fleet record for one drone, or nil (without error)
// when the backend reports 404 for an unknown id. Known drones are cached;
// 404s are not, so a drone added to the fleet is visible immediately.
func (c *Client) DroneDetails(ctx context.Context, droneID string) (*models.Drone, error) {
	cacheKey := "gateway:drone:" + droneID
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var drone models.Drone
		if err := json.Unmarshal(cached, &drone); err == nil {
			return &drone, nil
		}
	}

	url := c.baseURL + "/api/v1/droneDetails/" + droneID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: drone details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var drone models.Drone
	if err := json.NewDecoder(resp.Body).Decode(&drone); err != nil {
		return nil, fmt.Errorf("gateway: decode drone details: %w", err)
	}
	c.cacheSet(ctx, cacheKey, drone)
	return &drone, nil
}

// DronesWithCooling returns the IDs of drones with (or without) cooling.
func (c *Client) DronesWithCooling(ctx context.Context, hasCooling bool) ([]string, error) {
	cacheKey := "gateway:cooling:" + strconv.FormatBool(hasCooling)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var ids []string
		if err := json.Unmarshal(cached, &ids); err == nil {
			return ids, nil
		}
	}

	url := c.baseURL + "/api/v1/dronesWithCooling/" + strconv.FormatBool(hasCooling)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: drones with cooling: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("gateway: decode drone ids: %w", err)
	}
	c.cacheSet(ctx, cacheKey, ids)
	return ids, nil
}

// cacheGet reads a cached fleet entry. Cache errors degrade to a backend
// fetch rather than failing the lookup.
func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Fleet cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, fleetCacheTTL).Err(); err != nil {
		c.logger.Warn("Fleet cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ExplainAvailability returns the backend's per-drone diagnosis for a single
// dispatch that could not be served.
func (c *Client) ExplainAvailability(ctx context.Context, dispatch models.DispatchRequest) (*models.AvailabilityExplanation, error) {
	var explanation models.AvailabilityExplanation
	if err := c.postJSON(ctx, "/api/v1/explainAvailability", dispatch, &explanation); err != nil {
		return nil, err
	}
	return &explanation, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: marshal request: %w", err)
	}

	url := c.baseURL + path
	c.logger.Debug("Calling routing backend", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", path, err)
	}
	return nil
}

// statusError converts a non-OK backend response into an error carrying the
// status code and whatever body the backend sent.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Errorf("gateway: backend returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("gateway: backend returned status %d: %s", resp.StatusCode, text)
}
