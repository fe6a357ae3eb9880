// File: services/assistant/parser.go
package assistant

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"aeromed/models"
)

// knownLocation is a named point in the fixed gazetteer.
type knownLocation struct {
	Name string
	Lng  float64
	Lat  float64
}

// Known hospital locations in the Edinburgh service area.
var knownLocations = []knownLocation{
	{Name: "Western General Hospital", Lng: -3.2351, Lat: 55.9623},
	{Name: "Royal Infirmary of Edinburgh", Lng: -3.1365, Lat: 55.9215},
	{Name: "St John's Hospital", Lng: -3.5103, Lat: 55.9297},
	{Name: "Royal Edinburgh Hospital", Lng: -3.2087, Lat: 55.9235},
	{Name: "Sick Kids Hospital", Lng: -3.1839, Lat: 55.9389},
}

// coordinateTolerance is the acceptance radius for gazetteer matches,
// measured as Euclidean distance in degrees (~220 m at this latitude).
// The threshold was tuned against this approximation; do not swap in
// haversine without re-tuning.
const coordinateTolerance = 0.002

// toleranceEpsilon absorbs float representation error in parsed coordinates:
// a pair exactly at the tolerance radius must still match even when the
// subtraction of two parsed decimals lands a few ulps above it.
const toleranceEpsilon = 1e-9

// UnknownLocation is the sentinel returned when no coordinates can be
// recovered or no gazetteer entry is close enough.
const UnknownLocation = "Unknown Location"

var (
	coordPairRe    = regexp.MustCompile(`(-?\d+\.\d+)\s*,\s*(-?\d+\.\d+)`)
	deliveryTrigRe = regexp.MustCompile(`(?i)schedule|deliver|need.*delivery|send.*package|dispatch`)
	weightRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg`)

	// The leading letter stays case-sensitive so "need to schedule" cannot
	// anchor the capture; only a proper-noun destination after "to" counts.
	locationRe = regexp.MustCompile(`(?i)(?:to|deliver to|delivery to)\s+((?-i:[A-Z])[^,\n]+?)(?:\s+at\s+\d{2}:\d{2}|,\s*coordinates|\s+on\s+\d{4})`)

	dateRe = regexp.MustCompile(`(?i)(?:date|on|for).*?(\d{4}-\d{2}-\d{2})`)
	timeRe = regexp.MustCompile(`(?i)(?:at|time).*?(\d{1,2}:\d{2})`)

	// Number captures must not swallow sentence punctuation: a message like
	// "coordinates -3.2351, 55.9623." would otherwise hand "55.9623." to
	// strconv.ParseFloat, which rejects it outright.
	coordFieldRe = regexp.MustCompile(`(?i)coordinates?\s+(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`)
	costRe       = regexp.MustCompile(`(?i)(?:total\s+cost|cost)[:\s]+£?(\d[\d,]*(?:\.\d+)?)`)

	coolingRe       = regexp.MustCompile(`(?i)cooling|refrigerat|cold`)
	heatingRe       = regexp.MustCompile(`(?i)heating|warm|hot`)
	multiDroneRe    = regexp.MustCompile(`(?i)drones?\s+used[:\s]+#?(\d+)(?:\s+and\s+#?(\d+))?`)
	singleDroneRe   = regexp.MustCompile(`(?i)drone:?\s+(?:drone\s+)?#?(\d+)`)
	confirmWordRe   = regexp.MustCompile(`(?i)^(yes|confirm|ok|proceed|go ahead|do it|sounds good|perfect|great|looks good)$`)
	confirmPhraseRe = regexp.MustCompile(`(?i)^(yes|confirm|ok|proceed),?\s+(please|thanks)`)
)

// ExtractLocation scans text for the first lng,lat-shaped pair and maps it to
// the nearest gazetteer name within tolerance. Missing, malformed or
// out-of-range coordinates all yield the UnknownLocation sentinel.
func ExtractLocation(text string) string {
	match := coordPairRe.FindStringSubmatch(text)
	if match == nil {
		return UnknownLocation
	}

	lng, errLng := strconv.ParseFloat(match[1], 64)
	lat, errLat := strconv.ParseFloat(match[2], 64)
	if errLng != nil || errLat != nil {
		return UnknownLocation
	}
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return UnknownLocation
	}

	for _, loc := range knownLocations {
		distance := math.Sqrt(math.Pow(lng-loc.Lng, 2) + math.Pow(lat-loc.Lat, 2))
		if distance <= coordinateTolerance+toleranceEpsilon {
			return loc.Name
		}
	}

	return UnknownLocation
}

// LocationNameFor resolves a display name for raw coordinates using the same
// gazetteer and tolerance as ExtractLocation, falling back to a "lat, lng"
// rendering when nothing is close enough.
func LocationNameFor(lng, lat float64) string {
	for _, loc := range knownLocations {
		distance := math.Sqrt(math.Pow(lng-loc.Lng, 2) + math.Pow(lat-loc.Lat, 2))
		if distance <= coordinateTolerance+toleranceEpsilon {
			return loc.Name
		}
	}
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

// ParseDeliveryRequest recovers coarse delivery fields from free text. It is
// gated on a delivery-intent keyword; nil means the message is not a delivery
// request at all. Any individual field may be absent without error.
func ParseDeliveryRequest(content string) *models.PendingDelivery {
	if !deliveryTrigRe.MatchString(content) {
		return nil
	}

	result := &models.PendingDelivery{}

	if m := weightRe.FindStringSubmatch(content); m != nil {
		if w, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Weight = w
		}
	}

	if m := locationRe.FindStringSubmatch(content); m != nil {
		result.Location = strings.TrimSpace(m[1])
	}

	if m := dateRe.FindStringSubmatch(content); m != nil {
		result.Date = m[1]
	}

	if m := timeRe.FindStringSubmatch(content); m != nil {
		result.Time = m[1]
	}

	if m := coordFieldRe.FindStringSubmatch(content); m != nil {
		lng, errLng := strconv.ParseFloat(m[1], 64)
		lat, errLat := strconv.ParseFloat(m[2], 64)
		if errLng == nil && errLat == nil {
			result.Coordinates = &models.GeoPoint{Lng: lng, Lat: lat}
		}
	}

	result.Cooling = coolingRe.MatchString(content)
	result.Heating = heatingRe.MatchString(content)

	return result
}

// CostInfo is the outcome of parsing an assistant message for a cost and the
// drones it mentions.
type CostInfo struct {
	Cost   float64
	Drones []string
}

// ParseCost recovers a delivery cost (and, when present, drone identifiers)
// from an assistant message. Absence of a cost token is terminal for that
// message and yields nil. Drone extraction prefers the multi-drone
// "Drones Used: #9 and #1" form over a single "Drone #5" mention; drones are
// returned in textual order. Failing to find a drone still returns the cost.
func ParseCost(message string) *CostInfo {
	costMatch := costRe.FindStringSubmatch(message)
	if costMatch == nil {
		return nil
	}

	cost, err := strconv.ParseFloat(strings.ReplaceAll(costMatch[1], ",", ""), 64)
	if err != nil {
		return nil
	}

	if m := multiDroneRe.FindStringSubmatch(message); m != nil {
		drones := []string{m[1]}
		if m[2] != "" {
			drones = append(drones, m[2])
		}
		return &CostInfo{Cost: cost, Drones: drones}
	}

	if m := singleDroneRe.FindStringSubmatch(message); m != nil {
		return &CostInfo{Cost: cost, Drones: []string{m[1]}}
	}

	return &CostInfo{Cost: cost}
}

// IsConfirmation reports whether a user message is an explicit confirmation.
// The phrase list is deliberately narrow: exact acknowledgement words after
// trimming, optionally followed by "please"/"thanks", so that messages which
// merely mention a past confirmation do not fire.
func IsConfirmation(content string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(content))
	return confirmWordRe.MatchString(trimmed) || confirmPhraseRe.MatchString(trimmed)
}
