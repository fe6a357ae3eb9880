package handlers

import (
	"net/http"
	"strconv"

	"aeromed/services/gateway"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DroneGateway is injected at startup.
var DroneGateway *gateway.Client

// GetDroneHandler proxies a drone lookup to the routing backend so the
// dashboard can show fleet details without talking to it directly.
func GetDroneHandler(c *gin.Context) {
	logger := getLogger(c)

	droneID := c.Param("id")
	drone, err := DroneGateway.DroneDetails(c.Request.Context(), droneID)
	if err != nil {
		logger.Error("Failed to fetch drone details", zap.String("droneId", droneID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach routing backend"})
		return
	}
	if drone == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Drone not found"})
		return
	}
	c.JSON(http.StatusOK, drone)
}

// ListDronesByCoolingHandler proxies a cooling-capability fleet query.
func ListDronesByCoolingHandler(c *gin.Context) {
	logger := getLogger(c)

	hasCooling, err := strconv.ParseBool(c.Param("hasCooling"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hasCooling must be true or false"})
		return
	}

	droneIDs, err := DroneGateway.DronesWithCooling(c.Request.Context(), hasCooling)
	if err != nil {
		logger.Error("Failed to query drones by cooling", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach routing backend"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasCooling": hasCooling, "droneIds": droneIDs, "count": len(droneIDs)})
}
