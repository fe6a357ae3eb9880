package handlers

import (
	"net/http"

	"aeromed/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last observed state of the service dependencies.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()

	httpStatus := http.StatusOK
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	if !healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, gin.H{
		"status":    map[bool]string{true: "ok", false: "degraded"}[healthy],
		"mongo":     status.Mongo,
		"redis":     status.Redis,
		"checkedAt": status.CheckedAt,
	})
}
