package handlers

import (
	"errors"
	"net/http"
	"strconv"

	deliveryRepo "aeromed/database/repository/delivery"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DeliveryRepository is injected at startup.
var DeliveryRepository deliveryRepo.DeliveryRepository

// ListDeliveriesHandler returns every scheduled delivery, newest first.
func ListDeliveriesHandler(c *gin.Context) {
	logger := getLogger(c)

	deliveries, err := DeliveryRepository.GetAll(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list deliveries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deliveries"})
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

// GetDeliveryHandler returns one delivery by ID.
func GetDeliveryHandler(c *gin.Context) {
	logger := getLogger(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	delivery, err := DeliveryRepository.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		logger.Error("Failed to fetch delivery", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve delivery"})
		return
	}
	c.JSON(http.StatusOK, delivery)
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDeliveryStatusHandler moves a delivery through its lifecycle
// (assigned, in-flight, delivered).
func UpdateDeliveryStatusHandler(c *gin.Context) {
	logger := getLogger(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	var req updateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := DeliveryRepository.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if err.Error() == "delivery not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		logger.Error("Failed to update delivery status",
			zap.Int64("id", id),
			zap.String("status", req.Status),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// DeleteDeliveryHandler removes a delivery record.
func DeleteDeliveryHandler(c *gin.Context) {
	logger := getLogger(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	if err := DeliveryRepository.DeleteByID(c.Request.Context(), id); err != nil {
		if err.Error() == "delivery not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}
		logger.Error("Failed to delete delivery", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete delivery"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
