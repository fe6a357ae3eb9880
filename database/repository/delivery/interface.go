package deliveryRepo

import (
	"context"

	"aeromed/database"
	"aeromed/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DeliveryRepository persists confirmed delivery records for the dashboard.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery models.Delivery) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Delivery, error)
	GetAll(ctx context.Context) ([]models.Delivery, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	DeleteByID(ctx context.Context, id int64) error
}

type mongoDeliveryRepo struct {
	coll *mongo.Collection
}

// NewMongoDeliveryRepo returns a new DeliveryRepository instance using MongoDB.
func NewMongoDeliveryRepo() DeliveryRepository {
	db := database.MongoClient.Database("aeromed")
	return &mongoDeliveryRepo{
		coll: db.Collection("deliveries"),
	}
}
