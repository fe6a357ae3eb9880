package deliveryRepo

import (
	"context"
	"errors"
	"time"

	"aeromed/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var validStatuses = map[string]bool{
	models.DeliveryStatusPending:  true,
	models.DeliveryStatusAssigned: true,
	models.DeliveryStatusInFlight: true,
	models.DeliveryStatusDone:     true,
}

// Create inserts a new delivery record and returns its ID. The ID is minted
// by the confirmation step; Create never overwrites it.
func (r *mongoDeliveryRepo) Create(ctx context.Context, delivery models.Delivery) (int64, error) {
	if delivery.ID == 0 {
		return 0, errors.New("delivery id is required")
	}
	delivery.CreatedAt = time.Now()
	delivery.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, delivery)
	if err != nil {
		return 0, err
	}
	return delivery.ID, nil
}

// GetByID returns a delivery record by its ID.
func (r *mongoDeliveryRepo) GetByID(ctx context.Context, id int64) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&delivery)
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// GetAll returns every delivery record, newest first.
func (r *mongoDeliveryRepo) GetAll(ctx context.Context) ([]models.Delivery, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deliveries []models.Delivery
	if err := cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// UpdateStatus moves a delivery through its lifecycle. Transitions are driven
// by the dashboard; this layer only validates the target status.
func (r *mongoDeliveryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !validStatuses[status] {
		return errors.New("invalid delivery status: " + status)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("delivery not found")
	}
	return nil
}

// DeleteByID removes a delivery record by ID.
func (r *mongoDeliveryRepo) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("delivery not found")
	}
	return nil
}
