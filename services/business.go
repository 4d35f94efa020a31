package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"business-bot/models"
)

// mongoBusinessDirectory reads the "businesses" collection owned by the
// directory side of the platform.
type mongoBusinessDirectory struct {
	timeout time.Duration
}

// NewBusinessDirectory creates a Mongo-backed directory view
func NewBusinessDirectory(timeout time.Duration) BusinessDirectory {
	return &mongoBusinessDirectory{timeout: timeout}
}

func (d *mongoBusinessDirectory) BusinessExists(ctx context.Context, businessID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	collection := GetDatabase().Collection("businesses")
	count, err := collection.CountDocuments(ctx, bson.M{"business_id": businessID, "is_active": true})
	if err != nil {
		return false, storageFailure("check business", err)
	}
	return count > 0, nil
}

// CreateBusiness registers a new directory entry for an owner
func CreateBusiness(ctx context.Context, business *models.Business) error {
	collection := GetDatabase().Collection("businesses")

	if business.ID.IsZero() {
		business.ID = primitive.NewObjectID()
	}
	if business.BusinessID == "" {
		business.BusinessID = business.ID.Hex()
	}

	now := time.Now()
	business.IsActive = true
	business.CreatedAt = now
	business.UpdatedAt = now

	if _, err := collection.InsertOne(ctx, business); err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	slog.Info("Business created",
		"businessID", business.BusinessID,
		"name", business.Name,
		"ownerID", business.OwnerID,
	)
	return nil
}

// GetBusiness retrieves a directory entry by its business ID
func GetBusiness(ctx context.Context, businessID string) (*models.Business, error) {
	collection := GetDatabase().Collection("businesses")

	var business models.Business
	err := collection.FindOne(ctx, bson.M{"business_id": businessID}).Decode(&business)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &business, nil
}

// GetBusinessesByOwner lists the businesses an owner manages
func GetBusinessesByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	collection := GetDatabase().Collection("businesses")

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := collection.Find(ctx, bson.M{"owner_id": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var businesses []models.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, err
	}

	return businesses, nil
}
