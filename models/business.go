package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessCategory enumerations
const (
	CategoryRetail        = "retail"
	CategoryService       = "service"
	CategoryFood          = "food"
	CategoryEntertainment = "entertainment"
	CategoryTechnology    = "technology"
	CategoryOther         = "other"
)

// Business is the directory entry a chatbot belongs to. The chatbot
// subsystem only reads these documents; the directory itself owns them.
type Business struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  string             `bson:"business_id" json:"business_id"`
	OwnerID     string             `bson:"owner_id" json:"owner_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`

	Contact  BusinessContact `bson:"contact,omitempty" json:"contact,omitempty"`
	IsActive bool            `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BusinessContact holds the public contact details of a business
type BusinessContact struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
}
