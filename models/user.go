package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole represents the role of a directory user
type UserRole string

const (
	RoleUser          UserRole = "user"
	RoleBusinessOwner UserRole = "business"
	RoleAdmin         UserRole = "admin"
)

// IsValidRole checks if a role string is one of the known roles
func IsValidRole(role string) bool {
	switch UserRole(role) {
	case RoleUser, RoleBusinessOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a directory account. End users start conversations;
// business owners manage their chatbot and reply in conversations.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"full_name,omitempty" json:"full_name,omitempty"`

	Role UserRole `bson:"role" json:"role"`

	// For business owners - the businesses they manage
	BusinessIDs []string `bson:"business_ids,omitempty" json:"business_ids,omitempty"`

	PasswordHash string `bson:"password_hash" json:"-"`

	IsActive  bool      `bson:"is_active" json:"is_active"`
	LastLogin time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
