package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Marketplace roles recorded in the users collection.
const (
	RoleFarmer  = "farmer"
	RoleFactory = "factory"
	RoleAdmin   = "admin"
)

// User holds the structure for the users collection in mongo. It records the
// marketplace role a given identity-provider user registered as.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	Role      string             `json:"role" bson:"role"` // 'farmer', 'factory', 'admin'
	Name      string             `json:"name" bson:"name"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
