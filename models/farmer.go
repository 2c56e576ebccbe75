package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Farmer holds the structure for the farmers collection in mongo
type Farmer struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"`
	FarmerName string             `json:"farmerName" bson:"farmerName"`
	NICNumber  string             `json:"nicNumber" bson:"nicNumber"`
	Address    string             `json:"address" bson:"address"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt  primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// RegisterFarmerRequest holds the structure for registering or updating a farmer profile
type RegisterFarmerRequest struct {
	FarmerName string `json:"farmerName" validate:"required,min=2,max=120"`
	NICNumber  string `json:"nicNumber" validate:"required,min=5,max=20"`
	Address    string `json:"address" validate:"required,min=2,max=300"`
}
