package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Factory holds the structure for the factories collection in mongo.
// One factory profile exists per identity-provider user.
type Factory struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	FactoryName string             `json:"factoryName" bson:"factoryName"`
	MFNumber    string             `json:"mfNumber" bson:"mfNumber"`
	Address     string             `json:"address" bson:"address"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt   primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// RegisterFactoryRequest holds the structure for registering or updating a factory profile
type RegisterFactoryRequest struct {
	FactoryName string `json:"factoryName" validate:"required,min=2,max=120"`
	MFNumber    string `json:"mfNumber" validate:"required,min=1,max=40"`
	Address     string `json:"address" validate:"required,min=2,max=300"`
}
