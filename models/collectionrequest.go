package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection request statuses. The status set is closed but transitions are
// deliberately unrestricted: the owning factory may move a request between
// any of these values, including re-opening a completed one.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

// CollectionRequest holds the structure for the collectionRequests collection
// in mongo. A farmer asks a factory to collect a quantity of tea leaves on a
// given date; the owning factory moves it through the status set.
type CollectionRequest struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FactoryID   string             `json:"factoryId" bson:"factoryId"`
	FactoryName string             `json:"factoryName" bson:"factoryName"`
	FarmerID    string             `json:"farmerId" bson:"farmerId"`
	FarmerName  string             `json:"farmerName" bson:"farmerName"`
	NICNumber   string             `json:"nicNumber" bson:"nicNumber"`
	Quantity    float64            `json:"quantity" bson:"quantity"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time,omitempty" bson:"time,omitempty"`
	Note        string             `json:"note,omitempty" bson:"note,omitempty"`
	Location    *RequestLocation   `json:"location,omitempty" bson:"location,omitempty"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// RequestLocation holds the pickup coordinates for a collection request
type RequestLocation struct {
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
}

// CreateCollectionRequestRequest holds the structure for a farmer creating a request
type CreateCollectionRequestRequest struct {
	FactoryID string           `json:"factoryId" validate:"required"`
	Quantity  float64          `json:"quantity" validate:"required,gt=0"`
	Date      string           `json:"date" validate:"required"`
	Time      string           `json:"time" validate:"omitempty"`
	Note      string           `json:"note" validate:"omitempty,max=1000"`
	Location  *RequestLocation `json:"location" validate:"omitempty"`
}

// UpdateRequestStatusRequest holds the structure for a factory moving a request
type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected completed"`
}
