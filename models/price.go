package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price holds the structure for the prices collection in mongo. One current
// price exists per factory, upserted on factoryId.
type Price struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FactoryID   string             `json:"factoryId" bson:"factoryId"`
	FactoryName string             `json:"factoryName" bson:"factoryName"`
	Price       string             `json:"price" bson:"price"`
	Date        primitive.DateTime `json:"date" bson:"date"`
}

// SetPriceRequest holds the structure for a factory publishing its price
type SetPriceRequest struct {
	Price       string `json:"price" validate:"required"`
	FactoryName string `json:"factoryName" validate:"omitempty,max=120"`
	Date        string `json:"date" validate:"omitempty"`
}

// AveragePrice holds the structure for the averagePrices collection in mongo.
// It represents the regulator-set floor price for a (month, year) period.
type AveragePrice struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Price float64            `json:"price" bson:"price"`
	Month int                `json:"month" bson:"month"`
	Year  int                `json:"year" bson:"year"`
	SetBy string             `json:"setBy" bson:"setBy"`
	SetAt primitive.DateTime `json:"setAt" bson:"setAt"`
	Notes string             `json:"notes" bson:"notes"`
}

// SetAveragePriceRequest holds the structure for an admin setting the monthly floor
type SetAveragePriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
	Month int     `json:"month" validate:"required,min=1,max=12"`
	Year  int     `json:"year" validate:"required,min=2000,max=2200"`
	Notes string  `json:"notes" validate:"omitempty,max=500"`
}

// AveragePriceResponse is the public lookup payload for the monthly floor
type AveragePriceResponse struct {
	Success      bool    `json:"success"`
	AveragePrice float64 `json:"averagePrice"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	MonthName    string  `json:"monthName"`
}

// PriceRejectedResponse is returned when a proposed price is below the floor
type PriceRejectedResponse struct {
	Error        string  `json:"error"`
	MinimumPrice float64 `json:"minimumPrice"`
}
