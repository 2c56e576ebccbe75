package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estate holds the structure for the estates collection in mongo. One estate
// document per user. The metrics block is derived from the child arrays and
// recomputed on every write; it is never incremented in place.
type Estate struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"`
	Name       string             `json:"name" bson:"name"`
	Location   string             `json:"location" bson:"location"`
	Area       float64            `json:"area" bson:"area"` // hectares
	Metrics    EstateMetrics      `json:"metrics" bson:"metrics"`
	Plots      []Plot             `json:"plots" bson:"plots"`
	Resources  EstateResources    `json:"resources" bson:"resources"`
	Production []ProductionRecord `json:"production" bson:"production"`
	Financial  EstateFinancial    `json:"financial" bson:"financial"`
	UpdatedAt  primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// EstateMetrics holds the derived counters for an estate
type EstateMetrics struct {
	WorkerCount     int     `json:"workerCount" bson:"workerCount"`
	EquipmentCount  int     `json:"equipmentCount" bson:"equipmentCount"`
	TotalPlots      int     `json:"totalPlots" bson:"totalPlots"`
	TotalProduction float64 `json:"totalProduction" bson:"totalProduction"` // kg
}

// Plot is a named subdivision of an estate
type Plot struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Area        float64            `json:"area" bson:"area"`
	Cultivar    string             `json:"cultivar,omitempty" bson:"cultivar,omitempty"`
	PlantedYear int                `json:"plantedYear,omitempty" bson:"plantedYear,omitempty"`
}

// EstateResources groups the worker and equipment inventories
type EstateResources struct {
	Workers   []WorkerGroup `json:"workers" bson:"workers"`
	Equipment []Equipment   `json:"equipment" bson:"equipment"`
}

// WorkerGroup is a group of workers sharing a role (e.g. 12 pluckers)
type WorkerGroup struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Role      string             `json:"role" bson:"role"`
	Count     int                `json:"count" bson:"count"`
	DailyWage float64            `json:"dailyWage,omitempty" bson:"dailyWage,omitempty"`
}

// Equipment is a piece (or batch) of estate equipment
type Equipment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Type      string             `json:"type" bson:"type"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Condition string             `json:"condition,omitempty" bson:"condition,omitempty"`
}

// ProductionRecord is a monthly harvest record, one per (month, year)
type ProductionRecord struct {
	Month    int     `json:"month" bson:"month"`
	Year     int     `json:"year" bson:"year"`
	Quantity float64 `json:"quantity" bson:"quantity"` // kg
	Quality  string  `json:"quality,omitempty" bson:"quality,omitempty"`
}

// EstateFinancial holds the estate's budget figures
type EstateFinancial struct {
	MonthlyBudget float64 `json:"monthlyBudget" bson:"monthlyBudget"`
	LaborCost     float64 `json:"laborCost" bson:"laborCost"`
	Notes         string  `json:"notes,omitempty" bson:"notes,omitempty"`
}

// UpsertEstateRequest holds the structure for creating or renaming an estate
type UpsertEstateRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Location string  `json:"location" validate:"omitempty,max=300"`
	Area     float64 `json:"area" validate:"required,gt=0"`
}

// AddPlotRequest holds the structure for adding a plot
type AddPlotRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Area        float64 `json:"area" validate:"required,gt=0"`
	Cultivar    string  `json:"cultivar" validate:"omitempty,max=60"`
	PlantedYear int     `json:"plantedYear" validate:"omitempty,min=1900,max=2200"`
}

// AddWorkerGroupRequest holds the structure for adding a worker group
type AddWorkerGroupRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	Role      string  `json:"role" validate:"required,min=1,max=60"`
	Count     int     `json:"count" validate:"required,min=1"`
	DailyWage float64 `json:"dailyWage" validate:"omitempty,gte=0"`
}

// AddEquipmentRequest holds the structure for adding equipment
type AddEquipmentRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=120"`
	Type      string `json:"type" validate:"required,min=1,max=60"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Condition string `json:"condition" validate:"omitempty,max=60"`
}

// AddProductionRequest holds the structure for recording monthly production
type AddProductionRequest struct {
	Month    int     `json:"month" validate:"required,min=1,max=12"`
	Year     int     `json:"year" validate:"required,min=2000,max=2200"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Quality  string  `json:"quality" validate:"omitempty,max=60"`
}

// UpdateFinancialRequest holds the structure for updating estate financials
type UpdateFinancialRequest struct {
	MonthlyBudget float64 `json:"monthlyBudget" validate:"omitempty,gte=0"`
	LaborCost     float64 `json:"laborCost" validate:"omitempty,gte=0"`
	Notes         string  `json:"notes" validate:"omitempty,max=1000"`
}

// YieldPredictionResponse is the payload of the yield-prediction heuristic
type YieldPredictionResponse struct {
	Success        bool    `json:"success"`
	PredictedYield float64 `json:"predictedYield"` // kg, next month
	MonthlyAverage float64 `json:"monthlyAverage"`
	Trend          float64 `json:"trend"` // kg per month, signed
	BasedOnMonths  int     `json:"basedOnMonths"`
}
