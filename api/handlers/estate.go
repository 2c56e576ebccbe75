package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// Estate exported for testing purposes
type Estate struct {
	DB databases.EstateDatabase
}

// recomputeEstateMetrics rebuilds the derived counters from the child arrays.
// Metrics are never incremented in place; every write path runs this before
// saving.
func recomputeEstateMetrics(e *models.Estate) {
	m := models.EstateMetrics{}
	for _, g := range e.Resources.Workers {
		m.WorkerCount += g.Count
	}
	for _, eq := range e.Resources.Equipment {
		m.EquipmentCount += eq.Quantity
	}
	m.TotalPlots = len(e.Plots)
	for _, p := range e.Production {
		m.TotalProduction += p.Quantity
	}
	e.Metrics = m
}

// save recomputes the metrics block, stamps the estate, and upserts it
func (es Estate) save(ctx context.Context, w http.ResponseWriter, estate *models.Estate) bool {
	recomputeEstateMetrics(estate)
	estate.UpdatedAt = primitive.NewDateTimeFromTime(time.Now().UTC())
	if _, err := es.DB.Save(ctx, estate); err != nil {
		config.ErrorStatus("failed to save estate", http.StatusInternalServerError, w, err)
		return false
	}
	return true
}

func (es Estate) writeEstate(w http.ResponseWriter, estate *models.Estate, status int) {
	b, err := json.Marshal(estate)
	if err != nil {
		config.ErrorStatus("failed to marshal estate", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// UpsertEstateHandler creates the caller's estate or updates its top-level
// fields, preserving any existing child arrays.
func (es Estate) UpsertEstateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.UpsertEstateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid estate", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	estate, err := es.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		estate = &models.Estate{
			UserID:     id.UserID,
			Plots:      []models.Plot{},
			Production: []models.ProductionRecord{},
			Resources: models.EstateResources{
				Workers:   []models.WorkerGroup{},
				Equipment: []models.Equipment{},
			},
		}
	}
	estate.Name = req.Name
	estate.Location = req.Location
	estate.Area = req.Area

	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusOK)
}

// EstateHandler returns the caller's estate
func (es Estate) EstateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	estate, err := es.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("estate not found", http.StatusNotFound, w, err)
		return
	}
	es.writeEstate(w, estate, http.StatusOK)
}

// loadEstate fetches the caller's estate, writing a 404 when none exists
func (es Estate) loadEstate(w http.ResponseWriter, r *http.Request, userID string) (*models.Estate, bool) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	estate, err := es.DB.FindOne(ctx, bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("estate not found", http.StatusNotFound, w, err)
		return nil, false
	}
	return estate, true
}

// AddPlotHandler appends a plot to the caller's estate
func (es Estate) AddPlotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.AddPlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid plot", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}
	estate.Plots = append(estate.Plots, models.Plot{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Area:        req.Area,
		Cultivar:    req.Cultivar,
		PlantedYear: req.PlantedYear,
	})

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusCreated)
}

// AddWorkerGroupHandler appends a worker group to the caller's estate
func (es Estate) AddWorkerGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.AddWorkerGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid worker group", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}
	estate.Resources.Workers = append(estate.Resources.Workers, models.WorkerGroup{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Role:      req.Role,
		Count:     req.Count,
		DailyWage: req.DailyWage,
	})

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusCreated)
}

// RemoveWorkerGroupHandler removes a worker group from the caller's estate
func (es Estate) RemoveWorkerGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["worker_id"])
	if err != nil {
		config.ErrorStatus("worker id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}

	kept := estate.Resources.Workers[:0]
	found := false
	for _, g := range estate.Resources.Workers {
		if g.ID == oid {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	if !found {
		config.ErrorStatus("worker group not found", http.StatusNotFound, w, errors.New("no worker group with that id"))
		return
	}
	estate.Resources.Workers = kept

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusOK)
}

// AddEquipmentHandler appends equipment to the caller's estate
func (es Estate) AddEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.AddEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid equipment", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}
	estate.Resources.Equipment = append(estate.Resources.Equipment, models.Equipment{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Condition: req.Condition,
	})

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusCreated)
}

// RemoveEquipmentHandler removes equipment from the caller's estate
func (es Estate) RemoveEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["equipment_id"])
	if err != nil {
		config.ErrorStatus("equipment id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}

	kept := estate.Resources.Equipment[:0]
	found := false
	for _, eq := range estate.Resources.Equipment {
		if eq.ID == oid {
			found = true
			continue
		}
		kept = append(kept, eq)
	}
	if !found {
		config.ErrorStatus("equipment not found", http.StatusNotFound, w, errors.New("no equipment with that id"))
		return
	}
	estate.Resources.Equipment = kept

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusOK)
}

// AddProductionHandler records a monthly harvest. Recording the same (month,
// year) twice replaces the earlier record rather than duplicating the period.
func (es Estate) AddProductionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.AddProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid production record", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}

	record := models.ProductionRecord{
		Month:    req.Month,
		Year:     req.Year,
		Quantity: req.Quantity,
		Quality:  req.Quality,
	}
	replaced := false
	for i := range estate.Production {
		if estate.Production[i].Month == req.Month && estate.Production[i].Year == req.Year {
			estate.Production[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		estate.Production = append(estate.Production, record)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusCreated)
}

// UpdateFinancialHandler replaces the estate's budget figures
func (es Estate) UpdateFinancialHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.UpdateFinancialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid financial update", http.StatusBadRequest, w, err)
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}
	estate.Financial = models.EstateFinancial{
		MonthlyBudget: req.MonthlyBudget,
		LaborCost:     req.LaborCost,
		Notes:         req.Notes,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if !es.save(ctx, w, estate) {
		return
	}
	es.writeEstate(w, estate, http.StatusOK)
}

// predictYield runs the production heuristic: mean monthly quantity plus a
// linear trend of (last-first)/(n-1), clamped at zero. Records are ordered by
// period before computing.
func predictYield(records []models.ProductionRecord) models.YieldPredictionResponse {
	sorted := make([]models.ProductionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})

	var total float64
	for _, rec := range sorted {
		total += rec.Quantity
	}
	n := len(sorted)
	avg := total / float64(n)
	trend := (sorted[n-1].Quantity - sorted[0].Quantity) / float64(n-1)

	predicted := avg + trend
	if predicted < 0 {
		predicted = 0
	}
	return models.YieldPredictionResponse{
		Success:        true,
		PredictedYield: predicted,
		MonthlyAverage: avg,
		Trend:          trend,
		BasedOnMonths:  n,
	}
}

// YieldPredictionHandler estimates next month's yield from the recorded
// production history. Needs at least two months of records.
func (es Estate) YieldPredictionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	estate, ok := es.loadEstate(w, r, id.UserID)
	if !ok {
		return
	}
	if len(estate.Production) < 2 {
		config.ErrorStatus("at least two months of production are required", http.StatusBadRequest, w, errors.New("not enough production history"))
		return
	}

	b, err := json.Marshal(predictYield(estate.Production))
	if err != nil {
		config.ErrorStatus("failed to marshal prediction", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
