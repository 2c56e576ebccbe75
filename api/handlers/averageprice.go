package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// AveragePrice exported for testing purposes
type AveragePrice struct {
	DB databases.AveragePriceDatabase
}

// LookupAveragePriceHandler returns the regulator floor for a given month and
// year, defaulting to the current period. This route is public.
func (a AveragePrice) LookupAveragePriceHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()

	if m := r.URL.Query().Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			config.ErrorStatus("month must be between 1 and 12", http.StatusBadRequest, w, errors.New("invalid month query parameter"))
			return
		}
		month = v
	}
	if y := r.URL.Query().Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			config.ErrorStatus("year must be numeric", http.StatusBadRequest, w, err)
			return
		}
		year = v
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	floor, err := a.DB.FindOne(ctx, bson.M{"month": month, "year": year})
	if err != nil {
		config.ErrorStatus("no average price set for period", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(models.AveragePriceResponse{
		Success:      true,
		AveragePrice: floor.Price,
		Month:        floor.Month,
		Year:         floor.Year,
		MonthName:    time.Month(floor.Month).String(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal average price", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// SetAveragePriceHandler upserts the floor price for a (month, year) period.
// Admin only.
func (a AveragePrice) SetAveragePriceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	if id.Role != models.RoleAdmin {
		config.ErrorStatus("admin role required", http.StatusForbidden, w, errors.New("caller is not an admin"))
		return
	}

	var req models.SetAveragePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid average price request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := a.DB.UpdateOne(ctx,
		bson.M{"month": req.Month, "year": req.Year},
		bson.M{"$set": bson.M{
			"price": req.Price,
			"month": req.Month,
			"year":  req.Year,
			"setBy": id.UserID,
			"setAt": primitive.NewDateTimeFromTime(time.Now().UTC()),
			"notes": req.Notes,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		config.ErrorStatus("failed to save average price", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.AveragePriceResponse{
		Success:      true,
		AveragePrice: req.Price,
		Month:        req.Month,
		Year:         req.Year,
		MonthName:    time.Month(req.Month).String(),
	})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// AveragePriceHistoryHandler returns every floor ever set, newest period
// first. Admin only.
func (a AveragePrice) AveragePriceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	if id.Role != models.RoleAdmin {
		config.ErrorStatus("admin role required", http.StatusForbidden, w, errors.New("caller is not an admin"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	floors, err := a.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get average prices", http.StatusNotFound, w, err)
		return
	}
	if floors == nil {
		floors = []models.AveragePrice{}
	}

	b, err := json.Marshal(floors)
	if err != nil {
		config.ErrorStatus("failed to marshal average prices", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
