package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// Farmer exported for testing purposes
type Farmer struct {
	DB  databases.FarmerDatabase
	UDB databases.UserDatabase
}

// RegisterFarmerHandler creates or updates the caller's farmer profile and
// records their marketplace role.
func (f Farmer) RegisterFarmerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.RegisterFarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid farmer registration", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	_, err := f.DB.UpdateOne(ctx,
		bson.M{"userId": id.UserID},
		bson.M{
			"$set": bson.M{
				"farmerName": req.FarmerName,
				"nicNumber":  req.NICNumber,
				"address":    req.Address,
				"updatedAt":  now,
			},
			"$setOnInsert": bson.M{
				"userId":    id.UserID,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		config.ErrorStatus("failed to save farmer profile", http.StatusInternalServerError, w, err)
		return
	}

	_, err = f.UDB.UpdateOne(ctx,
		bson.M{"userId": id.UserID},
		bson.M{
			"$set": bson.M{"role": models.RoleFarmer, "name": req.FarmerName},
			"$setOnInsert": bson.M{
				"userId":    id.UserID,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		config.ErrorStatus("failed to record user role", http.StatusInternalServerError, w, err)
		return
	}

	farmer, err := f.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("failed to load saved farmer profile", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(farmer)
	if err != nil {
		config.ErrorStatus("failed to marshal farmer profile", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// FarmerProfileHandler returns the caller's farmer profile
func (f Farmer) FarmerProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	farmer, err := f.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("farmer profile not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(farmer)
	if err != nil {
		config.ErrorStatus("failed to marshal farmer profile", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
