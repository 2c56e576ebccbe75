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

// Factory exported for testing purposes
type Factory struct {
	DB  databases.FactoryDatabase
	UDB databases.UserDatabase
}

// RegisterFactoryHandler creates or updates the caller's factory profile and
// records their marketplace role.
func (f Factory) RegisterFactoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.RegisterFactoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid factory registration", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	_, err := f.DB.UpdateOne(ctx,
		bson.M{"userId": id.UserID},
		bson.M{
			"$set": bson.M{
				"factoryName": req.FactoryName,
				"mfNumber":    req.MFNumber,
				"address":     req.Address,
				"updatedAt":   now,
			},
			"$setOnInsert": bson.M{
				"userId":    id.UserID,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		config.ErrorStatus("failed to save factory profile", http.StatusInternalServerError, w, err)
		return
	}

	// keep the role registry in step with the profile
	_, err = f.UDB.UpdateOne(ctx,
		bson.M{"userId": id.UserID},
		bson.M{
			"$set": bson.M{"role": models.RoleFactory, "name": req.FactoryName},
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

	factory, err := f.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("failed to load saved factory profile", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(factory)
	if err != nil {
		config.ErrorStatus("failed to marshal factory profile", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// FactoryProfileHandler returns the caller's factory profile
func (f Factory) FactoryProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	factory, err := f.DB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("factory profile not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(factory)
	if err != nil {
		config.ErrorStatus("failed to marshal factory profile", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// FactoriesHandler returns all registered factories
func (f Factory) FactoriesHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestIdentity(w, r); !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	factories, err := f.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"factoryName": 1}))
	if err != nil {
		config.ErrorStatus("failed to get factories", http.StatusNotFound, w, err)
		return
	}
	if factories == nil {
		factories = []models.Factory{}
	}

	b, err := json.Marshal(factories)
	if err != nil {
		config.ErrorStatus("failed to marshal factories", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
