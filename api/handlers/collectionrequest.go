package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// CollectionRequest exported for testing purposes
type CollectionRequest struct {
	DB     databases.CollectionRequestDatabase
	FDB    databases.FactoryDatabase
	FarmDB databases.FarmerDatabase
	NDB    databases.NotificationDatabase
}

// CreateCollectionRequestHandler files a pickup request against a factory on
// behalf of the calling farmer and notifies the factory.
func (c CollectionRequest) CreateCollectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	farmer, err := c.FarmDB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("farmer profile not found", http.StatusNotFound, w, err)
		return
	}

	var req models.CreateCollectionRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid collection request", http.StatusBadRequest, w, err)
		return
	}

	factory, err := c.FDB.FindOne(ctx, bson.M{"userId": req.FactoryID})
	if err != nil {
		config.ErrorStatus("factory not found", http.StatusNotFound, w, err)
		return
	}

	request := models.CollectionRequest{
		FactoryID:   factory.UserID,
		FactoryName: factory.FactoryName,
		FarmerID:    id.UserID,
		FarmerName:  farmer.FarmerName,
		NICNumber:   farmer.NICNumber,
		Quantity:    req.Quantity,
		Date:        req.Date,
		Time:        req.Time,
		Note:        req.Note,
		Location:    req.Location,
		Status:      models.RequestStatusPending,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	res, err := c.DB.InsertOne(ctx, request)
	if err != nil {
		config.ErrorStatus("failed to insert collection request", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.InsertedID().(primitive.ObjectID); ok {
		request.ID = oid
	}

	// notify the factory; the request itself stands even if this fails
	_, err = c.NDB.InsertOne(ctx, models.Notification{
		UserID:     factory.UserID,
		Type:       models.NotificationTypeRequest,
		Title:      "New collection request",
		Content:    fmt.Sprintf("%s requested collection of %.1fkg on %s", farmer.FarmerName, req.Quantity, req.Date),
		SourceID:   request.ID.Hex(),
		SourceName: farmer.FarmerName,
		SourceType: models.RoleFarmer,
		Read:       false,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now().UTC()),
	})
	if err != nil {
		zap.S().With(err).Error("failed to insert request notification")
	}

	b, err := json.Marshal(request)
	if err != nil {
		config.ErrorStatus("failed to marshal collection request", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

// FarmerRequestsHandler returns the calling farmer's requests, newest first
func (c CollectionRequest) FarmerRequestsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	c.listRequests(w, r, bson.M{"farmerId": id.UserID})
}

// FactoryRequestsHandler returns the requests filed against the calling factory, newest first
func (c CollectionRequest) FactoryRequestsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	c.listRequests(w, r, bson.M{"factoryId": id.UserID})
}

func (c CollectionRequest) listRequests(w http.ResponseWriter, r *http.Request, filter bson.M) {
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	requests, err := c.DB.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get collection requests", http.StatusNotFound, w, err)
		return
	}
	if requests == nil {
		requests = []models.CollectionRequest{}
	}

	b, err := json.Marshal(requests)
	if err != nil {
		config.ErrorStatus("failed to marshal collection requests", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// UpdateRequestStatusHandler moves a request to a new status. Only the factory
// the request was filed against may move it.
func (c CollectionRequest) UpdateRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	requestID := mux.Vars(r)["request_id"]
	oid, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("request id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var req models.UpdateRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid status", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := c.DB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		config.ErrorStatus("collection request not found", http.StatusNotFound, w, err)
		return
	}
	if request.FactoryID != id.UserID {
		config.ErrorStatus("request belongs to another factory", http.StatusForbidden, w, errors.New("caller does not own this request"))
		return
	}

	updated, err := c.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": req.Status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		config.ErrorStatus("failed to update request status", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal collection request", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
