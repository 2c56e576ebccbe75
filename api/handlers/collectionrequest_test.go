package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ceylonara/ceylonara-api/api/handlers"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/databases/mocks"
	"github.com/ceylonara/ceylonara-api/models"
)

func TestCollectionRequest_CreateHandler(t *testing.T) {
	body, _ := json.Marshal(models.CreateCollectionRequestRequest{
		FactoryID: "factory-1",
		Quantity:  120.5,
		Date:      "2026-09-15",
	})
	req, err := http.NewRequest("POST", "/api/collection-requests", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "farmer-1", "farmer")

	db := &MockDatabaseHelper{}

	farmerConn := &mocks.CollectionHelper{}
	farmerResult := &mocks.SingleResultHelper{}
	farmerResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Farmer)
		(*arg).UserID = "farmer-1"
		(*arg).FarmerName = "K. Bandara"
		(*arg).NICNumber = "851234567V"
	})
	farmerConn.On("FindOne", mock.Anything, mock.Anything).Return(farmerResult)
	db.On("Collection", "farmers").Return(farmerConn)

	factoryConn := &mocks.CollectionHelper{}
	factoryResult := &mocks.SingleResultHelper{}
	factoryResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Factory)
		(*arg).UserID = "factory-1"
		(*arg).FactoryName = "Halgranoya Tea"
	})
	factoryConn.On("FindOne", mock.Anything, mock.Anything).Return(factoryResult)
	db.On("Collection", "factories").Return(factoryConn)

	insertResult := &mocks.InsertOneResultHelper{}
	insertResult.On("InsertedID").Return(primitive.NewObjectID())
	requestConn := &mocks.CollectionHelper{}
	requestConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.On("Collection", "collectionRequests").Return(requestConn)

	notificationConn := &mocks.CollectionHelper{}
	notificationConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "notifications").Return(notificationConn)

	u := handlers.CollectionRequest{
		DB:     databases.NewCollectionRequestDatabase(db),
		FDB:    databases.NewFactoryDatabase(db),
		FarmDB: databases.NewFarmerDatabase(db),
		NDB:    databases.NewNotificationDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateCollectionRequestHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.CollectionRequest
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "K. Bandara", got.FarmerName)
	assert.Equal(t, "Halgranoya Tea", got.FactoryName)
	notificationConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func updateStatusMocks(ownerID string) databases.DatabaseHelper {
	db := &MockDatabaseHelper{}

	requestConn := &mocks.CollectionHelper{}
	findResult := &mocks.SingleResultHelper{}
	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CollectionRequest)
		(*arg).FactoryID = ownerID
		(*arg).Status = "pending"
	})
	requestConn.On("FindOne", mock.Anything, mock.Anything).Return(findResult)

	updateResult := &mocks.SingleResultHelper{}
	updateResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CollectionRequest)
		(*arg).FactoryID = ownerID
		(*arg).Status = "approved"
	})
	requestConn.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updateResult)
	db.On("Collection", "collectionRequests").Return(requestConn)

	return db
}

func TestCollectionRequest_UpdateStatusHandlerNotOwner(t *testing.T) {
	body, _ := json.Marshal(models.UpdateRequestStatusRequest{Status: "approved"})
	req, err := http.NewRequest("PUT", "/api/factory/requests/608cafd695eb9dc05379b7f3", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"request_id": "608cafd695eb9dc05379b7f3"})
	req = authedRequest(req, "factory-2", "factory")

	u := handlers.CollectionRequest{DB: databases.NewCollectionRequestDatabase(updateStatusMocks("factory-1"))}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateRequestStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "request belongs to another factory")
}

func TestCollectionRequest_UpdateStatusHandler(t *testing.T) {
	body, _ := json.Marshal(models.UpdateRequestStatusRequest{Status: "approved"})
	req, err := http.NewRequest("PUT", "/api/factory/requests/608cafd695eb9dc05379b7f3", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"request_id": "608cafd695eb9dc05379b7f3"})
	req = authedRequest(req, "factory-1", "factory")

	u := handlers.CollectionRequest{DB: databases.NewCollectionRequestDatabase(updateStatusMocks("factory-1"))}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateRequestStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.CollectionRequest
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "approved", got.Status)
}

func TestCollectionRequest_UpdateStatusHandlerInvalidStatus(t *testing.T) {
	body := []byte(`{"status": "vanished"}`)
	req, err := http.NewRequest("PUT", "/api/factory/requests/608cafd695eb9dc05379b7f3", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"request_id": "608cafd695eb9dc05379b7f3"})
	req = authedRequest(req, "factory-1", "factory")

	u := handlers.CollectionRequest{DB: databases.NewCollectionRequestDatabase(updateStatusMocks("factory-1"))}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateRequestStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid status")
}
