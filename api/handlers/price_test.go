package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ceylonara/ceylonara-api/api/handlers"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/databases/mocks"
	"github.com/ceylonara/ceylonara-api/models"
)

// priceTestMocks wires a db mock where the caller owns a factory profile and
// the regulator floor for the current month is the given value.
func priceTestMocks(floor float64) databases.DatabaseHelper {
	db := &MockDatabaseHelper{}

	factoryConn := &mocks.CollectionHelper{}
	factoryResult := &mocks.SingleResultHelper{}
	factoryResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Factory)
		(*arg).UserID = "factory-1"
		(*arg).FactoryName = "Halgranoya Tea"
	})
	factoryConn.On("FindOne", mock.Anything, mock.Anything).Return(factoryResult)
	db.On("Collection", "factories").Return(factoryConn)

	avgConn := &mocks.CollectionHelper{}
	avgResult := &mocks.SingleResultHelper{}
	avgResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AveragePrice)
		(*arg).Price = floor
	})
	avgConn.On("FindOne", mock.Anything, mock.Anything).Return(avgResult)
	db.On("Collection", "averagePrices").Return(avgConn)

	priceConn := &mocks.CollectionHelper{}
	priceResult := &mocks.SingleResultHelper{}
	priceResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Price)
		(*arg).FactoryID = "factory-1"
		(*arg).Price = "1250.00"
	})
	priceConn.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(priceResult)
	db.On("Collection", "prices").Return(priceConn)

	return db
}

func newPriceHandler(db databases.DatabaseHelper) handlers.Price {
	return handlers.Price{
		DB:  databases.NewPriceDatabase(db),
		FDB: databases.NewFactoryDatabase(db),
		ADB: databases.NewAveragePriceDatabase(db),
	}
}

func TestPrice_SetPriceHandlerBelowFloor(t *testing.T) {
	body, _ := json.Marshal(models.SetPriceRequest{Price: "900.00"})
	req, err := http.NewRequest("POST", "/api/factory/price", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	u := newPriceHandler(priceTestMocks(1000))

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SetPriceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var got models.PriceRejectedResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "Price below minimum average", got.Error)
	assert.Equal(t, float64(1000), got.MinimumPrice)
}

func TestPrice_SetPriceHandlerAtFloor(t *testing.T) {
	body, _ := json.Marshal(models.SetPriceRequest{Price: "1000.00"})
	req, err := http.NewRequest("POST", "/api/factory/price", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	u := newPriceHandler(priceTestMocks(1000))

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SetPriceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "1250.00")
}

// priceTestMocksFloorErr wires the same mock surface, but the floor lookup
// decode fails with the given error.
func priceTestMocksFloorErr(floorErr error) databases.DatabaseHelper {
	db := &MockDatabaseHelper{}

	factoryConn := &mocks.CollectionHelper{}
	factoryResult := &mocks.SingleResultHelper{}
	factoryResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Factory)
		(*arg).UserID = "factory-1"
		(*arg).FactoryName = "Halgranoya Tea"
	})
	factoryConn.On("FindOne", mock.Anything, mock.Anything).Return(factoryResult)
	db.On("Collection", "factories").Return(factoryConn)

	avgConn := &mocks.CollectionHelper{}
	avgResult := &mocks.SingleResultHelper{}
	avgResult.On("Decode", mock.Anything).Return(floorErr)
	avgConn.On("FindOne", mock.Anything, mock.Anything).Return(avgResult)
	db.On("Collection", "averagePrices").Return(avgConn)

	priceConn := &mocks.CollectionHelper{}
	priceResult := &mocks.SingleResultHelper{}
	priceResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Price)
		(*arg).FactoryID = "factory-1"
		(*arg).Price = "900.00"
	})
	priceConn.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(priceResult)
	db.On("Collection", "prices").Return(priceConn)

	return db
}

func TestPrice_SetPriceHandlerNoFloorSet(t *testing.T) {
	body, _ := json.Marshal(models.SetPriceRequest{Price: "900.00"})
	req, err := http.NewRequest("POST", "/api/factory/price", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	// no floor exists for the month, so any price stands
	u := newPriceHandler(priceTestMocksFloorErr(mongo.ErrNoDocuments))

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SetPriceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "900.00")
}

func TestPrice_SetPriceHandlerFloorLookupFails(t *testing.T) {
	body, _ := json.Marshal(models.SetPriceRequest{Price: "900.00"})
	req, err := http.NewRequest("POST", "/api/factory/price", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	// a broken lookup must not wave the price through as if no floor existed
	u := newPriceHandler(priceTestMocksFloorErr(errors.New("connection reset by peer")))

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SetPriceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to look up minimum average price")
}

func TestPrice_SetPriceHandlerNotNumeric(t *testing.T) {
	body, _ := json.Marshal(models.SetPriceRequest{Price: "a lot"})
	req, err := http.NewRequest("POST", "/api/factory/price", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	u := newPriceHandler(priceTestMocks(1000))

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SetPriceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "price must be numeric")
}
