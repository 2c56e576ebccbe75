package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// Price exported for testing purposes
type Price struct {
	DB  databases.PriceDatabase
	FDB databases.FactoryDatabase
	ADB databases.AveragePriceDatabase
}

// SetPriceHandler publishes the caller's factory price. A price below the
// regulator floor for the current month is rejected; when no floor is set for
// the month the price is accepted as-is.
func (p Price) SetPriceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	factory, err := p.FDB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("factory profile not found", http.StatusNotFound, w, err)
		return
	}

	var req models.SetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid price request", http.StatusBadRequest, w, err)
		return
	}

	proposed, err := strconv.ParseFloat(req.Price, 64)
	if err != nil {
		config.ErrorStatus("price must be numeric", http.StatusBadRequest, w, err)
		return
	}

	// no floor for the month means the price stands as-is; anything else is
	// a real lookup failure and must not wave a below-floor price through
	now := time.Now().UTC()
	floor, err := p.ADB.FindOne(ctx, bson.M{"month": int(now.Month()), "year": now.Year()})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to look up minimum average price", http.StatusInternalServerError, w, err)
		return
	}
	if err == nil && proposed < floor.Price {
		b, _ := json.Marshal(models.PriceRejectedResponse{
			Error:        "Price below minimum average",
			MinimumPrice: floor.Price,
		})
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(b)
		return
	}

	factoryName := req.FactoryName
	if factoryName == "" {
		factoryName = factory.FactoryName
	}

	price, err := p.DB.FindOneAndUpdate(ctx,
		bson.M{"factoryId": id.UserID},
		bson.M{"$set": bson.M{
			"factoryId":   id.UserID,
			"factoryName": factoryName,
			"price":       req.Price,
			"date":        primitive.NewDateTimeFromTime(now),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err != nil {
		config.ErrorStatus("failed to save price", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(price)
	if err != nil {
		config.ErrorStatus("failed to marshal price", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// OwnPriceHandler returns the caller's current published price
func (p Price) OwnPriceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	price, err := p.DB.FindOne(ctx, bson.M{"factoryId": id.UserID})
	if err != nil {
		config.ErrorStatus("no price published", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(price)
	if err != nil {
		config.ErrorStatus("failed to marshal price", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// PricesHandler returns the current price of every factory, newest first
func (p Price) PricesHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestIdentity(w, r); !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	prices, err := p.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"date": -1}))
	if err != nil {
		config.ErrorStatus("failed to get prices", http.StatusNotFound, w, err)
		return
	}
	if prices == nil {
		prices = []models.Price{}
	}

	b, err := json.Marshal(prices)
	if err != nil {
		config.ErrorStatus("failed to marshal prices", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
