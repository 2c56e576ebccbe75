package databases

// go generate: mockery --name PriceDatabase
// go generate: mockery --name AveragePriceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const (
	priceCollectionName        = "prices"
	averagePriceCollectionName = "averagePrices"
)

// PriceDatabase contains the methods to use with the price database
type PriceDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Price, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Price, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Price, error)
}

type priceDatabase struct {
	db DatabaseHelper
}

// NewPriceDatabase initializes a new instance of price database with the provided db connection
func NewPriceDatabase(db DatabaseHelper) PriceDatabase {
	return &priceDatabase{
		db: db,
	}
}

func (p *priceDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Price, error) {
	price := &models.Price{}
	err := p.db.Collection(priceCollectionName).FindOne(ctx, filter).Decode(&price)
	if err != nil {
		return nil, err
	}
	return price, nil
}

func (p *priceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Price, error) {
	var prices []models.Price
	cur, err := p.db.Collection(priceCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&prices)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (p *priceDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Price, error) {
	price := &models.Price{}
	err := p.db.Collection(priceCollectionName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&price)
	if err != nil {
		return nil, err
	}
	return price, nil
}

// AveragePriceDatabase contains the methods to use with the average price database
type AveragePriceDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AveragePrice, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AveragePrice, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type averagePriceDatabase struct {
	db DatabaseHelper
}

// NewAveragePriceDatabase initializes a new instance of average price database with the provided db connection
func NewAveragePriceDatabase(db DatabaseHelper) AveragePriceDatabase {
	return &averagePriceDatabase{
		db: db,
	}
}

func (a *averagePriceDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AveragePrice, error) {
	avg := &models.AveragePrice{}
	err := a.db.Collection(averagePriceCollectionName).FindOne(ctx, filter).Decode(&avg)
	if err != nil {
		return nil, err
	}
	return avg, nil
}

func (a *averagePriceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AveragePrice, error) {
	var avgs []models.AveragePrice
	cur, err := a.db.Collection(averagePriceCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&avgs)
	if err != nil {
		return nil, err
	}
	return avgs, nil
}

func (a *averagePriceDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(averagePriceCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (a *averagePriceDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(averagePriceCollectionName).CountDocuments(ctx, filter, opts...)
}
