package databases

// go generate: mockery --name FactoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const factoryCollectionName = "factories"

// FactoryDatabase contains the methods to use with the factory database
type FactoryDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Factory, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Factory, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type factoryDatabase struct {
	db DatabaseHelper
}

// NewFactoryDatabase initializes a new instance of factory database with the provided db connection
func NewFactoryDatabase(db DatabaseHelper) FactoryDatabase {
	return &factoryDatabase{
		db: db,
	}
}

func (f *factoryDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Factory, error) {
	factory := &models.Factory{}
	err := f.db.Collection(factoryCollectionName).FindOne(ctx, filter).Decode(&factory)
	if err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *factoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Factory, error) {
	var factories []models.Factory
	cur, err := f.db.Collection(factoryCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&factories)
	if err != nil {
		return nil, err
	}
	return factories, nil
}

func (f *factoryDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return f.db.Collection(factoryCollectionName).UpdateOne(ctx, filter, update, opts...)
}
