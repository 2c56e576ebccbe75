package databases

// go generate: mockery --name FarmerDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const farmerCollectionName = "farmers"

// FarmerDatabase contains the methods to use with the farmer database
type FarmerDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Farmer, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Farmer, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type farmerDatabase struct {
	db DatabaseHelper
}

// NewFarmerDatabase initializes a new instance of farmer database with the provided db connection
func NewFarmerDatabase(db DatabaseHelper) FarmerDatabase {
	return &farmerDatabase{
		db: db,
	}
}

func (f *farmerDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Farmer, error) {
	farmer := &models.Farmer{}
	err := f.db.Collection(farmerCollectionName).FindOne(ctx, filter).Decode(&farmer)
	if err != nil {
		return nil, err
	}
	return farmer, nil
}

func (f *farmerDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Farmer, error) {
	var farmers []models.Farmer
	cur, err := f.db.Collection(farmerCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&farmers)
	if err != nil {
		return nil, err
	}
	return farmers, nil
}

func (f *farmerDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return f.db.Collection(farmerCollectionName).UpdateOne(ctx, filter, update, opts...)
}
