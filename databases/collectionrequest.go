package databases

// go generate: mockery --name CollectionRequestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const collectionRequestCollectionName = "collectionRequests"

// CollectionRequestDatabase contains the methods to use with the collection request database
type CollectionRequestDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.CollectionRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CollectionRequest, error)
	InsertOne(ctx context.Context, request models.CollectionRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.CollectionRequest, error)
}

type collectionRequestDatabase struct {
	db DatabaseHelper
}

// NewCollectionRequestDatabase initializes a new instance of collection request database with the provided db connection
func NewCollectionRequestDatabase(db DatabaseHelper) CollectionRequestDatabase {
	return &collectionRequestDatabase{
		db: db,
	}
}

func (c *collectionRequestDatabase) FindOne(ctx context.Context, filter interface{}) (*models.CollectionRequest, error) {
	request := &models.CollectionRequest{}
	err := c.db.Collection(collectionRequestCollectionName).FindOne(ctx, filter).Decode(&request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (c *collectionRequestDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CollectionRequest, error) {
	var requests []models.CollectionRequest
	cur, err := c.db.Collection(collectionRequestCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&requests)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *collectionRequestDatabase) InsertOne(ctx context.Context, request models.CollectionRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(collectionRequestCollectionName).InsertOne(ctx, request, opts...)
}

func (c *collectionRequestDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.CollectionRequest, error) {
	request := &models.CollectionRequest{}
	err := c.db.Collection(collectionRequestCollectionName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&request)
	if err != nil {
		return nil, err
	}
	return request, nil
}
