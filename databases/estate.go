package databases

// go generate: mockery --name EstateDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const estateCollectionName = "estates"

// EstateDatabase contains the methods to use with the estate database
type EstateDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Estate, error)
	Save(ctx context.Context, estate *models.Estate) (*mongo.UpdateResult, error)
}

type estateDatabase struct {
	db DatabaseHelper
}

// NewEstateDatabase initializes a new instance of estate database with the provided db connection
func NewEstateDatabase(db DatabaseHelper) EstateDatabase {
	return &estateDatabase{
		db: db,
	}
}

func (e *estateDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Estate, error) {
	estate := &models.Estate{}
	err := e.db.Collection(estateCollectionName).FindOne(ctx, filter).Decode(&estate)
	if err != nil {
		return nil, err
	}
	return estate, nil
}

// Save upserts the full estate document keyed on userId. The whole document
// is written in one update so the derived metrics can never be persisted out
// of step with the child arrays.
func (e *estateDatabase) Save(ctx context.Context, estate *models.Estate) (*mongo.UpdateResult, error) {
	filter := bson.M{"userId": estate.UserID}
	update := bson.M{
		"$set": bson.M{
			"name":       estate.Name,
			"location":   estate.Location,
			"area":       estate.Area,
			"metrics":    estate.Metrics,
			"plots":      estate.Plots,
			"resources":  estate.Resources,
			"production": estate.Production,
			"financial":  estate.Financial,
			"updatedAt":  estate.UpdatedAt,
		},
		"$setOnInsert": bson.M{"userId": estate.UserID},
	}
	return e.db.Collection(estateCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}
