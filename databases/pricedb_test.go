package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/databases/mocks"
	"github.com/ceylonara/ceylonara-api/models"
)

func TestPriceDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Price)
		(*arg).FactoryID = "mocked-factory"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "prices").Return(collectionHelper)

	// Create new database with mocked Database interface
	priceDba := databases.NewPriceDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	price, err := priceDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, price)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with a different filter for the correct
	// result
	price, err = priceDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.Price{FactoryID: "mocked-factory"}, price)
	assert.NoError(t, err)
}

func TestEstateDatabase_Save(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.
		On("UpdateOne", mock.Anything, bson.M{"userId": "farmer-1"}, mock.Anything, mock.Anything).
		Return(nil, nil)
	dbHelper.On("Collection", "estates").Return(collectionHelper)

	estateDba := databases.NewEstateDatabase(dbHelper)

	_, err := estateDba.Save(context.Background(), &models.Estate{UserID: "farmer-1", Name: "Galaha Estate"})

	assert.NoError(t, err)
	collectionHelper.AssertCalled(t, "UpdateOne", mock.Anything, bson.M{"userId": "farmer-1"}, mock.Anything, mock.Anything)
}
