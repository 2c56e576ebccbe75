package databases

// go generate: mockery --name DirectChatDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const directChatCollectionName = "directChats"

// DirectChatDatabase contains the methods to use with the direct chat database
type DirectChatDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.DirectChat, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DirectChat, error)
	InsertOne(ctx context.Context, chat models.DirectChat, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type directChatDatabase struct {
	db DatabaseHelper
}

// NewDirectChatDatabase initializes a new instance of direct chat database with the provided db connection
func NewDirectChatDatabase(db DatabaseHelper) DirectChatDatabase {
	return &directChatDatabase{
		db: db,
	}
}

func (d *directChatDatabase) FindOne(ctx context.Context, filter interface{}) (*models.DirectChat, error) {
	chat := &models.DirectChat{}
	err := d.db.Collection(directChatCollectionName).FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (d *directChatDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DirectChat, error) {
	var chats []models.DirectChat
	cur, err := d.db.Collection(directChatCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&chats)
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (d *directChatDatabase) InsertOne(ctx context.Context, chat models.DirectChat, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return d.db.Collection(directChatCollectionName).InsertOne(ctx, chat, opts...)
}

func (d *directChatDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return d.db.Collection(directChatCollectionName).UpdateOne(ctx, filter, update, opts...)
}
