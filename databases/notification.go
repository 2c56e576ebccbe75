package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const notificationCollectionName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Notification, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error)
	InsertOne(ctx context.Context, notification models.Notification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Notification, error) {
	notification := &models.Notification{}
	err := n.db.Collection(notificationCollectionName).FindOne(ctx, filter).Decode(&notification)
	if err != nil {
		return nil, err
	}
	return notification, nil
}

func (n *notificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error) {
	var notifications []models.Notification
	cur, err := n.db.Collection(notificationCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification models.Notification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return n.db.Collection(notificationCollectionName).InsertOne(ctx, notification, opts...)
}

func (n *notificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return n.db.Collection(notificationCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (n *notificationDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return n.db.Collection(notificationCollectionName).DeleteOne(ctx, filter, opts...)
}

func (n *notificationDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return n.db.Collection(notificationCollectionName).DeleteMany(ctx, filter, opts...)
}
