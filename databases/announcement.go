package databases

// go generate: mockery --name AnnouncementDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/models"
)

const announcementCollectionName = "announcements"

// AnnouncementDatabase contains the methods to use with the announcement database
type AnnouncementDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Announcement, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Announcement, error)
	InsertOne(ctx context.Context, announcement models.Announcement, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type announcementDatabase struct {
	db DatabaseHelper
}

// NewAnnouncementDatabase initializes a new instance of announcement database with the provided db connection
func NewAnnouncementDatabase(db DatabaseHelper) AnnouncementDatabase {
	return &announcementDatabase{
		db: db,
	}
}

func (a *announcementDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Announcement, error) {
	announcement := &models.Announcement{}
	err := a.db.Collection(announcementCollectionName).FindOne(ctx, filter).Decode(&announcement)
	if err != nil {
		return nil, err
	}
	return announcement, nil
}

// FindPage returns one page of announcements, newest first
func (a *announcementDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Announcement, error) {
	fOpt := newMongoPaginate(limit, page).getPaginatedOpts()
	fOpt.SetSort(bson.D{{Key: "date", Value: -1}})

	var announcements []models.Announcement
	cur, err := a.db.Collection(announcementCollectionName).Find(ctx, filter, fOpt)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&announcements)
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

func (a *announcementDatabase) InsertOne(ctx context.Context, announcement models.Announcement, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(announcementCollectionName).InsertOne(ctx, announcement, opts...)
}

func (a *announcementDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return a.db.Collection(announcementCollectionName).DeleteOne(ctx, filter, opts...)
}

func (a *announcementDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(announcementCollectionName).CountDocuments(ctx, filter, opts...)
}
