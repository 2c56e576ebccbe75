package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ceylonara/ceylonara-api/api/handlers"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/databases/mocks"
	"github.com/ceylonara/ceylonara-api/models"
)

func TestAnnouncement_CreateHandlerNotAFactory(t *testing.T) {
	body, _ := json.Marshal(models.CreateAnnouncementRequest{Message: "Factory closed on poya day"})
	req, err := http.NewRequest("POST", "/api/factory/announcements", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "farmer-1", "farmer")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "factories").Return(conn)

	u := handlers.Announcement{FDB: databases.NewFactoryDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "factory profile not found")
}

func announcementFactoryMocks() databases.DatabaseHelper {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Factory)
		(*arg).UserID = "factory-1"
		(*arg).FactoryName = "Halgranoya Tea"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "factories").Return(conn)
	return db
}

func TestAnnouncement_CreateHandlerBadImage(t *testing.T) {
	body, _ := json.Marshal(models.CreateAnnouncementRequest{
		Message: "New season prices",
		Image:   "https://example.com/leaf.png",
	})
	req, err := http.NewRequest("POST", "/api/factory/announcements", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	u := handlers.Announcement{FDB: databases.NewFactoryDatabase(announcementFactoryMocks())}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "image must be a data URL")
}

func TestAnnouncement_CreateHandler(t *testing.T) {
	body, _ := json.Marshal(models.CreateAnnouncementRequest{
		Message: "New season prices",
		Image:   "data:image/png;base64,iVBORw0KGgo=",
	})
	req, err := http.NewRequest("POST", "/api/factory/announcements", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "factory-1", "factory")

	db := announcementFactoryMocks()

	insertResult := &mocks.InsertOneResultHelper{}
	insertResult.On("InsertedID").Return(nil)
	announcementConn := &mocks.CollectionHelper{}
	announcementConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.(*MockDatabaseHelper).On("Collection", "announcements").Return(announcementConn)

	u := handlers.Announcement{
		DB:  databases.NewAnnouncementDatabase(db),
		FDB: databases.NewFactoryDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateAnnouncementHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Announcement
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "factory-1", got.FactoryID)
	assert.Equal(t, "Halgranoya Tea", got.FactoryName)
	assert.Equal(t, "New season prices", got.Message)
}

func TestAnnouncement_AnnouncementsHandlerPagination(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/announcements?page=2&limit=10", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "farmer-1", "farmer")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(25), nil)
	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Announcement)
		*arg = []models.Announcement{{FactoryName: "Halgranoya Tea", Message: "page two entry"}}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.On("Collection", "announcements").Return(conn)

	u := handlers.Announcement{DB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.AnnouncementsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.PaginatedAnnouncementsResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.Pagination.CurrentPage)
	assert.Equal(t, 3, got.Pagination.TotalPages)
	assert.Equal(t, 25, got.Pagination.TotalItems)
	assert.True(t, got.Pagination.HasNextPage)
	assert.True(t, got.Pagination.HasPrevPage)
}
