package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// Announcement image payloads are inlined data URLs, capped at 5MB.
const maxAnnouncementImageBytes = 5 << 20

// Announcement exported for testing purposes
type Announcement struct {
	DB  databases.AnnouncementDatabase
	FDB databases.FactoryDatabase
}

// AnnouncementsHandler returns a page of announcements, newest first.
// Supports ?page= and ?limit= query parameters.
func (a Announcement) AnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestIdentity(w, r); !ok {
		return
	}

	page := 1
	limit := 10
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := a.DB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count announcements", http.StatusInternalServerError, w, err)
		return
	}

	announcements, err := a.DB.FindPage(ctx, bson.M{}, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get announcements", http.StatusNotFound, w, err)
		return
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	b, err := json.Marshal(models.PaginatedAnnouncementsResponse{
		Success:       true,
		Announcements: announcements,
		Pagination: models.PaginationInfo{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  int(total),
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to marshal announcements", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// CreateAnnouncementHandler posts an announcement on behalf of the caller's
// factory. Only registered factories may post.
func (a Announcement) CreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	factory, err := a.FDB.FindOne(ctx, bson.M{"userId": id.UserID})
	if err != nil {
		config.ErrorStatus("factory profile not found", http.StatusNotFound, w, err)
		return
	}

	var req models.CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid announcement", http.StatusBadRequest, w, err)
		return
	}
	if req.Image != "" {
		if !strings.HasPrefix(req.Image, "data:image/") {
			config.ErrorStatus("image must be a data URL", http.StatusBadRequest, w, errors.New("image is not a data:image/ URL"))
			return
		}
		if len(req.Image) > maxAnnouncementImageBytes {
			config.ErrorStatus("image exceeds 5MB limit", http.StatusBadRequest, w, errors.New("image data URL too large"))
			return
		}
	}

	announcement := models.Announcement{
		FactoryID:   id.UserID,
		FactoryName: factory.FactoryName,
		Message:     req.Message,
		Image:       req.Image,
		Date:        primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	res, err := a.DB.InsertOne(ctx, announcement)
	if err != nil {
		config.ErrorStatus("failed to insert announcement", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.InsertedID().(primitive.ObjectID); ok {
		announcement.ID = oid
	}

	b, err := json.Marshal(announcement)
	if err != nil {
		config.ErrorStatus("failed to marshal announcement", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

// DeleteAnnouncementHandler removes one of the caller's own announcements
func (a Announcement) DeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	announcementID := mux.Vars(r)["announcement_id"]
	oid, err := primitive.ObjectIDFromHex(announcementID)
	if err != nil {
		config.ErrorStatus("announcement id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	announcement, err := a.DB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		config.ErrorStatus("announcement not found", http.StatusNotFound, w, err)
		return
	}
	if announcement.FactoryID != id.UserID {
		config.ErrorStatus("announcement belongs to another factory", http.StatusForbidden, w, errors.New("caller does not own this announcement"))
		return
	}

	if err := a.DB.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		config.ErrorStatus("failed to delete announcement", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
