package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// Notification exported for testing purposes
type Notification struct {
	DB databases.NotificationDatabase
}

// NotificationsHandler returns the caller's notifications, newest first.
// ?unread=true restricts the list to unread ones.
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	filter := bson.M{"userId": id.UserID}
	if r.URL.Query().Get("unread") == "true" {
		filter["read"] = false
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notifications, err := n.DB.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusNotFound, w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	b, err := json.Marshal(notifications)
	if err != nil {
		config.ErrorStatus("failed to marshal notifications", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// MarkNotificationReadHandler marks one of the caller's notifications as read
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	notificationID := mux.Vars(r)["notification_id"]
	oid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("notification id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	res, err := n.DB.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": id.UserID},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to mark notification read", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("notification not found", http.StatusNotFound, w, errors.New("no notification with that id for caller"))
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// DeleteNotificationHandler deletes one of the caller's notifications
func (n Notification) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	notificationID := mux.Vars(r)["notification_id"]
	oid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("notification id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := n.DB.FindOne(ctx, bson.M{"_id": oid, "userId": id.UserID}); err != nil {
		config.ErrorStatus("notification not found", http.StatusNotFound, w, err)
		return
	}
	if err := n.DB.DeleteOne(ctx, bson.M{"_id": oid, "userId": id.UserID}); err != nil {
		config.ErrorStatus("failed to delete notification", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
