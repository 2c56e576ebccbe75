package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/api"
	"github.com/ceylonara/ceylonara-api/config"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/models"
)

// previewLimit caps the chat list preview text.
const previewLimit = 80

// DirectChat exported for testing purposes
type DirectChat struct {
	DB        databases.DirectChatDatabase
	FDB       databases.FactoryDatabase
	FarmDB    databases.FarmerDatabase
	NDB       databases.NotificationDatabase
	UploadDir string
}

// resolveParticipant looks a user up by id, trying the farmer registry first
// and falling back to the factory registry.
func (d DirectChat) resolveParticipant(ctx context.Context, userID string) (models.ChatParticipant, error) {
	if farmer, err := d.FarmDB.FindOne(ctx, bson.M{"userId": userID}); err == nil {
		return models.ChatParticipant{UserID: userID, Role: models.RoleFarmer, Name: farmer.FarmerName}, nil
	}
	if factory, err := d.FDB.FindOne(ctx, bson.M{"userId": userID}); err == nil {
		return models.ChatParticipant{UserID: userID, Role: models.RoleFactory, Name: factory.FactoryName}, nil
	}
	return models.ChatParticipant{}, errors.New("no farmer or factory profile for user " + userID)
}

// CreateChatHandler opens a chat between the caller and another user. Opening
// a chat that already exists returns the existing chat rather than a duplicate.
func (d DirectChat) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid chat request", http.StatusBadRequest, w, err)
		return
	}
	if req.ParticipantID == id.UserID {
		config.ErrorStatus("cannot open a chat with yourself", http.StatusBadRequest, w, errors.New("participantId equals caller id"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	self, err := d.resolveParticipant(ctx, id.UserID)
	if err != nil {
		config.ErrorStatus("caller has no marketplace profile", http.StatusNotFound, w, err)
		return
	}
	other, err := d.resolveParticipant(ctx, req.ParticipantID)
	if err != nil {
		config.ErrorStatus("participant not found", http.StatusNotFound, w, err)
		return
	}

	existing, err := d.DB.FindOne(ctx, bson.M{
		"participants.userId": bson.M{"$all": []string{id.UserID, req.ParticipantID}},
	})
	if err == nil {
		b, _ := json.Marshal(existing)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	self.LastSeen = now
	chat := models.DirectChat{
		Participants:  []models.ChatParticipant{self, other},
		Messages:      []models.ChatMessage{},
		LastMessageAt: now,
		IsActive:      true,
	}
	res, err := d.DB.InsertOne(ctx, chat)
	if err != nil {
		config.ErrorStatus("failed to insert chat", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.InsertedID().(primitive.ObjectID); ok {
		chat.ID = oid
	}

	b, err := json.Marshal(chat)
	if err != nil {
		config.ErrorStatus("failed to marshal chat", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

// ChatsHandler returns the caller's chats, most recently active first
func (d DirectChat) ChatsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chats, err := d.DB.Find(ctx,
		bson.M{"participants.userId": id.UserID},
		options.Find().SetSort(bson.M{"lastMessageAt": -1}),
	)
	if err != nil {
		config.ErrorStatus("failed to get chats", http.StatusNotFound, w, err)
		return
	}
	if chats == nil {
		chats = []models.DirectChat{}
	}

	b, err := json.Marshal(chats)
	if err != nil {
		config.ErrorStatus("failed to marshal chats", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// loadOwnChat fetches a chat by path id and verifies the caller is one of its
// participants. Writes the error response itself on failure.
func (d DirectChat) loadOwnChat(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (*models.DirectChat, bool) {
	chatID := mux.Vars(r)["chat_id"]
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		config.ErrorStatus("chat id is not a valid object id", http.StatusBadRequest, w, err)
		return nil, false
	}

	chat, err := d.DB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		config.ErrorStatus("chat not found", http.StatusNotFound, w, err)
		return nil, false
	}
	if chat.Participant(userID) == nil {
		config.ErrorStatus("not a participant of this chat", http.StatusForbidden, w, errors.New("caller is not a chat participant"))
		return nil, false
	}
	return chat, true
}

// ChatByIDHandler returns a single chat with its full message history and
// refreshes the caller's last-seen stamp.
func (d DirectChat) ChatByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, ok := d.loadOwnChat(ctx, w, r, id.UserID)
	if !ok {
		return
	}

	_, err := d.DB.UpdateOne(ctx,
		bson.M{"_id": chat.ID},
		bson.M{"$set": bson.M{"participants.$[p].lastSeen": primitive.NewDateTimeFromTime(time.Now().UTC())}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"p.userId": id.UserID}},
		}),
	)
	if err != nil {
		zap.S().With(err).Error("failed to update last seen")
	}

	b, err := json.Marshal(chat)
	if err != nil {
		config.ErrorStatus("failed to marshal chat", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// SendMessageHandler appends a text message to a chat. Rejected when either
// side has disabled messaging.
func (d DirectChat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid message", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, ok := d.loadOwnChat(ctx, w, r, id.UserID)
	if !ok {
		return
	}

	message := models.ChatMessage{
		ID:          primitive.NewObjectID(),
		Sender:      id.UserID,
		Text:        req.Text,
		MessageType: "text",
		Timestamp:   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	d.appendMessage(ctx, w, chat, message, req.Text, id.UserID)
}

// SendFileMessageHandler appends a file message to a chat. The file arrives as
// multipart form data under the "file" field and is stored on local disk.
func (d DirectChat) SendFileMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, ok := d.loadOwnChat(ctx, w, r, id.UserID)
	if !ok {
		return
	}

	fileURL, fileName, size, err := saveUpload(r, "file", d.UploadDir, chatFileMIMEs)
	if err != nil {
		config.ErrorStatus("failed to store file", http.StatusBadRequest, w, err)
		return
	}

	message := models.ChatMessage{
		ID:          primitive.NewObjectID(),
		Sender:      id.UserID,
		MessageType: "file",
		FileURL:     fileURL,
		FileName:    fileName,
		FileSize:    size,
		Timestamp:   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	d.appendMessage(ctx, w, chat, message, "Sent a file: "+fileName, id.UserID)
}

// appendMessage pushes a message, refreshes the chat preview, and notifies the
// other participant. Enforces the two-sided messaging toggle.
func (d DirectChat) appendMessage(ctx context.Context, w http.ResponseWriter, chat *models.DirectChat, message models.ChatMessage, preview, senderID string) {
	for _, p := range chat.Participants {
		if p.MessagingDisabled {
			config.ErrorStatus("messaging is disabled for this chat", http.StatusForbidden, w, errors.New("a participant has disabled messaging"))
			return
		}
	}

	if len(preview) > previewLimit {
		// back up to a rune boundary so the stored preview stays valid UTF-8
		cut := previewLimit
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}

	_, err := d.DB.UpdateOne(ctx,
		bson.M{"_id": chat.ID},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set": bson.M{
				"lastMessageAt":      message.Timestamp,
				"lastMessagePreview": preview,
			},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to append message", http.StatusInternalServerError, w, err)
		return
	}

	sender := chat.Participant(senderID)
	if other := chat.OtherParticipant(senderID); other != nil {
		_, err = d.NDB.InsertOne(ctx, models.Notification{
			UserID:     other.UserID,
			Type:       models.NotificationTypeMessage,
			Title:      "New message from " + sender.Name,
			Content:    preview,
			SourceID:   chat.ID.Hex(),
			SourceName: sender.Name,
			SourceType: sender.Role,
			Read:       false,
			CreatedAt:  message.Timestamp,
		})
		if err != nil {
			zap.S().With(err).Error("failed to insert message notification")
		}
	}

	b, err := json.Marshal(message)
	if err != nil {
		config.ErrorStatus("failed to marshal message", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

// MarkMessagesReadHandler marks every message from the other participant as read
func (d DirectChat) MarkMessagesReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, ok := d.loadOwnChat(ctx, w, r, id.UserID)
	if !ok {
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	_, err := d.DB.UpdateOne(ctx,
		bson.M{"_id": chat.ID},
		bson.M{"$set": bson.M{
			"messages.$[m].read":   true,
			"messages.$[m].readAt": now,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.sender": bson.M{"$ne": id.UserID}, "m.read": false}},
		}),
	)
	if err != nil {
		config.ErrorStatus("failed to mark messages read", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// ToggleMessagingHandler disables or re-enables messaging on the caller's side
// of a chat. While either side is disabled, neither side can send.
func (d DirectChat) ToggleMessagingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.ToggleMessagingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("disabled flag is required", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, ok := d.loadOwnChat(ctx, w, r, id.UserID)
	if !ok {
		return
	}

	_, err := d.DB.UpdateOne(ctx,
		bson.M{"_id": chat.ID},
		bson.M{"$set": bson.M{"participants.$[p].messagingDisabled": *req.Disabled}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"p.userId": id.UserID}},
		}),
	)
	if err != nil {
		config.ErrorStatus("failed to update messaging toggle", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true, "disabled": *req.Disabled})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
