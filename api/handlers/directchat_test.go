package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ceylonara/ceylonara-api/api/handlers"
	"github.com/ceylonara/ceylonara-api/databases"
	"github.com/ceylonara/ceylonara-api/databases/mocks"
	"github.com/ceylonara/ceylonara-api/models"
)

// chatMocks wires a db mock holding one chat between farmer-1 and factory-1.
func chatMocks(factoryDisabled bool) (databases.DatabaseHelper, *mocks.CollectionHelper, *mocks.CollectionHelper) {
	db := &MockDatabaseHelper{}

	chatConn := &mocks.CollectionHelper{}
	findResult := &mocks.SingleResultHelper{}
	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.DirectChat)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Participants = []models.ChatParticipant{
			{UserID: "farmer-1", Role: "farmer", Name: "K. Bandara"},
			{UserID: "factory-1", Role: "factory", Name: "Halgranoya Tea", MessagingDisabled: factoryDisabled},
		}
		(*arg).IsActive = true
	})
	chatConn.On("FindOne", mock.Anything, mock.Anything).Return(findResult)
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "directChats").Return(chatConn)

	notificationConn := &mocks.CollectionHelper{}
	notificationConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "notifications").Return(notificationConn)

	return db, chatConn, notificationConn
}

func newChatHandler(db databases.DatabaseHelper) handlers.DirectChat {
	return handlers.DirectChat{
		DB:  databases.NewDirectChatDatabase(db),
		NDB: databases.NewNotificationDatabase(db),
	}
}

func sendMessageRequest(t *testing.T, userID string) *http.Request {
	body, _ := json.Marshal(models.SendMessageRequest{Text: "Is the lorry coming today?"})
	req, err := http.NewRequest("POST", "/api/direct-chats/608cafd695eb9dc05379b7f3/messages", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chat_id": "608cafd695eb9dc05379b7f3"})
	return authedRequest(req, userID, "farmer")
}

func TestDirectChat_SendMessageHandler(t *testing.T) {
	db, chatConn, notificationConn := chatMocks(false)
	u := newChatHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SendMessageHandler).ServeHTTP(rr, sendMessageRequest(t, "farmer-1"))

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.ChatMessage
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "farmer-1", got.Sender)
	assert.Equal(t, "text", got.MessageType)
	assert.Equal(t, "Is the lorry coming today?", got.Text)

	chatConn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	notificationConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestDirectChat_SendMessageHandlerMessagingDisabled(t *testing.T) {
	db, _, _ := chatMocks(true)
	u := newChatHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SendMessageHandler).ServeHTTP(rr, sendMessageRequest(t, "farmer-1"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "messaging is disabled for this chat")
}

func TestDirectChat_SendMessageHandlerNotParticipant(t *testing.T) {
	db, _, _ := chatMocks(false)
	u := newChatHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SendMessageHandler).ServeHTTP(rr, sendMessageRequest(t, "farmer-9"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "not a participant of this chat")
}

func TestDirectChat_MarkMessagesReadHandlerFiltersOwnMessages(t *testing.T) {
	db := &MockDatabaseHelper{}
	chatConn := &mocks.CollectionHelper{}
	findResult := &mocks.SingleResultHelper{}

	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.DirectChat)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Participants = []models.ChatParticipant{
			{UserID: "farmer-1", Role: "farmer", Name: "K. Bandara"},
			{UserID: "factory-1", Role: "factory", Name: "Halgranoya Tea"},
		}
	})
	chatConn.On("FindOne", mock.Anything, mock.Anything).Return(findResult)

	var arrayFilters []interface{}
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).Run(func(args mock.Arguments) {
		opts := args.Get(3).(*options.UpdateOptions)
		arrayFilters = opts.ArrayFilters.Filters
	})
	db.On("Collection", "directChats").Return(chatConn)

	req, err := http.NewRequest("PUT", "/api/direct-chats/608cafd695eb9dc05379b7f3/read", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chat_id": "608cafd695eb9dc05379b7f3"})
	req = authedRequest(req, "farmer-1", "farmer")

	u := handlers.DirectChat{DB: databases.NewDirectChatDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MarkMessagesReadHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// only messages authored by the other side may be touched
	assert.Len(t, arrayFilters, 1)
	assert.Equal(t, bson.M{"m.sender": bson.M{"$ne": "farmer-1"}, "m.read": false}, arrayFilters[0])
}

func TestDirectChat_SendMessageHandlerPreviewStaysValidUTF8(t *testing.T) {
	db := &MockDatabaseHelper{}
	chatConn := &mocks.CollectionHelper{}
	findResult := &mocks.SingleResultHelper{}

	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.DirectChat)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Participants = []models.ChatParticipant{
			{UserID: "farmer-1", Role: "farmer", Name: "K. Bandara"},
			{UserID: "factory-1", Role: "factory", Name: "Halgranoya Tea"},
		}
	})
	chatConn.On("FindOne", mock.Anything, mock.Anything).Return(findResult)

	var preview string
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).Run(func(args mock.Arguments) {
		update := args.Get(2).(bson.M)
		preview = update["$set"].(bson.M)["lastMessagePreview"].(string)
	})
	db.On("Collection", "directChats").Return(chatConn)

	notificationConn := &mocks.CollectionHelper{}
	notificationConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "notifications").Return(notificationConn)

	u := newChatHandler(db)

	// 30 three-byte runes, so a naive 80-byte cut would land mid-rune
	text := strings.Repeat("ක", 30)
	body, _ := json.Marshal(models.SendMessageRequest{Text: text})
	req, err := http.NewRequest("POST", "/api/direct-chats/608cafd695eb9dc05379b7f3/messages", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"chat_id": "608cafd695eb9dc05379b7f3"})
	req = authedRequest(req, "farmer-1", "farmer")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, utf8.ValidString(preview))
	assert.True(t, len(preview) <= 80)
	assert.Equal(t, strings.Repeat("ක", 26), preview)
}

func TestDirectChat_CreateChatHandlerReturnsExisting(t *testing.T) {
	db, _, _ := chatMocks(false)

	farmerConn := &mocks.CollectionHelper{}
	farmerResult := &mocks.SingleResultHelper{}
	farmerResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Farmer)
		(*arg).UserID = "farmer-1"
		(*arg).FarmerName = "K. Bandara"
	})
	farmerConn.On("FindOne", mock.Anything, mock.Anything).Return(farmerResult)
	db.(*MockDatabaseHelper).On("Collection", "farmers").Return(farmerConn)

	u := handlers.DirectChat{
		DB:     databases.NewDirectChatDatabase(db),
		FarmDB: databases.NewFarmerDatabase(db),
		NDB:    databases.NewNotificationDatabase(db),
	}

	body, _ := json.Marshal(models.CreateChatRequest{ParticipantID: "factory-1"})
	req, err := http.NewRequest("POST", "/api/direct-chats", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, "farmer-1", "farmer")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateChatHandler).ServeHTTP(rr, req)

	// the chat already exists, so no duplicate is created
	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.DirectChat
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Len(t, got.Participants, 2)
}
