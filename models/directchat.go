package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DirectChat holds the structure for the directChats collection in mongo.
// Exactly two participants; the message history is embedded and append-only
// from the API's perspective.
type DirectChat struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Participants       []ChatParticipant  `json:"participants" bson:"participants"`
	Messages           []ChatMessage      `json:"messages" bson:"messages"`
	LastMessageAt      primitive.DateTime `json:"lastMessageAt" bson:"lastMessageAt"`
	LastMessagePreview string             `json:"lastMessagePreview" bson:"lastMessagePreview"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
}

// Participant returns the participant with the given user id, or nil
func (c *DirectChat) Participant(userID string) *ChatParticipant {
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// OtherParticipant returns the participant on the far side of userID, or nil
func (c *DirectChat) OtherParticipant(userID string) *ChatParticipant {
	for i := range c.Participants {
		if c.Participants[i].UserID != userID {
			return &c.Participants[i]
		}
	}
	return nil
}

// ChatParticipant is one side of a direct chat
type ChatParticipant struct {
	UserID            string             `json:"userId" bson:"userId"`
	Role              string             `json:"role" bson:"role"` // 'farmer' or 'factory'
	Name              string             `json:"name" bson:"name"`
	MessagingDisabled bool               `json:"messagingDisabled" bson:"messagingDisabled"`
	LastSeen          primitive.DateTime `json:"lastSeen" bson:"lastSeen"`
}

// ChatMessage is a single embedded message inside a direct chat
type ChatMessage struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id"`
	Sender      string              `json:"sender" bson:"sender"`
	Text        string              `json:"text,omitempty" bson:"text,omitempty"`
	MessageType string              `json:"messageType" bson:"messageType"` // 'text' or 'file'
	FileURL     string              `json:"fileUrl,omitempty" bson:"fileUrl,omitempty"`
	FileName    string              `json:"fileName,omitempty" bson:"fileName,omitempty"`
	FileSize    int64               `json:"fileSize,omitempty" bson:"fileSize,omitempty"`
	Timestamp   primitive.DateTime  `json:"timestamp" bson:"timestamp"`
	Read        bool                `json:"read" bson:"read"`
	ReadAt      *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
}

// CreateChatRequest holds the structure for opening a chat with another user
type CreateChatRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

// SendMessageRequest holds the structure for sending a text message
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

// ToggleMessagingRequest holds the structure for disabling or re-enabling
// messaging on the calling participant's side of a chat
type ToggleMessagingRequest struct {
	Disabled *bool `json:"disabled" validate:"required"`
}
