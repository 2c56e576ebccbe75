package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeMessage = "message"
	NotificationTypeSystem  = "system"
	NotificationTypeRequest = "request"
)

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID         primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UserID     string              `json:"userId" bson:"userId"`
	Type       string              `json:"type" bson:"type"` // 'message', 'system', 'request'
	Title      string              `json:"title" bson:"title"`
	Content    string              `json:"content" bson:"content"`
	SourceID   string              `json:"sourceId,omitempty" bson:"sourceId,omitempty"`
	SourceName string              `json:"sourceName,omitempty" bson:"sourceName,omitempty"`
	SourceType string              `json:"sourceType,omitempty" bson:"sourceType,omitempty"`
	Read       bool                `json:"read" bson:"read"`
	ReadAt     *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
	Link       string              `json:"link,omitempty" bson:"link,omitempty"`
	CreatedAt  primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}
