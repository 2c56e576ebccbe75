package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement holds the structure for the announcements collection in mongo
type Announcement struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FactoryID   string             `json:"factoryId" bson:"factoryId"`
	FactoryName string             `json:"factoryName" bson:"factoryName"`
	Message     string             `json:"message" bson:"message"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"` // data URL, capped at 5MB
	Date        primitive.DateTime `json:"date" bson:"date"`
}

// CreateAnnouncementRequest holds the structure for a factory posting an announcement
type CreateAnnouncementRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
	Image   string `json:"image" validate:"omitempty"`
}

// PaginatedAnnouncementsResponse holds the structure for paginated announcements response
type PaginatedAnnouncementsResponse struct {
	Success       bool           `json:"success"`
	Announcements []Announcement `json:"announcements"`
	Pagination    PaginationInfo `json:"pagination"`
}

// PaginationInfo holds pagination metadata
type PaginationInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}
