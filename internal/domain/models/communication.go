// internal/domain/models/communication.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Communication methods.
const (
	MethodPhone      = "Phone"
	MethodConference = "Conference"
	MethodVideo      = "Video"
	MethodEmail      = "Email"
	MethodOther      = "Other"
)

// Communication is a logged exchange with the contacts of one portfolio.
// Contacts holds ContactInPortfolio ids in attach order; duplicates are allowed.
type Communication struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Subject   string               `bson:"subject" json:"subject" validate:"required,max=150"`
	Content   string               `bson:"content" json:"content" validate:"required"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy" validate:"required"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Date      time.Time            `bson:"date" json:"date" validate:"required"`
	Method    string               `bson:"method" json:"method" validate:"required,oneof=Phone Conference Video Email Other"`
	Portfolio primitive.ObjectID   `bson:"portfolio" json:"portfolio" validate:"required"`
	Contacts  []primitive.ObjectID `bson:"contacts" json:"contacts"`
}
