// internal/domain/models/contactinportfolio.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactInPortfolio links one contact to one portfolio with a role.
// A contact may appear in many portfolios through distinct rows.
type ContactInPortfolio struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Portfolio     primitive.ObjectID `bson:"portfolio" json:"portfolio" validate:"required"`
	Contact       primitive.ObjectID `bson:"contact" json:"contact" validate:"required"`
	Role          string             `bson:"role" json:"role" validate:"required"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	InactiveSince *time.Time         `bson:"inactiveSince,omitempty" json:"inactiveSince,omitempty"`
}
