// internal/domain/models/portfolio.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PortType discriminates which sub-profile a portfolio owns.
type PortType string

const (
	PortTypeInstitutional PortType = "Institutional"
	PortTypeSuccession    PortType = "Succession"
	// PortTypeTrust is accepted by the schema but has no sub-profile yet.
	PortTypeTrust PortType = "Trust"
)

// Profile is the type-specific half of a portfolio: a Succession or an
// Institutional document.
type Profile interface {
	PortType() PortType
}

// Portfolio is a client account. Exactly one of Succession/Institutional is
// set, and it must match PortType.
type Portfolio struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	PortName        string               `bson:"portName" json:"portName" validate:"required"`
	PortNumber      string               `bson:"portNumber,omitempty" json:"portNumber,omitempty"`
	PortType        PortType             `bson:"portType" json:"portType" validate:"required,oneof=Institutional Succession Trust"`
	Succession      *primitive.ObjectID  `bson:"succession,omitempty" json:"succession,omitempty"`
	Institutional   *primitive.ObjectID  `bson:"institutional,omitempty" json:"institutional,omitempty"`
	PortDescription string               `bson:"portDescription,omitempty" json:"portDescription,omitempty" validate:"max=500"`
	Manager         primitive.ObjectID   `bson:"manager" json:"manager" validate:"required"`
	Associates      []primitive.ObjectID `bson:"associates" json:"associates"`

	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	ClosedAt      *time.Time `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	LastContacted *time.Time `bson:"lastContacted,omitempty" json:"lastContacted,omitempty"`
}

// ProfileRef returns the id of the sub-profile selected by PortType.
// ok is false for Trust portfolios or when the reference is missing.
func (p Portfolio) ProfileRef() (id primitive.ObjectID, ok bool) {
	switch p.PortType {
	case PortTypeSuccession:
		if p.Succession != nil {
			return *p.Succession, true
		}
	case PortTypeInstitutional:
		if p.Institutional != nil {
			return *p.Institutional, true
		}
	}
	return primitive.NilObjectID, false
}

// PortfolioView is a portfolio with its sub-profile resolved.
type PortfolioView struct {
	Portfolio
	Succession    *Succession    `json:"succession,omitempty"`
	Institutional *Institutional `json:"institutional,omitempty"`
}

// NewPortfolioView pairs a portfolio with its loaded sub-profile.
func NewPortfolioView(p Portfolio, profile Profile) PortfolioView {
	v := PortfolioView{Portfolio: p}
	switch sp := profile.(type) {
	case *Succession:
		v.Succession = sp
	case *Institutional:
		v.Institutional = sp
	}
	return v
}
