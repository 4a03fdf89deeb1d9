// internal/domain/models/institutional.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Institutional is the institution-client sub-profile of a portfolio.
type Institutional struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Market string             `bson:"market" json:"market" validate:"required,oneof='Religious Institution' 'Trust Corporation' 'Retirement Firm' Morgue Holdings Other"`
	Status string             `bson:"status" json:"status" validate:"required,oneof=Prospect Established 'Established w/ Opportunity' Danger Closing"`
}

func (*Institutional) PortType() PortType { return PortTypeInstitutional }
