// internal/domain/models/succession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trust roles held on a succession file.
const (
	TrustRoleUniqueLiquidator = "Unique Liquidator"
	TrustRoleCoLiquidator     = "Co-Liquidator"
	TrustRoleServiceContract  = "Service Contract"
)

// Succession is the estate-settlement sub-profile of a portfolio.
type Succession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ClientName  string             `bson:"clientName" json:"clientName" validate:"required,max=50"`
	DateOfDeath time.Time          `bson:"dateOfDeath" json:"dateOfDeath" validate:"required"`
	TrustRole   string             `bson:"trustRole" json:"trustRole" validate:"required,oneof='Unique Liquidator' 'Co-Liquidator' 'Service Contract'"`
}

func (*Succession) PortType() PortType { return PortTypeSuccession }
