// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Guest is the default for self-registered users.
const (
	RoleAccountManager = "account_manager"
	RoleTeamManager    = "team_manager"
	RoleAdmin          = "admin"
	RoleMaintenance    = "maintenance"
	RoleGuest          = "guest"
)

// Privilege tags. PrivilegeUser is the default set assigned at registration.
const (
	PrivilegeInstitutional = "institutional"
	PrivilegeSuccession    = "succession"
	PrivilegeAll           = "all"
	PrivilegeUser          = "user"
)

// User is an authenticated account. The password hash is stored under
// "password" and is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Email        string             `bson:"email" json:"email" validate:"required,email_address"`
	Role         string             `bson:"role" json:"role" validate:"oneof=account_manager team_manager admin maintenance guest"`
	Privileges   []string           `bson:"privileges" json:"privileges" validate:"dive,oneof=institutional succession all user"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
