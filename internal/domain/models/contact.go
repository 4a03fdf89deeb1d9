// internal/domain/models/contact.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is a person the team communicates with. Fullname is derived from
// Firstname/Lastname on every write and carries a unique index.
type Contact struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Firstname   string             `bson:"firstname,omitempty" json:"firstname,omitempty" validate:"max=50"`
	Lastname    string             `bson:"lastname" json:"lastname" validate:"required,max=100"`
	Fullname    string             `bson:"fullname" json:"fullname"`
	Email1      string             `bson:"email1,omitempty" json:"email1,omitempty" validate:"omitempty,email_address"`
	Email2      string             `bson:"email2,omitempty" json:"email2,omitempty" validate:"omitempty,email_address"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	HomePhone   string             `bson:"homePhone,omitempty" json:"homePhone,omitempty"`
	MobilePhone string             `bson:"mobilePhone,omitempty" json:"mobilePhone,omitempty"`
	WorkPhone   string             `bson:"workPhone,omitempty" json:"workPhone,omitempty"`
	FaxPhone    string             `bson:"faxPhone,omitempty" json:"faxPhone,omitempty"`
}

// DeriveFullname returns "firstname lastname" trimmed, or just lastname when
// firstname is empty.
func DeriveFullname(firstname, lastname string) string {
	firstname = strings.TrimSpace(firstname)
	lastname = strings.TrimSpace(lastname)
	if firstname == "" {
		return lastname
	}
	return strings.TrimSpace(firstname + " " + lastname)
}
