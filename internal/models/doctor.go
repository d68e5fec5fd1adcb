package models

import (
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doctor is a doctor's public profile. It is a separate record from the
// doctor's login User; UserID links the two when the profile was created
// for an existing account, otherwise only the email ties them together.
type Doctor struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Name       string              `bson:"name" json:"name"`
	Email      string              `bson:"email" json:"email"`
	Experience int                 `bson:"experience" json:"experience"` // years
	Contact    string              `bson:"contact" json:"contact"`
	ProfilePic string              `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

func (d *Doctor) Validate() error {
	switch {
	case d.Name == "":
		return store.Invalid("name", "is required")
	case d.Email == "":
		return store.Invalid("email", "is required")
	case d.Experience < 0:
		return store.Invalid("experience", "must not be negative")
	case d.Contact == "":
		return store.Invalid("contact", "is required")
	}
	return nil
}
