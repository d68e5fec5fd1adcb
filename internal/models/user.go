package models

import (
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // never serialized
	ProfilePic   string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

func (u *User) Validate() error {
	switch {
	case u.Name == "":
		return store.Invalid("name", "is required")
	case u.Email == "":
		return store.Invalid("email", "is required")
	case !ValidRole(u.Role):
		return store.Invalid("role", "must be one of admin, doctor, patient")
	case u.PasswordHash == "":
		return store.Invalid("passwordHash", "is required")
	}
	return nil
}

// Principal is the identity an authenticated user presents to the access
// policy.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID.Hex(), Role: u.Role, Email: u.Email}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    string
	Role  string
	Email string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IDString returns the hex form of a reference, or "" when it is unset.
func IDString(id *primitive.ObjectID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return id.Hex()
}

// ObjectIDPtr parses hex into a reference. An empty string yields nil.
func ObjectIDPtr(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}
