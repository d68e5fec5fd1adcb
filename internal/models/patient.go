package models

import (
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	DOB        string             `bson:"dob" json:"dob"`
	Address    string             `bson:"address" json:"address"`
	Contact    string             `bson:"contact" json:"contact"`
	ProfilePic string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

func (p *Patient) Validate() error {
	switch {
	case p.Name == "":
		return store.Invalid("name", "is required")
	case p.DOB == "":
		return store.Invalid("dob", "is required")
	case p.Address == "":
		return store.Invalid("address", "is required")
	case p.Contact == "":
		return store.Invalid("contact", "is required")
	}
	return nil
}
