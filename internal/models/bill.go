package models

import (
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentBank  = "Bank"
	PaymentMpesa = "Mpesa"
)

type Bill struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PatientID     *primitive.ObjectID `bson:"patientId,omitempty" json:"patientId,omitempty"`
	Services      string              `bson:"services" json:"services"`
	Total         float64             `bson:"total" json:"total"`
	Paid          bool                `bson:"paid" json:"paid"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
}

func ValidPaymentMethod(m string) bool {
	return m == PaymentBank || m == PaymentMpesa
}

func (b *Bill) Validate() error {
	switch {
	case b.Services == "":
		return store.Invalid("services", "is required")
	case b.Total < 0:
		return store.Invalid("total", "must not be negative")
	case !ValidPaymentMethod(b.PaymentMethod):
		return store.Invalid("paymentMethod", "must be Bank or Mpesa")
	}
	return nil
}
