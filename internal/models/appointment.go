package models

import (
	"time"

	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Appointment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PatientID *primitive.ObjectID `bson:"patientId,omitempty" json:"patientId,omitempty"`
	DoctorID  *primitive.ObjectID `bson:"doctorId,omitempty" json:"doctorId,omitempty"`
	DateTime  time.Time           `bson:"dateTime" json:"dateTime"`
	Status    string              `bson:"status" json:"status"` // free text: pending, confirmed, canceled...
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`

	// Display names joined at response time, never stored.
	PatientName string `bson:"-" json:"patientName,omitempty"`
	DoctorName  string `bson:"-" json:"doctorName,omitempty"`
}

func (a *Appointment) Validate() error {
	if a.DateTime.IsZero() {
		return store.Invalid("dateTime", "is required")
	}
	if a.Status == "" {
		return store.Invalid("status", "is required")
	}
	return nil
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime accepts RFC3339 and the shorter forms browsers send from
// date and datetime-local inputs.
func ParseDateTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
