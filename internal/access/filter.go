package access

import (
	"net/url"
	"strconv"

	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldKind int

const (
	StringField FieldKind = iota
	ObjectIDField
	BoolField
	NumberField
)

// FilterSchema lists the query parameters an admin may filter a resource by
// and how each value is typed.
type FilterSchema map[string]FieldKind

var (
	AppointmentFilters = FilterSchema{
		"patientId": ObjectIDField,
		"doctorId":  ObjectIDField,
		"status":    StringField,
	}
	BillFilters = FilterSchema{
		"patientId":     ObjectIDField,
		"paid":          BoolField,
		"paymentMethod": StringField,
		"total":         NumberField,
	}
)

// Parse turns query parameters into an equality filter. Unknown parameters
// and values that do not parse are validation errors. Repeated parameters
// use the first value.
func (s FilterSchema) Parse(q url.Values) (store.Filter, error) {
	f := store.Filter{}
	for key, vals := range q {
		kind, ok := s[key]
		if !ok {
			return nil, store.Invalid(key, "is not a supported filter")
		}
		if len(vals) == 0 {
			continue
		}
		raw := vals[0]

		switch kind {
		case StringField:
			f[key] = raw
		case ObjectIDField:
			oid, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return nil, store.Invalid(key, "must be an id")
			}
			f[key] = oid
		case BoolField:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, store.Invalid(key, "must be true or false")
			}
			f[key] = b
		case NumberField:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, store.Invalid(key, "must be a number")
			}
			f[key] = n
		}
	}
	return f, nil
}
