package models

import (
	"errors"
	"testing"
	"time"

	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:30:00Z", time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-05-01T10:30", time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}

	_, err := ParseDateTime("tomorrow")
	assert.Error(t, err)
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "", IDString(nil))
	zero := primitive.NilObjectID
	assert.Equal(t, "", IDString(&zero))
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), IDString(&oid))
}

func TestObjectIDPtr(t *testing.T) {
	p, err := ObjectIDPtr("")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = ObjectIDPtr("xyz")
	assert.Error(t, err)

	oid := primitive.NewObjectID()
	p, err = ObjectIDPtr(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, *p)
}

func TestBillValidate(t *testing.T) {
	b := &Bill{Services: "Consultation", Total: 40, PaymentMethod: PaymentMpesa}
	assert.NoError(t, b.Validate())

	b.PaymentMethod = "Cash"
	var verr *store.ValidationError
	require.True(t, errors.As(b.Validate(), &verr))
	assert.Equal(t, "paymentMethod", verr.Field)
}

func TestUserValidateRole(t *testing.T) {
	u := &User{Name: "n", Email: "e@x.com", Role: "nurse", PasswordHash: "h"}
	assert.Error(t, u.Validate())
	u.Role = RoleDoctor
	assert.NoError(t, u.Validate())
}

func TestUserPrincipal(t *testing.T) {
	u := &User{ID: primitive.NewObjectID(), Email: "a@x.com", Role: RoleAdmin}
	p := u.Principal()
	assert.Equal(t, u.ID.Hex(), p.ID)
	assert.True(t, p.IsAdmin())
}
