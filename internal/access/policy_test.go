package access

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func oidPtr(hex string) *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return &oid
}

func newPolicy(doctors *store.Memory[models.Doctor], fallback bool) *Policy {
	return NewPolicy(NewResolver(doctors, fallback), quietLogger())
}

func TestAppointmentAccess(t *testing.T) {
	ctx := context.Background()
	doctors := store.NewMemory[models.Doctor]()
	profile := addDoctor(t, doctors, "alice@x.com")
	pol := newPolicy(doctors, true)

	admin := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}
	patient := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}
	otherPatient := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}
	alice := doctorPrincipal("alice@x.com")
	stranger := doctorPrincipal("bob@x.com")

	appt := &models.Appointment{
		ID:        primitive.NewObjectID(),
		PatientID: oidPtr(patient.ID),
		DoctorID:  &profile.ID,
	}
	literal := &models.Appointment{ID: primitive.NewObjectID(), DoctorID: oidPtr(stranger.ID)}
	orphan := &models.Appointment{ID: primitive.NewObjectID()}

	tests := []struct {
		name string
		who  models.Principal
		appt *models.Appointment
		want bool
	}{
		{"admin", admin, appt, true},
		{"admin on orphan", admin, orphan, true},
		{"owning patient", patient, appt, true},
		{"other patient", otherPatient, appt, false},
		{"resolved doctor", alice, appt, true},
		{"unrelated doctor", stranger, appt, false},
		{"literal doctor id", stranger, literal, true},
		{"patient on orphan", patient, orphan, false},
		{"doctor on orphan", alice, orphan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := pol.Appointment(ctx, tt.who, tt.appt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Allowed)
			if !tt.want {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestAppointmentAccessFallbackDoctor(t *testing.T) {
	ctx := context.Background()
	doctors := store.NewMemory[models.Doctor]()
	doc := doctorPrincipal("noprofile@x.com")
	appt := &models.Appointment{ID: primitive.NewObjectID(), DoctorID: oidPtr(doc.ID)}

	for _, fallback := range []bool{true, false} {
		d, err := newPolicy(doctors, fallback).Appointment(ctx, doc, appt)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "fallback=%v", fallback)
	}
}

func TestBindAppointment(t *testing.T) {
	ctx := context.Background()
	doctors := store.NewMemory[models.Doctor]()
	profile := addDoctor(t, doctors, "alice@x.com")

	t.Run("doctor binds profile id", func(t *testing.T) {
		a := &models.Appointment{}
		d, err := newPolicy(doctors, true).BindAppointment(ctx, doctorPrincipal("alice@x.com"), a)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, profile.ID, *a.DoctorID)
	})

	t.Run("doctor without profile falls back to user id", func(t *testing.T) {
		p := doctorPrincipal("ghost@x.com")
		a := &models.Appointment{DoctorID: &profile.ID}
		d, err := newPolicy(doctors, true).BindAppointment(ctx, p, a)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, p.ID, a.DoctorID.Hex())
	})

	t.Run("doctor without profile denied without fallback", func(t *testing.T) {
		d, err := newPolicy(doctors, false).BindAppointment(ctx, doctorPrincipal("ghost@x.com"), &models.Appointment{})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})

	t.Run("patient binds self and keeps doctor", func(t *testing.T) {
		p := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}
		a := &models.Appointment{PatientID: oidPtr(primitive.NewObjectID().Hex()), DoctorID: &profile.ID}
		d, err := newPolicy(doctors, true).BindAppointment(ctx, p, a)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, p.ID, a.PatientID.Hex())
		assert.Equal(t, profile.ID, *a.DoctorID)
	})

	t.Run("admin keeps payload", func(t *testing.T) {
		pid := primitive.NewObjectID()
		a := &models.Appointment{PatientID: &pid}
		admin := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}
		d, err := newPolicy(doctors, true).BindAppointment(ctx, admin, a)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, pid, *a.PatientID)
		assert.Nil(t, a.DoctorID)
	})
}

func TestAppointmentScope(t *testing.T) {
	ctx := context.Background()
	doctors := store.NewMemory[models.Doctor]()
	profile := addDoctor(t, doctors, "alice@x.com")
	pol := newPolicy(doctors, true)

	adminFilter := store.Filter{"status": "pending"}
	f, d, err := pol.AppointmentScope(ctx, models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}, adminFilter)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, adminFilter, f)

	f, d, err = pol.AppointmentScope(ctx, doctorPrincipal("alice@x.com"), adminFilter)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, store.Filter{"doctorId": profile.ID}, f)

	patient := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}
	f, d, err = pol.AppointmentScope(ctx, patient, adminFilter)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, store.Filter{"patientId": *oidPtr(patient.ID)}, f)

	_, d, err = pol.AppointmentScope(ctx, models.Principal{ID: primitive.NewObjectID().Hex(), Role: "guest"}, nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestBillAccess(t *testing.T) {
	pol := newPolicy(store.NewMemory[models.Doctor](), true)
	owner := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}
	bill := &models.Bill{ID: primitive.NewObjectID(), PatientID: oidPtr(owner.ID)}

	assert.True(t, pol.Bill(owner, bill).Allowed)
	assert.True(t, pol.Bill(models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}, bill).Allowed)
	assert.False(t, pol.Bill(models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}, bill).Allowed)
	assert.False(t, pol.Bill(models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleDoctor}, bill).Allowed)
	assert.False(t, pol.Bill(owner, &models.Bill{ID: primitive.NewObjectID()}).Allowed)
}

func TestBillScope(t *testing.T) {
	pol := newPolicy(store.NewMemory[models.Doctor](), true)
	patient := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}

	f, d := pol.BillScope(patient, store.Filter{"paid": true})
	assert.True(t, d.Allowed)
	assert.Equal(t, store.Filter{"patientId": *oidPtr(patient.ID)}, f)

	_, d = pol.BillScope(models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RoleDoctor}, nil)
	assert.False(t, d.Allowed)
}

func TestUserAccess(t *testing.T) {
	pol := newPolicy(store.NewMemory[models.Doctor](), true)
	self := models.Principal{ID: primitive.NewObjectID().Hex(), Role: models.RolePatient}

	assert.True(t, pol.User(self, self.ID).Allowed)
	assert.False(t, pol.User(self, primitive.NewObjectID().Hex()).Allowed)
	assert.True(t, pol.User(models.Principal{ID: "a", Role: models.RoleAdmin}, self.ID).Allowed)
}

func TestHasRole(t *testing.T) {
	p := models.Principal{Role: models.RoleDoctor}
	assert.True(t, HasRole(p, models.RoleAdmin, models.RoleDoctor))
	assert.False(t, HasRole(p, models.RoleAdmin))
}

func TestFilterSchemaParse(t *testing.T) {
	pid := primitive.NewObjectID()
	f, err := BillFilters.Parse(url.Values{
		"patientId":     {pid.Hex()},
		"paid":          {"false"},
		"paymentMethod": {"Mpesa"},
		"total":         {"12.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, store.Filter{"patientId": pid, "paid": false, "paymentMethod": "Mpesa", "total": 12.5}, f)

	_, err = AppointmentFilters.Parse(url.Values{"passwordHash": {"x"}})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "passwordHash", verr.Field)

	_, err = AppointmentFilters.Parse(url.Values{"doctorId": {"not-hex"}})
	assert.Error(t, err)

	f, err = AppointmentFilters.Parse(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, f)
}
