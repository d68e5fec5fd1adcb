package access

import (
	"context"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

// Policy evaluates the ownership rules for users, appointments and bills.
// Ids are compared in their hex string form; an unset reference is "" and
// never equals a principal id.
type Policy struct {
	resolver *Resolver
	logger   *logrus.Logger
}

func NewPolicy(resolver *Resolver, logger *logrus.Logger) *Policy {
	return &Policy{resolver: resolver, logger: logger}
}

// HasRole reports whether the principal holds one of roles.
func HasRole(pr models.Principal, roles ...string) bool {
	for _, r := range roles {
		if pr.Role == r {
			return true
		}
	}
	return false
}

// User covers single-user reads, updates and avatar uploads: admin or self.
func (p *Policy) User(pr models.Principal, targetID string) Decision {
	if pr.IsAdmin() || pr.ID == targetID {
		return allow
	}
	return p.deny(pr, "user", targetID, "not the account owner")
}

// Appointment covers reading, updating and deleting one appointment. The
// caller must have loaded it already so a missing id reports not-found first.
func (p *Policy) Appointment(ctx context.Context, pr models.Principal, a *models.Appointment) (Decision, error) {
	if pr.IsAdmin() {
		return allow, nil
	}
	patientID := models.IDString(a.PatientID)
	doctorID := models.IDString(a.DoctorID)

	if pr.ID == patientID {
		return allow, nil
	}
	if pr.Role == models.RoleDoctor {
		resolved, err := p.resolver.EffectiveDoctorID(ctx, pr)
		if err != nil {
			return Decision{}, err
		}
		if resolved != "" && resolved == doctorID {
			return allow, nil
		}
	}
	if pr.ID == doctorID {
		return allow, nil
	}
	return p.deny(pr, "appointment", a.ID.Hex(), "not the appointment's patient or doctor"), nil
}

// BindAppointment fixes the ownership fields of a new appointment: doctors
// book as their resolved doctor id, patients as themselves.
func (p *Policy) BindAppointment(ctx context.Context, pr models.Principal, a *models.Appointment) (Decision, error) {
	switch pr.Role {
	case models.RoleDoctor:
		resolved, err := p.resolver.EffectiveDoctorID(ctx, pr)
		if err != nil {
			return Decision{}, err
		}
		if resolved == "" {
			return p.deny(pr, "appointment", "", "doctor account has no doctor profile"), nil
		}
		oid, err := primitive.ObjectIDFromHex(resolved)
		if err != nil {
			return p.deny(pr, "appointment", "", "unusable doctor id"), nil
		}
		a.DoctorID = &oid
	case models.RolePatient:
		oid, err := primitive.ObjectIDFromHex(pr.ID)
		if err != nil {
			return p.deny(pr, "appointment", "", "unusable patient id"), nil
		}
		a.PatientID = &oid
	}
	return allow, nil
}

// AppointmentScope returns the list filter for pr. adminFilter is used as-is
// for admins; everyone else is pinned to their own documents.
func (p *Policy) AppointmentScope(ctx context.Context, pr models.Principal, adminFilter store.Filter) (store.Filter, Decision, error) {
	switch pr.Role {
	case models.RoleAdmin:
		return adminFilter, allow, nil
	case models.RoleDoctor:
		resolved, err := p.resolver.EffectiveDoctorID(ctx, pr)
		if err != nil {
			return nil, Decision{}, err
		}
		if resolved == "" {
			// No profile and no fallback: only appointments booked against
			// the account id itself belong to this doctor.
			resolved = pr.ID
		}
		oid, err := primitive.ObjectIDFromHex(resolved)
		if err != nil {
			return nil, p.deny(pr, "appointments", "", "unusable doctor id"), nil
		}
		return store.Filter{"doctorId": oid}, allow, nil
	case models.RolePatient:
		return p.ownFilter(pr, "appointments")
	}
	return nil, p.deny(pr, "appointments", "", "role may not list appointments"), nil
}

// Bill covers reading, updating and paying one bill: admin or the owning
// patient. There is no doctor indirection for bills.
func (p *Policy) Bill(pr models.Principal, b *models.Bill) Decision {
	if pr.IsAdmin() || pr.ID == models.IDString(b.PatientID) {
		return allow
	}
	return p.deny(pr, "bill", b.ID.Hex(), "not the bill's patient")
}

// BillScope returns the list filter for pr. Only admins and patients may
// list bills.
func (p *Policy) BillScope(pr models.Principal, adminFilter store.Filter) (store.Filter, Decision) {
	switch pr.Role {
	case models.RoleAdmin:
		return adminFilter, allow
	case models.RolePatient:
		f, d, _ := p.ownFilter(pr, "bills")
		return f, d
	}
	return nil, p.deny(pr, "bills", "", "role may not list bills")
}

func (p *Policy) ownFilter(pr models.Principal, resource string) (store.Filter, Decision, error) {
	oid, err := primitive.ObjectIDFromHex(pr.ID)
	if err != nil {
		return nil, p.deny(pr, resource, "", "unusable patient id"), nil
	}
	return store.Filter{"patientId": oid}, allow, nil
}

func (p *Policy) deny(pr models.Principal, resource, id, reason string) Decision {
	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"principal": pr.ID,
			"role":      pr.Role,
			"resource":  resource,
			"id":        id,
		}).Warn("access denied: " + reason)
	}
	return Decision{Allowed: false, Reason: reason}
}
