// Package access decides who may touch which document: it resolves a
// doctor account to its Doctor profile and evaluates ownership rules.
package access

import (
	"context"
	"errors"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DoctorFinder is the part of the doctor store the resolver needs.
type DoctorFinder interface {
	FindOne(ctx context.Context, f store.Filter) (*models.Doctor, error)
}

// Resolver maps a principal to the id it presents for doctor-owned
// documents. Nothing is cached: profiles can be created or re-emailed at any
// time, so every call hits the store.
type Resolver struct {
	doctors  DoctorFinder
	fallback bool
}

// NewResolver builds a Resolver. With fallback set, a doctor account that has
// no profile resolves to its own User id.
func NewResolver(doctors DoctorFinder, fallback bool) *Resolver {
	return &Resolver{doctors: doctors, fallback: fallback}
}

// EffectiveDoctorID returns the doctor id for p. Non-doctor principals get
// their own id. For doctors the profile linked by userId wins, then the
// profile with the same email, then the fallback. An empty result means the
// doctor has no profile and the fallback is off.
func (r *Resolver) EffectiveDoctorID(ctx context.Context, p models.Principal) (string, error) {
	if p.Role != models.RoleDoctor {
		return p.ID, nil
	}

	if oid, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		id, err := r.lookup(ctx, store.Filter{"userId": oid})
		if id != "" || err != nil {
			return id, err
		}
	}
	if p.Email != "" {
		id, err := r.lookup(ctx, store.Filter{"email": p.Email})
		if id != "" || err != nil {
			return id, err
		}
	}

	if r.fallback {
		return p.ID, nil
	}
	return "", nil
}

func (r *Resolver) lookup(ctx context.Context, f store.Filter) (string, error) {
	d, err := r.doctors.FindOne(ctx, f)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return d.ID.Hex(), nil
}
