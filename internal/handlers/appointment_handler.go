package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/access"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateAppointmentRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	DateTime  string `json:"dateTime"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

// CreateAppointment books an appointment. Doctors always book as their own
// doctor id and patients as themselves, whatever the body says.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.DateTime == "" {
		badRequest(c, "dateTime is required", nil)
		return
	}
	dateTime, err := models.ParseDateTime(req.DateTime)
	if err != nil {
		badRequest(c, "Validation failed", store.Invalid("dateTime", "is not a valid date"))
		return
	}
	patientID, err := models.ObjectIDPtr(req.PatientID)
	if err != nil {
		badRequest(c, "Validation failed", store.Invalid("patientId", "must be an id"))
		return
	}
	doctorID, err := models.ObjectIDPtr(req.DoctorID)
	if err != nil {
		badRequest(c, "Validation failed", store.Invalid("doctorId", "must be an id"))
		return
	}

	apt := models.Appointment{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		DoctorID:  doctorID,
		DateTime:  dateTime,
		Status:    req.Status,
		Notes:     req.Notes,
	}

	ctx := c.Request.Context()
	decision, err := h.Policy.BindAppointment(ctx, principal(c), &apt)
	if err != nil {
		h.respondError(c, err, "Failed to schedule appointment")
		return
	}
	if !decision.Allowed {
		forbidden(c)
		return
	}
	if err := apt.Validate(); err != nil {
		h.respondError(c, err, "Failed to schedule appointment")
		return
	}
	if err := h.Appointments.Create(ctx, &apt); err != nil {
		h.respondError(c, err, "Failed to schedule appointment")
		return
	}

	names := h.newNameJoiner()
	if err := names.join(ctx, &apt); err != nil {
		h.respondError(c, err, "Failed to schedule appointment")
		return
	}
	h.notifyPatient(ctx, &apt)
	c.JSON(http.StatusCreated, apt)
}

// GetAppointments lists appointments newest first. Admins may filter by
// query parameters; doctors and patients always get their own.
func (h *Handler) GetAppointments(c *gin.Context) {
	pr := principal(c)
	ctx := c.Request.Context()

	var adminFilter store.Filter
	if pr.IsAdmin() {
		f, err := access.AppointmentFilters.Parse(c.Request.URL.Query())
		if err != nil {
			h.respondError(c, err, "Failed to search appointments")
			return
		}
		adminFilter = f
	}

	filter, decision, err := h.Policy.AppointmentScope(ctx, pr, adminFilter)
	if err != nil {
		h.respondError(c, err, "Failed to search appointments")
		return
	}
	if !decision.Allowed {
		forbidden(c)
		return
	}

	appointments, err := h.Appointments.Find(ctx, filter, store.SortBy("dateTime", true))
	if err != nil {
		h.respondError(c, err, "Failed to search appointments")
		return
	}
	names := h.newNameJoiner()
	for i := range appointments {
		if err := names.join(ctx, &appointments[i]); err != nil {
			h.respondError(c, err, "Failed to search appointments")
			return
		}
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, ok := h.authorizedAppointment(c)
	if !ok {
		return
	}
	if err := h.newNameJoiner().join(c.Request.Context(), apt); err != nil {
		h.respondError(c, err, "Appointment not found")
		return
	}
	c.JSON(http.StatusOK, apt)
}

type UpdateAppointmentRequest struct {
	PatientID *string `json:"patientId"`
	DoctorID  *string `json:"doctorId"`
	DateTime  *string `json:"dateTime"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

// UpdateAppointment applies a partial update. Only admins may move an
// appointment to another patient or doctor; other callers' reference
// changes are dropped.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	apt, ok := h.authorizedAppointment(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	patch := store.Patch{}
	if req.DateTime != nil {
		t, err := models.ParseDateTime(*req.DateTime)
		if err != nil {
			badRequest(c, "Validation failed", store.Invalid("dateTime", "is not a valid date"))
			return
		}
		patch["dateTime"] = t
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if principal(c).IsAdmin() {
		for field, v := range map[string]*string{"patientId": req.PatientID, "doctorId": req.DoctorID} {
			if v == nil {
				continue
			}
			oid, err := primitive.ObjectIDFromHex(*v)
			if err != nil {
				badRequest(c, "Validation failed", store.Invalid(field, "must be an id"))
				return
			}
			patch[field] = oid
		}
	}

	ctx := c.Request.Context()
	updated, err := h.Appointments.UpdateByID(ctx, apt.ID.Hex(), patch, true)
	if err != nil {
		h.respondError(c, err, "Appointment not found")
		return
	}
	if err := h.newNameJoiner().join(ctx, updated); err != nil {
		h.respondError(c, err, "Failed to update appointment")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	apt, ok := h.authorizedAppointment(c)
	if !ok {
		return
	}
	deleted, err := h.Appointments.DeleteByID(c.Request.Context(), apt.ID.Hex())
	if err != nil {
		h.respondError(c, err, "Appointment not found")
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// authorizedAppointment loads the :id appointment and checks the caller may
// act on it. It writes the 404 or 403 itself and reports false.
func (h *Handler) authorizedAppointment(c *gin.Context) (*models.Appointment, bool) {
	ctx := c.Request.Context()
	apt, err := h.Appointments.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Appointment not found")
		return nil, false
	}

	decision, err := h.Policy.Appointment(ctx, principal(c), apt)
	if err != nil {
		h.respondError(c, err, "Failed to load appointment")
		return nil, false
	}
	if !decision.Allowed {
		forbidden(c)
		return nil, false
	}
	return apt, true
}

// notifyPatient sends the booking SMS when the appointment's patient is a
// Patient record with a contact number.
func (h *Handler) notifyPatient(ctx context.Context, apt *models.Appointment) {
	if h.Notifier == nil || apt.PatientID == nil {
		return
	}
	patient, err := h.Patients.FindByID(ctx, apt.PatientID.Hex())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.Log.WithError(err).Warn("notify: failed to load patient")
		}
		return
	}
	h.Notifier.SendAppointmentConfirmationSMS(patient, apt)
}

// nameJoiner fills the display names of appointments. A reference is looked
// up as a Patient or Doctor record first and then as a user account, since
// patient bookings and fallback doctor ids point at users. Lookups are
// memoized for one response.
type nameJoiner struct {
	h     *Handler
	names map[string]string
}

func (h *Handler) newNameJoiner() *nameJoiner {
	return &nameJoiner{h: h, names: make(map[string]string)}
}

func (n *nameJoiner) join(ctx context.Context, apt *models.Appointment) error {
	var err error
	if apt.PatientName, err = n.patient(ctx, models.IDString(apt.PatientID)); err != nil {
		return err
	}
	apt.DoctorName, err = n.doctor(ctx, models.IDString(apt.DoctorID))
	return err
}

func (n *nameJoiner) patient(ctx context.Context, id string) (string, error) {
	return n.lookup(ctx, "p:"+id, id, func() (string, error) {
		p, err := n.h.Patients.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Name, nil
	})
}

func (n *nameJoiner) doctor(ctx context.Context, id string) (string, error) {
	return n.lookup(ctx, "d:"+id, id, func() (string, error) {
		d, err := n.h.Doctors.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return d.Name, nil
	})
}

func (n *nameJoiner) lookup(ctx context.Context, key, id string, record func() (string, error)) (string, error) {
	if id == "" {
		return "", nil
	}
	if name, ok := n.names[key]; ok {
		return name, nil
	}

	name, err := record()
	if errors.Is(err, store.ErrNotFound) {
		var u *models.User
		u, err = n.h.Users.FindByID(ctx, id)
		if err == nil {
			name = u.Name
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	if err != nil {
		return "", err
	}
	n.names[key] = name
	return name, nil
}
