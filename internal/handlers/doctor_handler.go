package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DoctorRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Experience *int   `json:"experience" binding:"required"`
	Contact    string `json:"contact"`
	ProfilePic string `json:"profilePic"`
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Doctors.Find(c.Request.Context(), store.Filter{})
	if err != nil {
		h.respondError(c, err, "Failed to list doctors")
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.Doctors.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Doctor not found")
		return
	}
	c.JSON(http.StatusOK, doctor)
}

// CreateDoctor adds a profile and links it to the doctor account with the
// same email, if there is one. The account is unlinked from any older
// profile.
func (h *Handler) CreateDoctor(c *gin.Context) {
	var req DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	doctor := models.Doctor{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		Email:      req.Email,
		Experience: *req.Experience,
		Contact:    req.Contact,
		ProfilePic: req.ProfilePic,
	}
	if err := doctor.Validate(); err != nil {
		h.respondError(c, err, "Failed to create doctor")
		return
	}

	userID, err := h.doctorAccount(c.Request.Context(), doctor.Email)
	if err != nil {
		h.respondError(c, err, "Failed to create doctor")
		return
	}
	doctor.UserID = userID

	if err := h.Doctors.Create(c.Request.Context(), &doctor); err != nil {
		h.respondError(c, err, "Failed to create doctor")
		return
	}
	if userID != nil {
		if err := h.releaseAccount(c.Request.Context(), *userID, doctor.ID); err != nil {
			h.respondError(c, err, "Failed to create doctor")
			return
		}
	}
	c.JSON(http.StatusCreated, doctor)
}

type UpdateDoctorRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Experience *int    `json:"experience"`
	Contact    *string `json:"contact"`
	ProfilePic *string `json:"profilePic"`
}

// UpdateDoctor applies a partial update. An email change relinks the
// profile when a doctor account with the new email exists, taking the
// account away from any other profile.
func (h *Handler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	var relink *primitive.ObjectID
	patch := store.Patch{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Experience != nil {
		patch["experience"] = *req.Experience
	}
	if req.Contact != nil {
		patch["contact"] = *req.Contact
	}
	if req.ProfilePic != nil {
		patch["profilePic"] = *req.ProfilePic
	}
	if req.Email != nil {
		patch["email"] = *req.Email
		userID, err := h.doctorAccount(c.Request.Context(), *req.Email)
		if err != nil {
			h.respondError(c, err, "Failed to update doctor")
			return
		}
		if userID != nil {
			patch["userId"] = *userID
			relink = userID
		}
	}

	updated, err := h.Doctors.UpdateByID(c.Request.Context(), c.Param("id"), patch, true)
	if err != nil {
		h.respondError(c, err, "Doctor not found")
		return
	}
	if relink != nil {
		if err := h.releaseAccount(c.Request.Context(), *relink, updated.ID); err != nil {
			h.respondError(c, err, "Failed to update doctor")
			return
		}
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Doctors.DeleteByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Doctor not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor deleted", "id": id})
}

// doctorAccount returns the id of the doctor-role user with email, or nil.
func (h *Handler) doctorAccount(ctx context.Context, email string) (*primitive.ObjectID, error) {
	u, err := h.Users.FindOne(ctx, store.Filter{"email": email, "role": models.RoleDoctor})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.ID, nil
}

// releaseAccount clears the userId link on every profile except keep that
// points at userID, so one account resolves to one profile.
func (h *Handler) releaseAccount(ctx context.Context, userID, keep primitive.ObjectID) error {
	linked, err := h.Doctors.Find(ctx, store.Filter{"userId": userID})
	if err != nil {
		return err
	}
	for _, d := range linked {
		if d.ID == keep {
			continue
		}
		_, err := h.Doctors.UpdateByID(ctx, d.ID.Hex(), store.Patch{"userId": nil}, false)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		h.Log.WithField("doctor", d.ID.Hex()).WithField("user", userID.Hex()).Info("doctor account moved to another profile")
	}
	return nil
}
