package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatientRequest struct {
	Name       string `json:"name"`
	DOB        string `json:"dob"`
	Address    string `json:"address"`
	Contact    string `json:"contact"`
	ProfilePic string `json:"profilePic"`
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Patients.Find(c.Request.Context(), store.Filter{})
	if err != nil {
		h.respondError(c, err, "Failed to list patients")
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, err := h.Patients.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Patient not found")
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	patient := models.Patient{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		DOB:        req.DOB,
		Address:    req.Address,
		Contact:    req.Contact,
		ProfilePic: req.ProfilePic,
	}
	if err := patient.Validate(); err != nil {
		h.respondError(c, err, "Failed to create patient")
		return
	}
	if err := h.Patients.Create(c.Request.Context(), &patient); err != nil {
		h.respondError(c, err, "Failed to create patient")
		return
	}
	c.JSON(http.StatusCreated, patient)
}

type UpdatePatientRequest struct {
	Name       *string `json:"name"`
	DOB        *string `json:"dob"`
	Address    *string `json:"address"`
	Contact    *string `json:"contact"`
	ProfilePic *string `json:"profilePic"`
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	patch := store.Patch{}
	for field, v := range map[string]*string{
		"name":       req.Name,
		"dob":        req.DOB,
		"address":    req.Address,
		"contact":    req.Contact,
		"profilePic": req.ProfilePic,
	} {
		if v != nil {
			patch[field] = *v
		}
	}

	updated, err := h.Patients.UpdateByID(c.Request.Context(), c.Param("id"), patch, true)
	if err != nil {
		h.respondError(c, err, "Patient not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Patients.DeleteByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Patient not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted", "id": id})
}
