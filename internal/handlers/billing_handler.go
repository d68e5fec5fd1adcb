package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/access"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBillRequest struct {
	PatientID     string   `json:"patientId"`
	Services      string   `json:"services"`
	Total         *float64 `json:"total" binding:"required"`
	Paid          *bool    `json:"paid" binding:"required"`
	PaymentMethod string   `json:"paymentMethod"`
}

func (h *Handler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	patientID, err := models.ObjectIDPtr(req.PatientID)
	if err != nil {
		badRequest(c, "Validation failed", store.Invalid("patientId", "must be an id"))
		return
	}

	bill := models.Bill{
		ID:            primitive.NewObjectID(),
		PatientID:     patientID,
		Services:      req.Services,
		Total:         *req.Total,
		Paid:          *req.Paid,
		PaymentMethod: req.PaymentMethod,
	}
	if err := bill.Validate(); err != nil {
		h.respondError(c, err, "Failed to generate bill")
		return
	}
	if err := h.Bills.Create(c.Request.Context(), &bill); err != nil {
		h.respondError(c, err, "Failed to generate bill")
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// GetBills lists bills. Admins may filter by query parameters, patients see
// their own and every other role is refused.
func (h *Handler) GetBills(c *gin.Context) {
	pr := principal(c)

	var adminFilter store.Filter
	if pr.IsAdmin() {
		f, err := access.BillFilters.Parse(c.Request.URL.Query())
		if err != nil {
			h.respondError(c, err, "Failed to search bills")
			return
		}
		adminFilter = f
	}

	filter, decision := h.Policy.BillScope(pr, adminFilter)
	if !decision.Allowed {
		forbidden(c)
		return
	}

	bills, err := h.Bills.Find(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Failed to search bills")
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (h *Handler) GetBill(c *gin.Context) {
	bill, ok := h.authorizedBill(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bill)
}

type UpdateBillRequest struct {
	PatientID     *string  `json:"patientId"`
	Services      *string  `json:"services"`
	Total         *float64 `json:"total"`
	Paid          *bool    `json:"paid"`
	PaymentMethod *string  `json:"paymentMethod"`
}

// UpdateBill applies a partial update, typically marking a bill paid. Only
// admins may reassign it to another patient.
func (h *Handler) UpdateBill(c *gin.Context) {
	bill, ok := h.authorizedBill(c)
	if !ok {
		return
	}

	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	patch := store.Patch{}
	if req.Services != nil {
		patch["services"] = *req.Services
	}
	if req.Total != nil {
		patch["total"] = *req.Total
	}
	if req.Paid != nil {
		patch["paid"] = *req.Paid
	}
	if req.PaymentMethod != nil {
		patch["paymentMethod"] = *req.PaymentMethod
	}
	if req.PatientID != nil && principal(c).IsAdmin() {
		oid, err := primitive.ObjectIDFromHex(*req.PatientID)
		if err != nil {
			badRequest(c, "Validation failed", store.Invalid("patientId", "must be an id"))
			return
		}
		patch["patientId"] = oid
	}

	updated, err := h.Bills.UpdateByID(c.Request.Context(), bill.ID.Hex(), patch, true)
	if err != nil {
		h.respondError(c, err, "Bill not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

type PaymentRequest struct {
	Method string `json:"method"`
}

// PayBill marks the bill paid, switching its payment method when one is
// given.
func (h *Handler) PayBill(c *gin.Context) {
	bill, ok := h.authorizedBill(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	patch := store.Patch{"paid": true}
	if req.Method != "" {
		patch["paymentMethod"] = req.Method
	}
	updated, err := h.Bills.UpdateByID(c.Request.Context(), bill.ID.Hex(), patch, true)
	if err != nil {
		h.respondError(c, err, "Bill not found")
		return
	}
	h.Log.WithField("bill", bill.ID.Hex()).WithField("method", updated.PaymentMethod).Info("bill paid")
	c.JSON(http.StatusOK, updated)
}

// GetInvoice streams the bill as a PDF attachment.
func (h *Handler) GetInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	bill, err := h.Bills.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Bill not found")
		return
	}

	patientName, err := h.newNameJoiner().patient(ctx, models.IDString(bill.PatientID))
	if err != nil {
		h.respondError(c, err, "Failed to generate invoice")
		return
	}
	pdf, err := h.Invoices.Render(bill, patientName)
	if err != nil {
		h.respondError(c, err, "Failed to generate invoice")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", bill.ID.Hex()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// authorizedBill loads the :id bill and checks the caller may act on it. It
// writes the 404 or 403 itself and reports false.
func (h *Handler) authorizedBill(c *gin.Context) (*models.Bill, bool) {
	bill, err := h.Bills.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Bill not found")
		return nil, false
	}
	if !h.Policy.Bill(principal(c), bill).Allowed {
		forbidden(c)
		return nil, false
	}
	return bill, true
}
