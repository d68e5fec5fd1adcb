package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type Analytics struct {
	Patients     int64 `json:"patients"`
	Doctors      int64 `json:"doctors"`
	Appointments int64 `json:"appointments"`
	Bills        int64 `json:"bills"`
	UnpaidBills  int64 `json:"unpaidBills"`
}

// GetAnalytics reports document counts for the admin dashboard.
func (h *Handler) GetAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	var a Analytics

	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&a.Patients, func() (int64, error) { return h.Patients.Count(ctx, store.Filter{}) }},
		{&a.Doctors, func() (int64, error) { return h.Doctors.Count(ctx, store.Filter{}) }},
		{&a.Appointments, func() (int64, error) { return h.Appointments.Count(ctx, store.Filter{}) }},
		{&a.Bills, func() (int64, error) { return h.Bills.Count(ctx, store.Filter{}) }},
		{&a.UnpaidBills, func() (int64, error) { return h.Bills.Count(ctx, store.Filter{"paid": false}) }},
	}
	for _, q := range counts {
		n, err := q.count()
		if err != nil {
			h.respondError(c, err, "Failed to generate analytics")
			return
		}
		*q.dst = n
	}
	c.JSON(http.StatusOK, a)
}
