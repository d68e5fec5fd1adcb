package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/models"
)

// Register mounts every resource under api. limiter guards the credential
// endpoints and may be nil.
func (h *Handler) Register(api *gin.RouterGroup, limiter gin.HandlerFunc) {
	auth := middleware.AuthMiddleware(h.Tokens, h.Users, h.Log)
	admin := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleDoctor)

	credentials := []gin.HandlerFunc{}
	if limiter != nil {
		credentials = append(credentials, limiter)
	}

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", append(credentials, h.RegisterUser)...)
		authRoutes.POST("/login", append(credentials, h.Login)...)
		authRoutes.GET("/me", auth, h.GetCurrentUser)
	}

	users := api.Group("/users")
	{
		users.GET("", auth, admin, h.ListUsers)
		users.POST("", append(credentials, h.RegisterUser)...)
		users.GET("/:id", auth, h.GetUser)
		users.PUT("/:id", auth, h.UpdateUser)
		users.POST("/:id/avatar", auth, h.UploadAvatar)
		users.DELETE("/:id", auth, admin, h.DeleteUser)
	}

	doctors := api.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", auth, admin, h.CreateDoctor)
		doctors.PUT("/:id", auth, admin, h.UpdateDoctor)
		doctors.DELETE("/:id", auth, admin, h.DeleteDoctor)
	}

	patients := api.Group("/patients", auth, staff)
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.CreatePatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}

	appointments := api.Group("/appointments", auth)
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.GetAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}

	billing := api.Group("/billing")
	{
		if h.Opts.PublicBillCreate {
			billing.POST("", h.CreateBill)
		} else {
			billing.POST("", auth, admin, h.CreateBill)
		}
		billing.GET("", auth, h.GetBills)
		billing.GET("/:id", auth, h.GetBill)
		billing.PATCH("/:id", auth, h.UpdateBill)
		billing.POST("/:id/payment", auth, h.PayBill)
		billing.GET("/:id/invoice", auth, admin, h.GetInvoice)
	}

	api.GET("/reports/analytics", auth, admin, h.GetAnalytics)
}
