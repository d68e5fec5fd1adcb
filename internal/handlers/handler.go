package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/access"
	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/services"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// Stores groups the per-resource collections the handlers work on.
type Stores struct {
	Users        store.Collection[models.User]
	Doctors      store.Collection[models.Doctor]
	Patients     store.Collection[models.Patient]
	Appointments store.Collection[models.Appointment]
	Bills        store.Collection[models.Bill]
}

// Notifier tells a patient about a booked appointment.
type Notifier interface {
	SendAppointmentConfirmationSMS(patient *models.Patient, apt *models.Appointment)
}

type Options struct {
	BcryptCost int
	// PublicBillCreate leaves POST /billing open to unauthenticated callers.
	PublicBillCreate bool
}

type Handler struct {
	Stores
	Policy   *access.Policy
	Tokens   *utils.TokenIssuer
	Avatars  *services.AvatarStore
	Invoices *services.InvoiceRenderer
	Notifier Notifier
	Log      *logrus.Logger
	Opts     Options
}

func NewHandler(
	stores Stores,
	policy *access.Policy,
	tokens *utils.TokenIssuer,
	avatars *services.AvatarStore,
	invoices *services.InvoiceRenderer,
	notifier Notifier,
	logger *logrus.Logger,
	opts Options,
) *Handler {
	return &Handler{
		Stores:   stores,
		Policy:   policy,
		Tokens:   tokens,
		Avatars:  avatars,
		Invoices: invoices,
		Notifier: notifier,
		Log:      logger,
		Opts:     opts,
	}
}

// principal returns the caller set by AuthMiddleware. Outside an
// authenticated route it is the zero Principal, which every policy denies.
func principal(c *gin.Context) models.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}
