package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-api/internal/access"
	"github.com/harentsoaR/hospital-api/internal/config"
	"github.com/harentsoaR/hospital-api/internal/handlers"
	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/services"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, found, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if !found {
		log.Info("No .env file found, relying on environment variables.")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err == nil {
		err = client.Ping(ctx, nil)
	}
	if err != nil {
		cancel()
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	db := client.Database(cfg.MongoDatabase)

	users := store.NewMongo[models.User](db, "users")
	doctors := store.NewMongo[models.Doctor](db, "doctors")
	if err := users.EnsureUniqueIndex(ctx, "email"); err != nil {
		log.WithError(err).WithField("collection", "users").Fatal("failed to create index")
	}
	if err := doctors.EnsureUniqueIndex(ctx, "email"); err != nil {
		log.WithError(err).WithField("collection", "doctors").Fatal("failed to create index")
	}
	cancel()
	log.WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB!")

	stores := handlers.Stores{
		Users:        users,
		Doctors:      doctors,
		Patients:     store.NewMongo[models.Patient](db, "patients"),
		Appointments: store.NewMongo[models.Appointment](db, "appointments"),
		Bills:        store.NewMongo[models.Bill](db, "bills"),
	}

	// --- Initialize Services ---
	policy := access.NewPolicy(access.NewResolver(doctors, cfg.DoctorIDFallback), log)
	h := handlers.NewHandler(
		stores,
		policy,
		utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		services.NewAvatarStore(cfg.UploadDir, "/uploads", cfg.MaxAvatarBytes),
		services.NewInvoiceRenderer("AfyaBora Invoice"),
		services.NewNotificationService(cfg.TextbeltAPIKey, log),
		log,
		handlers.Options{BcryptCost: cfg.BcryptCost, PublicBillCreate: cfg.PublicBillCreate},
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Gin Router ---
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxAvatarBytes
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.Static("/uploads", cfg.UploadDir)
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Hospital Management System Server")
	})

	limiter := middleware.NewRateLimiter(rootCtx, cfg.LoginRatePerSec, cfg.LoginBurst)
	h.Register(r.Group("/api"), limiter.Middleware())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server stopped")
		}
	}()

	// graceful shutdown
	<-rootCtx.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("mongo disconnect")
	}
}

// corsConfig allows the listed origins, or reflects any origin when none are
// configured. Credentials are allowed either way.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		c.AllowOrigins = origins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}
