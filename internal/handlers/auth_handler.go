package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/middleware"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required"`
	Password   string `json:"password" binding:"required"`
	ProfilePic string `json:"profilePic"`
}

// RegisterUser creates an account. It also serves POST /users.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email, role and password are required", err)
		return
	}
	if !models.ValidRole(req.Role) {
		badRequest(c, "Validation failed", store.Invalid("role", "must be one of admin, doctor, patient"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.Opts.BcryptCost)
	if err != nil {
		h.respondError(c, err, "Failed to hash password")
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hashedPassword,
		ProfilePic:   req.ProfilePic,
	}
	if err := user.Validate(); err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}
	if err := h.Users.Create(c.Request.Context(), &user); err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}

	h.Log.WithField("user", user.ID.Hex()).WithField("role", user.Role).Info("user registered")
	c.JSON(http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required", err)
		return
	}

	user, err := h.Users.FindOne(c.Request.Context(), store.Filter{"email": req.Email})
	if errors.Is(err, store.ErrNotFound) {
		notFound(c, "User not found")
		return
	}
	if err != nil {
		h.respondError(c, err, "Failed to log in")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	token, err := h.Tokens.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		h.respondError(c, err, "Could not generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetCurrentUser returns the authenticated account.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please authenticate"})
		return
	}
	c.JSON(http.StatusOK, user)
}
