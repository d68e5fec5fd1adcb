package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/hospital-api/internal/services"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.Find(c.Request.Context(), store.Filter{})
	if err != nil {
		h.respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser is open to admins and to the account owner. The ownership check
// runs before the lookup, so strangers get 403 even for unknown ids.
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if !h.Policy.User(principal(c), id).Allowed {
		forbidden(c)
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Password   *string `json:"password"`
	ProfilePic *string `json:"profilePic"`
}

// UpdateUser applies a partial update. A new password is re-hashed, and role
// changes are dropped unless the caller is an admin.
func (h *Handler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	pr := principal(c)
	if !h.Policy.User(pr, id).Allowed {
		forbidden(c)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	patch := store.Patch{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Email != nil {
		patch["email"] = *req.Email
	}
	if req.ProfilePic != nil {
		patch["profilePic"] = *req.ProfilePic
	}
	if req.Role != nil && pr.IsAdmin() {
		patch["role"] = *req.Role
	}
	if req.Password != nil {
		if *req.Password == "" {
			badRequest(c, "Validation failed", store.Invalid("password", "must not be empty"))
			return
		}
		hash, err := utils.HashPassword(*req.Password, h.Opts.BcryptCost)
		if err != nil {
			h.respondError(c, err, "Failed to hash password")
			return
		}
		patch["passwordHash"] = hash
	}

	updated, err := h.Users.UpdateByID(c.Request.Context(), id, patch, true)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadAvatar stores the multipart field "avatar" and points the user's
// profilePic at it.
func (h *Handler) UploadAvatar(c *gin.Context) {
	id := c.Param("id")
	if !h.Policy.User(principal(c), id).Allowed {
		forbidden(c)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		badRequest(c, "No file uploaded", nil)
		return
	}
	if _, err := h.Users.FindByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "User not found")
		return
	}

	urlPath, err := h.Avatars.Save(file)
	switch {
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrNotAnImage):
		badRequest(c, "Upload failed", err)
		return
	case err != nil:
		h.respondError(c, err, "Upload failed")
		return
	}

	updated, err := h.Users.UpdateByID(c.Request.Context(), id, store.Patch{"profilePic": urlPath}, false)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profilePic": urlPath, "user": updated})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Users.DeleteByID(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "id": id})
}

