package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/dto"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
)

// POST /admin/login
func Login(users repository.UserStore, auth config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		user, err := users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			slog.Error("find user", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		token, err := utils.GenerateAccessToken(user.ID, user.Email, string(user.Role), auth.JWTSecret, auth.AccessTTL)
		if err != nil {
			slog.Error("sign token", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// GET /admin/verify
// The route sits behind the auth gate, so reaching it means the token is valid.
func Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"valid": true,
			"email": c.GetString("email"),
			"role":  c.GetString("role"),
		})
	}
}

// POST /admin/users/me/password
func ChangeMyPassword(users repository.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "currentPassword and newPassword (min 8 characters) are required"})
			return
		}

		email := c.GetString("email")
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		ctx := c.Request.Context()
		user, err := users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
				return
			}
			slog.Error("find user", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}

		newHash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		if err := users.UpdatePassword(ctx, email, newHash); err != nil {
			slog.Error("update password", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
