package api

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/middleware"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// SignupRequest carries the signup form.
type SignupRequest struct {
	Email      string `form:"email" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RedirectTo string `form:"redirectTo"`
}

// LoginRequest carries the login form. Mode discriminates the password flow
// from external-identity logins resolved upstream.
type LoginRequest struct {
	Mode       string `form:"mode"` // "password" (default) or "external"
	Email      string `form:"email" binding:"required"`
	Password   string `form:"password"`
	RedirectTo string `form:"redirectTo"`
}

// setSession issues the session token into the HTTP-only cookie.
func setSession(c *gin.Context, userID uint, secret string) error {
	token, err := utils.GenerateToken(userID, secret)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(utils.SessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// SignupHandler registers a user, seeds the default categories and opens a
// session.
func SignupHandler(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"form": "Email and password are required"})
			return
		}
		user, err := auth.CreateUser(db, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrEmailTaken):
				fieldErrors(c, map[string]string{"email": "An account with this email already exists"})
			case errors.Is(err, auth.ErrInvalidEmail):
				fieldErrors(c, map[string]string{"email": "Enter a valid email address"})
			case errors.Is(err, auth.ErrInvalidPassword):
				fieldErrors(c, map[string]string{"password": "Password must be 8-72 characters"})
			default:
				logrus.WithFields(logrus.Fields{
					"email": auth.NormalizeEmail(req.Email),
					"error": err.Error(),
				}).Error("Signup failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			}
			return
		}
		if err := setSession(c, user.ID, secret); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "redirectTo": defaultRedirect(req.RedirectTo)})
	}
}

// LoginHandler authenticates a user and opens a session. External-identity
// logins arrive with mode=external after the identity provider has verified
// the email upstream; they resolve or create the account without a password.
func LoginHandler(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"form": "Email is required"})
			return
		}

		var userID uint
		switch req.Mode {
		case "external":
			user, err := auth.FindOrCreateExternal(db, req.Email)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidEmail) {
					fieldErrors(c, map[string]string{"email": "Enter a valid email address"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
				return
			}
			userID = user.ID
		default:
			user, err := auth.VerifyLogin(db, req.Email, req.Password)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					fieldErrors(c, map[string]string{"form": "Invalid email or password"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
				return
			}
			userID = user.ID
		}

		if err := setSession(c, userID, secret); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "mode": req.Mode}).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "redirectTo": defaultRedirect(req.RedirectTo)})
	}
}

// LogoutHandler destroys the session cookie.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"redirectTo": "/login"})
	}
}

// AccountHandler multiplexes account operations; only intent=delete exists
// today. Deletion cascades to every owned record and ends the session.
func AccountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if c.PostForm("intent") != "delete" {
			fieldErrors(c, map[string]string{"intent": "Unknown intent"})
			return
		}
		if err := auth.DeleteAccount(db, userID); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Account deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		logrus.WithFields(logrus.Fields{"user_id": userID}).Info("Account deleted")
		c.JSON(http.StatusOK, gin.H{"redirectTo": "/login"})
	}
}

// defaultRedirect sends authenticated users to the dashboard unless the
// original request recorded another destination.
func defaultRedirect(redirectTo string) string {
	if redirectTo == "" || redirectTo[0] != '/' {
		return "/dashboard"
	}
	return redirectTo
}
