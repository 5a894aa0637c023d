package handlers

import (
	"net/http"
	"time"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the credential payload for token issuance
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler verifies credentials and issues a bearer token
func LoginHandler(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Email and password are required",
		})
	}

	var user models.User
	if err := db.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"detail": "Invalid email or password",
		})
	}

	if !user.IsActive || !services.CheckPassword(req.Password, user.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"detail": "Invalid email or password",
		})
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create session",
		})
	}

	now := time.Now()
	db.DB.Model(&user).Update("last_login_at", now)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       user,
	})
}

// LogoutHandler revokes the bearer token used on the request
func LogoutHandler(c echo.Context) error {
	token := middleware.BearerToken(c)
	if token != "" {
		if err := services.DeleteSession(db.DB, token); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to log out",
			})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the authenticated user
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
	}
	return c.JSON(http.StatusOK, user)
}
