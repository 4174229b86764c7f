package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/astroev/stores-api/internal/breach"
	"github.com/astroev/stores-api/internal/hash"
	"github.com/astroev/stores-api/internal/jobs"
	"github.com/astroev/stores-api/internal/logging"
	authmw "github.com/astroev/stores-api/internal/middleware/auth"
	"github.com/astroev/stores-api/internal/models"
	"github.com/astroev/stores-api/internal/revocation"
	"github.com/astroev/stores-api/internal/tokens"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *tokens.Service
	Registry revocation.Registry
	Queue    jobs.Enqueuer
	Breach   breach.Checker
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid request body.")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "username, email and password are required.")
	}

	l := logging.FromContext(c.Request().Context()).With("username", req.Username)

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return fail(c, http.StatusConflict, "duplicate_username", "A user with that username already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	// Breach check degrades to a warning when the corpus is unreachable:
	// a third-party outage must not block account creation.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	breached, err := h.Breach.IsBreached(ctx, req.Password)
	if err != nil {
		l.Warn("breach check skipped", "error", err)
	} else if breached {
		return fail(c, http.StatusBadRequest, "password_breached", "Password has been breached.")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	job := jobs.NewRegistrationEmail(user.Email, user.Username)
	jobID, err := h.Queue.Enqueue(ctx, job)
	if err != nil {
		// The user row exists; losing the welcome email is preferable to
		// failing the registration.
		l.Error("enqueue failed", "job_type", job.Type, "error", err)
	} else {
		l.Info("user registered", "user_id", user.ID, "job_id", jobID)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User created."})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid request body.")
	}

	var user models.User
	err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&user).Error
	if err != nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
	}

	accessToken, err := h.Tokens.IssueAccess(user.ID, true)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}
	refreshToken, err := h.Tokens.IssueRefresh(user.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh exchanges a refresh token for a non-fresh access token. The
// presented refresh jti is revoked first, so each refresh token is strictly
// single-use: of two concurrent exchanges only the one that wins the
// registry insert succeeds.
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims := authmw.ClaimsFrom(c)

	newly, err := h.Registry.Revoke(c.Request().Context(), claims.ID)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("revoke failed", "jti", claims.ID, "error", err)
		return fail(c, http.StatusUnauthorized, "token_revoked", "Token has been revoked.")
	}
	if !newly {
		return fail(c, http.StatusUnauthorized, "token_revoked", "Token has been revoked.")
	}

	userID, err := claims.UserID()
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid_token", "Signature verification failed.")
	}

	accessToken, err := h.Tokens.IssueAccess(userID, false)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": accessToken})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	claims := authmw.ClaimsFrom(c)

	if _, err := h.Registry.Revoke(c.Request().Context(), claims.ID); err != nil {
		logging.FromContext(c.Request().Context()).Error("revoke failed", "jti", claims.ID, "error", err)
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User logged out"})
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid user id.")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "User not found.")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid user id.")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "User not found.")
	}
	if err := h.DB.Delete(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted."})
}
