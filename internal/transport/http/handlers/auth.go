package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/transport/http/middleware"
	"github.com/JLCarveth/blog/internal/usecase"
)

// AuthHandler serves login, registration, and credential lifecycle routes.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
	secureCookie bool
}

// NewAuthHandler constructs an AuthHandler. secureCookie controls the
// Secure attribute on the token cookie and should be false only in
// development over plain HTTP.
func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		registration: registration,
		secureCookie: secureCookie,
	}
}

// Login verifies credentials and issues a session token. The token is
// returned in the body and duplicated as an HTTP-only cookie for browser
// clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many failed attempts, try again later"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	maxAge := int(h.auth.TokenTTL().Seconds())
	c.SetCookie(middleware.TokenCookie, result.Token, maxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, LoginResponse{
		Token:   result.Token,
		Account: accountSummary(result.Account),
	})
}

// Register creates a new account with the default role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email, username, and password are required"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet complexity requirements"},
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "email, username, and password are required"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, accountSummary(*account))
}

// ChangePassword rotates the caller's password after re-verifying the
// current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "current and new passwords are required"))
		return
	}

	err := h.registration.ChangePassword(c.Request.Context(), identity.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet complexity requirements"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// DeleteAccount removes an account by email. Requires the deleteUser
// permission, enforced by the route chain.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.registration.DeleteAccount(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "account deletion failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
}

// Logout clears the token cookie. The token itself stays valid until it
// expires; there is no server-side revocation.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}
