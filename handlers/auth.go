package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"murmur/auth"
	"murmur/metrics"
	"murmur/service"
)

type AuthHandler struct {
	auth   *auth.Authenticator
	users  *service.Users
	logger *slog.Logger
}

func NewAuthHandler(a *auth.Authenticator, users *service.Users, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, users: users, logger: logger}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid signup request: "+err.Error())
		return
	}

	session, err := h.auth.Signup(c.Request.Context(), auth.SignupInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	metrics.Signups.Inc()
	c.JSON(http.StatusCreated, authResponseDTO{
		AccessToken: session.AccessToken,
		User:        toSessionUserDTO(session.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthorized {
			metrics.Logins.WithLabelValues("failure").Inc()
		}
		writeError(c, h.logger, err)
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, authResponseDTO{
		AccessToken: session.AccessToken,
		User:        toSessionUserDTO(session.User),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(p))
}
