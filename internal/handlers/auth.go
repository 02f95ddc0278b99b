package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(log *zap.Logger, med *mediator.Mediator) *AuthHandler {
	return &AuthHandler{base{log: log, med: med}}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterUser
	if !bindJSON(c, &req) {
		return
	}
	send[services.RegisterUser, services.UserProfile](h.base, c, http.StatusCreated, req)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.Login
	if !bindJSON(c, &req) {
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()
	send[services.Login, services.AuthResult](h.base, c, http.StatusOK, req)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshToken
	if !bindJSON(c, &req) {
		return
	}
	send[services.RefreshToken, services.AuthResult](h.base, c, http.StatusOK, req)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.Logout
	if !bindJSON(c, &req) {
		return
	}
	send[services.Logout, struct{}](h.base, c, http.StatusNoContent, req)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePassword
	if !bindJSON(c, &req) {
		return
	}
	send[services.ChangePassword, struct{}](h.base, c, http.StatusNoContent, req)
}
