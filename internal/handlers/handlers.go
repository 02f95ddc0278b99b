// Package handlers adapts HTTP requests to mediator requests and writes JSON responses.
package handlers

import (
	"net/http"
	"strconv"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/mediator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callerKey = "caller"

// SetCaller stores the authenticated caller for later handlers.
func SetCaller(c *gin.Context, caller auth.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the caller set by the auth middleware, or an anonymous caller.
func CallerFrom(c *gin.Context) auth.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(auth.Caller); ok {
			return caller
		}
	}
	return auth.Anonymous()
}

type base struct {
	log *zap.Logger
	med *mediator.Mediator
}

// send dispatches req for the current caller and writes the result with status.
func send[Req any, Res any](b base, c *gin.Context, status int, req Req) {
	res, ok := dispatch[Req, Res](b, c, req)
	if !ok {
		return
	}
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, res)
}

// dispatch runs req and writes the error response if it fails.
func dispatch[Req any, Res any](b base, c *gin.Context, req Req) (Res, bool) {
	res, err := mediator.Send[Req, Res](c.Request.Context(), b.med, CallerFrom(c), req)
	if err != nil {
		writeError(c, b.log, err)
		return res, false
	}
	return res, true
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindJSON decodes the body into req, answering 400 on malformed input.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		badRequest(c, "invalid query parameters")
		return false
	}
	return true
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// targetUser is the userId query parameter when given, otherwise the caller.
func targetUser(c *gin.Context) (uint, bool) {
	raw := c.Query("userId")
	if raw == "" {
		return CallerFrom(c).UserID, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid userId")
		return 0, false
	}
	return uint(id), true
}
