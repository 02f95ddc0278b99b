package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	base
	feedback *services.FeedbackWorker
}

func NewAdminHandler(log *zap.Logger, med *mediator.Mediator, feedback *services.FeedbackWorker) *AdminHandler {
	return &AdminHandler{base: base{log: log, med: med}, feedback: feedback}
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	send[services.GetPlatformAnalytics, services.PlatformAnalytics](h.base, c, http.StatusOK, services.GetPlatformAnalytics{})
}

func (h *AdminHandler) Charts(c *gin.Context) {
	send[services.GetPlatformCharts, services.PlatformCharts](h.base, c, http.StatusOK, services.GetPlatformCharts{})
}

// FeedbackStats reports the feedback worker's counters.
func (h *AdminHandler) FeedbackStats(c *gin.Context) {
	if h.feedback == nil {
		c.JSON(http.StatusOK, services.FeedbackStats{})
		return
	}
	c.JSON(http.StatusOK, h.feedback.Stats())
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req services.ListUsers
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListUsers, services.PagedResult[services.UserProfile]](h.base, c, http.StatusOK, req)
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRole
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = id
	send[services.UpdateUserRole, services.UserProfile](h.base, c, http.StatusOK, req)
}

func (h *AdminHandler) Suspend(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.SuspendUser
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = id
	send[services.SuspendUser, services.UserProfile](h.base, c, http.StatusOK, req)
}

func (h *AdminHandler) Activate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ActivateUser
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = id
	send[services.ActivateUser, services.UserProfile](h.base, c, http.StatusOK, req)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.DeleteUser, struct{}](h.base, c, http.StatusNoContent, services.DeleteUser{UserID: id})
}

func (h *AdminHandler) SendMessage(c *gin.Context) {
	var req services.SendMessage
	if !bindJSON(c, &req) {
		return
	}
	send[services.SendMessage, services.SendMessageResult](h.base, c, http.StatusOK, req)
}

func (h *AdminHandler) ExportUsers(c *gin.Context) {
	var req services.ExportUsers
	if !bindQuery(c, &req) {
		return
	}
	export, ok := dispatch[services.ExportUsers, services.Export](h.base, c, req)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
