package handlers

import (
	"net/http"

	"skillup-go/internal/analytics"
	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the caller's profile, notifications and learning dashboard.
type UserHandler struct {
	base
}

func NewUserHandler(log *zap.Logger, med *mediator.Mediator) *UserHandler {
	return &UserHandler{base{log: log, med: med}}
}

func (h *UserHandler) Profile(c *gin.Context) {
	send[services.GetProfile, services.UserProfile](h.base, c, http.StatusOK, services.GetProfile{UserID: CallerFrom(c).UserID})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfile
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = CallerFrom(c).UserID
	send[services.UpdateProfile, services.UserProfile](h.base, c, http.StatusOK, req)
}

func (h *UserHandler) Notifications(c *gin.Context) {
	var req services.ListNotifications
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListNotifications, []models.Notification](h.base, c, http.StatusOK, req)
}

func (h *UserHandler) LearningPaths(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	send[services.GetUserLearningPaths, []services.EnrolledPath](h.base, c, http.StatusOK, services.GetUserLearningPaths{UserID: userID})
}

func (h *UserHandler) Results(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	send[services.GetUserResults, []models.AssessmentResult](h.base, c, http.StatusOK, services.GetUserResults{UserID: userID})
}

func (h *UserHandler) Overview(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	send[services.GetDashboardOverview, services.DashboardOverview](h.base, c, http.StatusOK, services.GetDashboardOverview{UserID: userID})
}

func (h *UserHandler) Statistics(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	req := services.GetLearningStatistics{UserID: userID, Period: c.DefaultQuery("period", "weekly")}
	send[services.GetLearningStatistics, services.LearningStatistics](h.base, c, http.StatusOK, req)
}

func (h *UserHandler) Streak(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	send[services.GetStudyStreak, analytics.StreakInfo](h.base, c, http.StatusOK, services.GetStudyStreak{UserID: userID})
}

func (h *UserHandler) Activities(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	var q struct {
		Limit int `form:"limit"`
	}
	if !bindQuery(c, &q) {
		return
	}
	send[services.GetRecentActivities, []models.UserActivity](h.base, c, http.StatusOK, services.GetRecentActivities{UserID: userID, Limit: q.Limit})
}

func (h *UserHandler) UserStatistics(c *gin.Context) {
	req := services.GetUserStatistics{UserID: CallerFrom(c).UserID}
	send[services.GetUserStatistics, services.UserStatistics](h.base, c, http.StatusOK, req)
}

func (h *UserHandler) Progress(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	send[services.GetLearningProgress, services.LearningProgress](h.base, c, http.StatusOK, services.GetLearningProgress{UserID: userID})
}

func (h *UserHandler) Calendar(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}
	var req services.GetLearningCalendar
	if !bindQuery(c, &req) {
		return
	}
	req.UserID = userID
	send[services.GetLearningCalendar, services.LearningCalendar](h.base, c, http.StatusOK, req)
}
