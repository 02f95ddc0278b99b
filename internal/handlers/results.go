package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResultsHandler serves assessment results and the creator analytics built from them.
type ResultsHandler struct {
	base
}

func NewResultsHandler(log *zap.Logger, med *mediator.Mediator) *ResultsHandler {
	return &ResultsHandler{base{log: log, med: med}}
}

func (h *ResultsHandler) AssessmentResults(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.GetAssessmentResults
	if !bindQuery(c, &req) {
		return
	}
	req.AssessmentID = id
	send[services.GetAssessmentResults, services.AssessmentResultsSummary](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) CreatorDashboard(c *gin.Context) {
	send[services.GetCreatorDashboard, services.CreatorDashboard](h.base, c, http.StatusOK, services.GetCreatorDashboard{})
}

func (h *ResultsHandler) LearningPathAnalytics(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := services.GetLearningPathAnalytics{LearningPathID: id}
	send[services.GetLearningPathAnalytics, services.LearningPathAnalytics](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) Engagement(c *gin.Context) {
	var req services.GetEngagementAnalytics
	if !bindQuery(c, &req) {
		return
	}
	send[services.GetEngagementAnalytics, services.EngagementAnalytics](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) Revenue(c *gin.Context) {
	var req services.GetRevenueAnalytics
	if !bindQuery(c, &req) {
		return
	}
	send[services.GetRevenueAnalytics, services.RevenueAnalytics](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) CreatorLearningPaths(c *gin.Context) {
	var req services.ListCreatorLearningPaths
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListCreatorLearningPaths, services.PagedResult[services.CreatorLearningPath]](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) Students(c *gin.Context) {
	var req services.ListCreatorStudents
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListCreatorStudents, services.PagedResult[services.CreatorStudent]](h.base, c, http.StatusOK, req)
}

func (h *ResultsHandler) StudentProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(c, "studentId")
	if !ok {
		return
	}
	req := services.GetStudentProgress{LearningPathID: id, StudentID: studentID}
	send[services.GetStudentProgress, services.StudentProgress](h.base, c, http.StatusOK, req)
}
