package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssessmentHandler struct {
	base
}

func NewAssessmentHandler(log *zap.Logger, med *mediator.Mediator) *AssessmentHandler {
	return &AssessmentHandler{base{log: log, med: med}}
}

func (h *AssessmentHandler) List(c *gin.Context) {
	var req services.ListAssessments
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListAssessments, []models.Assessment](h.base, c, http.StatusOK, req)
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.GetAssessment, services.AssessmentDetail](h.base, c, http.StatusOK, services.GetAssessment{ID: id})
}

func (h *AssessmentHandler) Create(c *gin.Context) {
	var req services.CreateAssessment
	if !bindJSON(c, &req) {
		return
	}
	send[services.CreateAssessment, services.AssessmentDetail](h.base, c, http.StatusCreated, req)
}

func (h *AssessmentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAssessment
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id
	send[services.UpdateAssessment, services.AssessmentDetail](h.base, c, http.StatusOK, req)
}

func (h *AssessmentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.DeleteAssessment, struct{}](h.base, c, http.StatusNoContent, services.DeleteAssessment{ID: id})
}

func (h *AssessmentHandler) Questions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.GetQuestions, []services.QuestionView](h.base, c, http.StatusOK, services.GetQuestions{AssessmentID: id})
}

// Start opens an attempt for the caller.
func (h *AssessmentHandler) Start(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := services.StartAttempt{AssessmentID: id, UserID: CallerFrom(c).UserID}
	send[services.StartAttempt, services.StartAttemptResult](h.base, c, http.StatusCreated, req)
}

// Submit scores the caller's answers. The body may name the attempt returned by Start.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.SubmitAttempt
	if !bindJSON(c, &req) {
		return
	}
	req.AssessmentID = id
	req.UserID = CallerFrom(c).UserID
	send[services.SubmitAttempt, services.AttemptResult](h.base, c, http.StatusOK, req)
}
