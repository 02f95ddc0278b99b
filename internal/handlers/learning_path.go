package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LearningPathHandler struct {
	base
}

func NewLearningPathHandler(log *zap.Logger, med *mediator.Mediator) *LearningPathHandler {
	return &LearningPathHandler{base{log: log, med: med}}
}

func (h *LearningPathHandler) List(c *gin.Context) {
	var req services.ListLearningPaths
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListLearningPaths, services.PagedResult[models.LearningPath]](h.base, c, http.StatusOK, req)
}

func (h *LearningPathHandler) Categories(c *gin.Context) {
	send[services.ListCategories, []string](h.base, c, http.StatusOK, services.ListCategories{})
}

func (h *LearningPathHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.GetLearningPath, services.LearningPathDetail](h.base, c, http.StatusOK, services.GetLearningPath{ID: id})
}

func (h *LearningPathHandler) Create(c *gin.Context) {
	var req services.CreateLearningPath
	if !bindJSON(c, &req) {
		return
	}
	send[services.CreateLearningPath, models.LearningPath](h.base, c, http.StatusCreated, req)
}

func (h *LearningPathHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateLearningPath
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id
	send[services.UpdateLearningPath, models.LearningPath](h.base, c, http.StatusOK, req)
}

// Publish returns a handler that sets the path's published flag to published.
func (h *LearningPathHandler) Publish(published bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		req := services.SetLearningPathPublished{ID: id, Published: published}
		send[services.SetLearningPathPublished, models.LearningPath](h.base, c, http.StatusOK, req)
	}
}

func (h *LearningPathHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.DeleteLearningPath, struct{}](h.base, c, http.StatusNoContent, services.DeleteLearningPath{ID: id})
}

func (h *LearningPathHandler) Enroll(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := services.Enroll{LearningPathID: id, UserID: CallerFrom(c).UserID}
	send[services.Enroll, models.UserLearningPath](h.base, c, http.StatusCreated, req)
}

func (h *LearningPathHandler) Contents(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.ListContent, []models.Content](h.base, c, http.StatusOK, services.ListContent{LearningPathID: id})
}
