package handlers

import (
	"net/http"

	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContentHandler struct {
	base
}

func NewContentHandler(log *zap.Logger, med *mediator.Mediator) *ContentHandler {
	return &ContentHandler{base{log: log, med: med}}
}

func (h *ContentHandler) Create(c *gin.Context) {
	var req services.CreateContent
	if !bindJSON(c, &req) {
		return
	}
	send[services.CreateContent, models.Content](h.base, c, http.StatusCreated, req)
}

func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.GetContent, services.ContentDetail](h.base, c, http.StatusOK, services.GetContent{ID: id})
}

func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateContent
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id
	send[services.UpdateContent, models.Content](h.base, c, http.StatusOK, req)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.DeleteContent, struct{}](h.base, c, http.StatusNoContent, services.DeleteContent{ID: id})
}

func (h *ContentHandler) Complete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		TimeSpentMinutes int `json:"timeSpentMinutes"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &body) {
		return
	}
	req := services.CompleteContent{ContentID: id, UserID: CallerFrom(c).UserID, TimeSpentMinutes: body.TimeSpentMinutes}
	send[services.CompleteContent, services.CompletionResult](h.base, c, http.StatusOK, req)
}

// Adjacent returns a handler for the next or previous content item.
func (h *ContentHandler) Adjacent(next bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		send[services.AdjacentContent, models.Content](h.base, c, http.StatusOK, services.AdjacentContent{ContentID: id, Next: next})
	}
}
