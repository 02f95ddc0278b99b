package handlers

import (
	"net/http"
	"strconv"

	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FileHandler struct {
	base
}

func NewFileHandler(log *zap.Logger, med *mediator.Mediator) *FileHandler {
	return &FileHandler{base{log: log, med: med}}
}

// Upload accepts a multipart form with a "file" part, an optional "description" and
// "isPublic".
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, "file could not be read")
		return
	}
	defer f.Close()

	req := services.UploadFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Description: c.PostForm("description"),
		IsPublic:    c.PostForm("isPublic") == "true",
		Body:        f,
	}
	send[services.UploadFile, models.FileUpload](h.base, c, http.StatusCreated, req)
}

func (h *FileHandler) List(c *gin.Context) {
	var req services.ListFiles
	if !bindQuery(c, &req) {
		return
	}
	send[services.ListFiles, services.PagedResult[models.FileUpload]](h.base, c, http.StatusOK, req)
}

func (h *FileHandler) Categories(c *gin.Context) {
	send[services.FileCategories, []services.FileCategory](h.base, c, http.StatusOK, services.FileCategories{})
}

func (h *FileHandler) Download(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	dl, ok := dispatch[services.DownloadFile, services.FileDownload](h.base, c, services.DownloadFile{ID: id})
	if !ok {
		return
	}
	defer dl.Body.Close()

	contentType := dl.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, dl.File.FileSize, contentType, dl.Body, map[string]string{
		"Content-Disposition": "attachment; filename=" + strconv.Quote(dl.File.OriginalFileName),
	})
}

func (h *FileHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateFile
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id
	send[services.UpdateFile, models.FileUpload](h.base, c, http.StatusOK, req)
}

func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	send[services.DeleteFile, struct{}](h.base, c, http.StatusNoContent, services.DeleteFile{ID: id})
}

func (h *FileHandler) Share(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ShareFile
	if !bindJSON(c, &req) {
		return
	}
	req.FileID = id
	send[services.ShareFile, models.FileShare](h.base, c, http.StatusCreated, req)
}
