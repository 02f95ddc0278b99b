package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"
	"skillup-go/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FileService struct {
	deps Deps
	log  *zap.Logger
}

// fileCategory groups extensions for listing.
func fileCategory(ext string) string {
	switch ext {
	case "pdf", "doc", "docx", "txt", "md":
		return "document"
	case "png", "jpg", "jpeg", "gif", "webp":
		return "image"
	case "mp4", "mov", "webm":
		return "video"
	case "zip", "tar", "gz":
		return "archive"
	default:
		return "other"
	}
}

type UploadFile struct {
	FileName    string    `json:"fileName" validate:"required,max=255"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size" validate:"gt=0"`
	Description string    `json:"description" validate:"max=1000"`
	IsPublic    bool      `json:"isPublic"`
	Body        io.Reader `json:"-"`
}

// Upload checks the extension and size against configuration and stores the body under a fresh key.
func (s *FileService) Upload(ctx context.Context, caller auth.Caller, req UploadFile) (models.FileUpload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return models.FileUpload{}, err
	}
	if req.Body == nil {
		return models.FileUpload{}, apperr.Validation("file body is required")
	}
	limits := s.deps.fileLimits()
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(req.FileName), "."))
	if ext == "" || !slices.Contains(limits.AllowedTypes, ext) {
		return models.FileUpload{}, apperr.Validation("file type %q is not allowed", ext)
	}
	if limit := limits.MaxFileSize; limit > 0 && req.Size > limit {
		return models.FileUpload{}, apperr.Validation("file exceeds the maximum size of %d bytes", limit)
	}

	key := uuid.NewString() + "." + ext
	body := io.LimitReader(req.Body, req.Size)
	if err := s.deps.Storage.Save(ctx, key, req.ContentType, body); err != nil {
		return models.FileUpload{}, apperr.Unexpected("failed to store file", err)
	}

	file := &models.FileUpload{
		FileName:         key,
		OriginalFileName: filepath.Base(req.FileName),
		FileType:         fileCategory(ext),
		ContentType:      req.ContentType,
		FileSize:         req.Size,
		Description:      req.Description,
		IsPublic:         req.IsPublic,
		UploadedBy:       caller.UserID,
		UploadedAt:       s.deps.now(),
	}
	uow := s.deps.Store.UnitOfWork()
	uow.Files.Add(file)
	if err := uow.SaveChanges(ctx); err != nil {
		if derr := s.deps.Storage.Delete(ctx, key); derr != nil {
			s.log.Warn("Failed to remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return models.FileUpload{}, apperr.Unexpected("failed to record file", err)
	}
	s.log.Info("File uploaded", zap.Uint("file_id", file.ID), zap.String("key", key), zap.Int64("size", req.Size))
	return *file, nil
}

type DownloadFile struct {
	ID uint `json:"id" validate:"required"`
}

type FileDownload struct {
	File models.FileUpload
	Body io.ReadCloser
}

// Download opens a public file for any signed-in user. Private files open for the owner,
// users they are shared with and admins.
func (s *FileService) Download(ctx context.Context, caller auth.Caller, req DownloadFile) (FileDownload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return FileDownload{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	file, err := uow.Files.GetByID(ctx, req.ID)
	if err != nil {
		return FileDownload{}, lookupErr(err, "file", req.ID)
	}
	if !file.IsPublic && file.UploadedBy != caller.UserID && !caller.IsAdmin() {
		shared, err := uow.FileShares.IsSharedWith(ctx, file.ID, caller.UserID)
		if err != nil {
			return FileDownload{}, apperr.Unexpected("failed to check file access", err)
		}
		if !shared {
			return FileDownload{}, apperr.Unauthorized("no access to file %d", file.ID)
		}
	}
	body, err := s.deps.Storage.Open(ctx, file.FileName)
	if errors.Is(err, storage.ErrNotExist) {
		return FileDownload{}, apperr.NotFound("file %d content is missing", file.ID)
	}
	if err != nil {
		return FileDownload{}, apperr.Unexpected("failed to open file", err)
	}
	return FileDownload{File: *file, Body: body}, nil
}

func (s *FileService) ownedFile(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, id uint) (*models.FileUpload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	file, err := uow.Files.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "file", id)
	}
	if file.UploadedBy != caller.UserID && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only the owner can change file %d", id)
	}
	return file, nil
}

type UpdateFile struct {
	ID          uint    `json:"-" validate:"required"`
	FileName    *string `json:"fileName" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic    *bool   `json:"isPublic"`
}

// Update changes the display name, description or visibility of a file. The stored
// object and its extension are left untouched.
func (s *FileService) Update(ctx context.Context, caller auth.Caller, req UpdateFile) (models.FileUpload, error) {
	uow := s.deps.Store.UnitOfWork()
	file, err := s.ownedFile(ctx, uow, caller, req.ID)
	if err != nil {
		return models.FileUpload{}, err
	}
	if req.FileName != nil {
		name := filepath.Base(strings.TrimSpace(*req.FileName))
		oldExt := strings.ToLower(filepath.Ext(file.OriginalFileName))
		if !strings.EqualFold(filepath.Ext(name), oldExt) {
			return models.FileUpload{}, apperr.Validation("file name must keep the %q extension", oldExt)
		}
		file.OriginalFileName = name
	}
	if req.Description != nil {
		file.Description = *req.Description
	}
	if req.IsPublic != nil {
		file.IsPublic = *req.IsPublic
	}
	uow.Files.Update(file)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.FileUpload{}, apperr.Unexpected("failed to update file", err)
	}
	s.log.Info("File updated", zap.Uint("file_id", file.ID), zap.Bool("public", file.IsPublic))
	return *file, nil
}

type DeleteFile struct {
	ID uint `json:"id" validate:"required"`
}

func (s *FileService) Delete(ctx context.Context, caller auth.Caller, req DeleteFile) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	file, err := s.ownedFile(ctx, uow, caller, req.ID)
	if err != nil {
		return struct{}{}, err
	}
	uow.FileShares.RemoveWhere("file_upload_id = ?", file.ID)
	uow.Files.Remove(file)
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to delete file", err)
	}
	if err := s.deps.Storage.Delete(ctx, file.FileName); err != nil {
		s.log.Warn("Stored file not removed", zap.String("key", file.FileName), zap.Error(err))
	}
	return struct{}{}, nil
}

type ListFiles struct {
	Page     int `form:"page" validate:"gte=0"`
	PageSize int `form:"pageSize" validate:"gte=0,lte=100"`
}

func (s *FileService) List(ctx context.Context, caller auth.Caller, req ListFiles) (PagedResult[models.FileUpload], error) {
	if err := requireAuthenticated(caller); err != nil {
		return PagedResult[models.FileUpload]{}, err
	}
	paging := repository.Paging{Page: req.Page, PageSize: req.PageSize}
	files, total, err := s.deps.Store.UnitOfWork().Files.ByUploader(ctx, caller.UserID, paging)
	if err != nil {
		return PagedResult[models.FileUpload]{}, apperr.Unexpected("failed to list files", err)
	}
	return NewPagedResult(files, total, paging), nil
}

type ShareFile struct {
	FileID      uint   `json:"-" validate:"required"`
	UserID      uint   `json:"userId" validate:"required"`
	AccessLevel string `json:"accessLevel" validate:"omitempty,oneof=read write"`
}

func (s *FileService) Share(ctx context.Context, caller auth.Caller, req ShareFile) (models.FileShare, error) {
	uow := s.deps.Store.UnitOfWork()
	file, err := s.ownedFile(ctx, uow, caller, req.FileID)
	if err != nil {
		return models.FileShare{}, err
	}
	if req.UserID == file.UploadedBy {
		return models.FileShare{}, apperr.Validation("cannot share a file with its owner")
	}
	if ok, err := uow.Users.Exists(ctx, req.UserID); err != nil {
		return models.FileShare{}, apperr.Unexpected("failed to load user", err)
	} else if !ok {
		return models.FileShare{}, apperr.NotFound("user %d not found", req.UserID)
	}
	if shared, err := uow.FileShares.IsSharedWith(ctx, file.ID, req.UserID); err != nil {
		return models.FileShare{}, apperr.Unexpected("failed to check shares", err)
	} else if shared {
		return models.FileShare{}, apperr.Conflict("file %d is already shared with user %d", file.ID, req.UserID)
	}

	level := req.AccessLevel
	if level == "" {
		level = "read"
	}
	share := &models.FileShare{
		FileUploadID:     file.ID,
		SharedWithUserID: req.UserID,
		SharedBy:         caller.UserID,
		AccessLevel:      level,
		SharedAt:         s.deps.now(),
	}
	uow.FileShares.Add(share)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.FileShare{}, apperr.Unexpected("failed to share file", err)
	}
	return *share, nil
}

type FileCategories struct{}

type FileCategory struct {
	Category  string `json:"category"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"totalSize"`
}

// Categories groups the caller's uploads by file type.
func (s *FileService) Categories(ctx context.Context, caller auth.Caller, req FileCategories) ([]FileCategory, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	files, err := s.deps.Store.UnitOfWork().Files.AllByUploader(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load files", err)
	}
	byType := make(map[string]*FileCategory)
	for _, f := range files {
		c, ok := byType[f.FileType]
		if !ok {
			c = &FileCategory{Category: f.FileType}
			byType[f.FileType] = c
		}
		c.Count++
		c.TotalSize += f.FileSize
	}
	out := make([]FileCategory, 0, len(byType))
	for _, c := range byType {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
