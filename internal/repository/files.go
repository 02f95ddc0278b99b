package repository

import (
	"context"

	"skillup-go/internal/models"
)

type FileRepository struct {
	Repository[models.FileUpload]
}

// ByUploader returns one page of a user's uploads, newest first.
func (r *FileRepository) ByUploader(ctx context.Context, userID uint, paging Paging) ([]models.FileUpload, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.FileUpload{}).Where("uploaded_by = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := paging.Normalize()
	var out []models.FileUpload
	err := q.Order("uploaded_at DESC, id DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error
	return out, total, err
}

func (r *FileRepository) AllByUploader(ctx context.Context, userID uint) ([]models.FileUpload, error) {
	return r.Find(ctx, "uploaded_by = ?", userID)
}

type FileShareRepository struct {
	Repository[models.FileShare]
}

func (r *FileShareRepository) IsSharedWith(ctx context.Context, fileID, userID uint) (bool, error) {
	count, err := r.Count(ctx, "file_upload_id = ? AND shared_with_user_id = ?", fileID, userID)
	return count > 0, err
}

func (r *FileShareRepository) ByFile(ctx context.Context, fileID uint) ([]models.FileShare, error) {
	return r.Find(ctx, "file_upload_id = ?", fileID)
}
