package repository

import (
	"context"
	"strings"
	"time"

	"skillup-go/internal/models"
)

type LearningPathRepository struct {
	Repository[models.LearningPath]
}

type LearningPathFilter struct {
	Search        string
	Category      string
	Difficulty    models.Difficulty
	PublishedOnly bool
	Paging        Paging
}

// List returns one page of active learning paths in display order.
func (r *LearningPathRepository) List(ctx context.Context, f LearningPathFilter) ([]models.LearningPath, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LearningPath{}).Where("is_active = ?", true)
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := f.Paging.Normalize()
	var out []models.LearningPath
	err := q.Order("display_order, id").Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error
	return out, total, err
}

func (r *LearningPathRepository) ByCreator(ctx context.Context, creatorID uint) ([]models.LearningPath, error) {
	return r.Find(ctx, "creator_id = ?", creatorID)
}

// ListByCreator returns one page of a creator's paths, newest first.
// A non-nil published narrows the result to published or draft paths.
func (r *LearningPathRepository) ListByCreator(ctx context.Context, creatorID uint, published *bool, paging Paging) ([]models.LearningPath, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LearningPath{}).Where("creator_id = ?", creatorID)
	if published != nil {
		q = q.Where("is_published = ?", *published)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := paging.Normalize()
	var out []models.LearningPath
	err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error
	return out, total, err
}

func (r *LearningPathRepository) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&models.LearningPath{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct().Order("category").Pluck("category", &out).Error
	return out, err
}

type ContentRepository struct {
	Repository[models.Content]
}

// ByLearningPath returns a path's content in presentation order.
func (r *ContentRepository) ByLearningPath(ctx context.Context, learningPathID uint) ([]models.Content, error) {
	var out []models.Content
	err := r.db.WithContext(ctx).Where("learning_path_id = ?", learningPathID).
		Order("order_index, id").Find(&out).Error
	return out, err
}

func (r *ContentRepository) CountByLearningPath(ctx context.Context, learningPathID uint) (int64, error) {
	return r.Count(ctx, "learning_path_id = ?", learningPathID)
}

func (r *ContentRepository) ByLearningPaths(ctx context.Context, ids []uint) ([]models.Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "learning_path_id IN ?", ids)
}

type EnrollmentRepository struct {
	Repository[models.UserLearningPath]
}

// Get returns the enrollment of userID in learningPathID.
func (r *EnrollmentRepository) Get(ctx context.Context, userID, learningPathID uint) (*models.UserLearningPath, error) {
	var e models.UserLearningPath
	err := r.db.WithContext(ctx).First(&e, "user_id = ? AND learning_path_id = ?", userID, learningPathID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) ByUser(ctx context.Context, userID uint) ([]models.UserLearningPath, error) {
	return r.Find(ctx, "user_id = ?", userID)
}

func (r *EnrollmentRepository) ByLearningPath(ctx context.Context, learningPathID uint) ([]models.UserLearningPath, error) {
	return r.Find(ctx, "learning_path_id = ?", learningPathID)
}

func (r *EnrollmentRepository) ByLearningPaths(ctx context.Context, ids []uint) ([]models.UserLearningPath, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "learning_path_id IN ?", ids)
}

// StudentFilter selects enrollments across a set of learning paths.
type StudentFilter struct {
	LearningPathIDs []uint
	Search          string
	Paging          Paging
}

// ListStudents returns one page of enrollments in the given paths, newest first.
// Search matches the student's name or email.
func (r *EnrollmentRepository) ListStudents(ctx context.Context, f StudentFilter) ([]models.UserLearningPath, int64, error) {
	if len(f.LearningPathIDs) == 0 {
		return nil, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.UserLearningPath{}).
		Where("user_learning_paths.learning_path_id IN ?", f.LearningPathIDs)
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("JOIN users ON users.id = user_learning_paths.user_id").
			Where("LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := f.Paging.Normalize()
	var out []models.UserLearningPath
	err := q.Select("user_learning_paths.*").
		Order("user_learning_paths.enrolled_at DESC, user_learning_paths.id DESC").
		Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error
	return out, total, err
}

type ProgressRepository struct {
	Repository[models.UserProgress]
}

func (r *ProgressRepository) Get(ctx context.Context, userID, contentID uint) (*models.UserProgress, error) {
	var p models.UserProgress
	err := r.db.WithContext(ctx).First(&p, "user_id = ? AND content_id = ?", userID, contentID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProgressRepository) ByUser(ctx context.Context, userID uint) ([]models.UserProgress, error) {
	return r.Find(ctx, "user_id = ?", userID)
}

func (r *ProgressRepository) ByUserAndLearningPath(ctx context.Context, userID, learningPathID uint) ([]models.UserProgress, error) {
	return r.Find(ctx, "user_id = ? AND learning_path_id = ?", userID, learningPathID)
}

func (r *ProgressRepository) ByContents(ctx context.Context, contentIDs []uint) ([]models.UserProgress, error) {
	if len(contentIDs) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "content_id IN ?", contentIDs)
}

type ActivityRepository struct {
	Repository[models.UserActivity]
}

func (r *ActivityRepository) ByUser(ctx context.Context, userID uint) ([]models.UserActivity, error) {
	return r.Find(ctx, "user_id = ?", userID)
}

// Recent returns the latest activities of a user, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, userID uint, limit int) ([]models.UserActivity, error) {
	var out []models.UserActivity
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// ActiveUsersBetween counts distinct users with any activity in [from, to).
func (r *ActivityRepository) ActiveUsersBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Distinct("user_id").Count(&count).Error
	return count, err
}
