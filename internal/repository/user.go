package repository

import (
	"context"
	"strings"
	"time"

	"skillup-go/internal/models"
)

type UserRepository struct {
	Repository[models.User]
}

// UserFilter narrows the admin user listing. Zero values mean no filter.
type UserFilter struct {
	Search   string
	Role     models.Role
	IsActive *bool
	Paging   Paging
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.Count(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	return count > 0, err
}

// List returns one page of users and the total number matching the filter.
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	p := f.Paging.Normalize()
	err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) ByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "id IN ?", ids)
}

func (r *UserRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.Count(ctx, "created_at >= ? AND created_at < ?", from, to)
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return r.Count(ctx, "role = ?", role)
}

type SessionRepository struct {
	Repository[models.UserSession]
}

func (r *SessionRepository) GetActiveByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	var s models.UserSession
	err := r.db.WithContext(ctx).First(&s, "refresh_token = ? AND is_active = ?", token, true).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SessionRepository) ActiveByUser(ctx context.Context, userID uint) ([]models.UserSession, error) {
	return r.Find(ctx, "user_id = ? AND is_active = ?", userID, true)
}

// DeactivateExpired closes every active session whose expiry has passed.
// It writes directly and is meant for background maintenance only.
func (r *SessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Updates(map[string]interface{}{"is_active": false, "logout_time": now})
	return res.RowsAffected, res.Error
}

type OrderRepository struct {
	Repository[models.Order]
}

func (r *OrderRepository) Since(ctx context.Context, from time.Time) ([]models.Order, error) {
	return r.Find(ctx, "created_at >= ?", from)
}
