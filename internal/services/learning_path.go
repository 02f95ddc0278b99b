package services

import (
	"context"
	"errors"
	"fmt"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/database"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

type LearningPathService struct {
	deps Deps
	log  *zap.Logger
}

type LearningPathInput struct {
	Title              string            `json:"title" validate:"required,max=200"`
	Description        string            `json:"description"`
	ImageURL           string            `json:"imageUrl" validate:"omitempty,url"`
	Category           string            `json:"category" validate:"required,max=100"`
	Difficulty         models.Difficulty `json:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced"`
	EstimatedHours     int               `json:"estimatedHours" validate:"gte=0"`
	Prerequisites      []string          `json:"prerequisites"`
	LearningObjectives []string          `json:"learningObjectives"`
	Tags               []string          `json:"tags"`
	Price              int               `json:"price" validate:"gte=0"`
	DisplayOrder       int               `json:"displayOrder"`
}

func (in LearningPathInput) apply(p *models.LearningPath) {
	p.Title = in.Title
	p.Description = in.Description
	p.ImageURL = in.ImageURL
	p.Category = in.Category
	p.Difficulty = in.Difficulty
	p.EstimatedHours = in.EstimatedHours
	p.Prerequisites = models.StringList(in.Prerequisites)
	p.LearningObjectives = models.StringList(in.LearningObjectives)
	p.Tags = models.StringList(in.Tags)
	p.Price = in.Price
	p.DisplayOrder = in.DisplayOrder
}

type CreateLearningPath struct {
	LearningPathInput
}

func (s *LearningPathService) Create(ctx context.Context, caller auth.Caller, req CreateLearningPath) (models.LearningPath, error) {
	if !caller.CanAuthor() {
		return models.LearningPath{}, apperr.Unauthorized("content creator role required")
	}
	path := &models.LearningPath{CreatorID: caller.UserID, IsActive: true}
	req.apply(path)

	uow := s.deps.Store.UnitOfWork()
	uow.LearningPaths.Add(path)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.LearningPath{}, apperr.Unexpected("failed to create learning path", err)
	}
	s.log.Info("Learning path created", zap.Uint("learning_path_id", path.ID), zap.Uint("creator_id", caller.UserID))
	return *path, nil
}

// ownedPath loads a learning path the caller may edit.
func ownedPath(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, id uint) (*models.LearningPath, error) {
	if !caller.CanAuthor() {
		return nil, apperr.Unauthorized("content creator role required")
	}
	path, err := uow.LearningPaths.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "learning path", id)
	}
	if path.CreatorID != caller.UserID && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("learning path %d belongs to another creator", id)
	}
	return path, nil
}

type UpdateLearningPath struct {
	ID uint `json:"-" validate:"required"`
	LearningPathInput
}

func (s *LearningPathService) Update(ctx context.Context, caller auth.Caller, req UpdateLearningPath) (models.LearningPath, error) {
	uow := s.deps.Store.UnitOfWork()
	path, err := ownedPath(ctx, uow, caller, req.ID)
	if err != nil {
		return models.LearningPath{}, err
	}
	req.apply(path)
	uow.LearningPaths.Update(path)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.LearningPath{}, apperr.Unexpected("failed to update learning path", err)
	}
	return *path, nil
}

type SetLearningPathPublished struct {
	ID        uint `json:"id" validate:"required"`
	Published bool `json:"published"`
}

// SetPublished publishes or unpublishes a path. Publishing requires at least one content item.
func (s *LearningPathService) SetPublished(ctx context.Context, caller auth.Caller, req SetLearningPathPublished) (models.LearningPath, error) {
	uow := s.deps.Store.UnitOfWork()
	path, err := ownedPath(ctx, uow, caller, req.ID)
	if err != nil {
		return models.LearningPath{}, err
	}
	if req.Published {
		n, err := uow.Contents.CountByLearningPath(ctx, path.ID)
		if err != nil {
			return models.LearningPath{}, apperr.Unexpected("failed to count content", err)
		}
		if n == 0 {
			return models.LearningPath{}, apperr.Validation("learning path %d has no content to publish", path.ID)
		}
	}
	path.IsPublished = req.Published
	uow.LearningPaths.Update(path)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.LearningPath{}, apperr.Unexpected("failed to update learning path", err)
	}
	s.log.Info("Learning path publication changed", zap.Uint("learning_path_id", path.ID), zap.Bool("published", req.Published))
	return *path, nil
}

type DeleteLearningPath struct {
	ID uint `json:"id" validate:"required"`
}

// Delete deactivates a path; enrollments and progress are kept for reporting.
func (s *LearningPathService) Delete(ctx context.Context, caller auth.Caller, req DeleteLearningPath) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	path, err := ownedPath(ctx, uow, caller, req.ID)
	if err != nil {
		return struct{}{}, err
	}
	path.IsActive = false
	path.IsPublished = false
	uow.LearningPaths.Update(path)
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to delete learning path", err)
	}
	return struct{}{}, nil
}

type ListLearningPaths struct {
	Search     string            `form:"search"`
	Category   string            `form:"category"`
	Difficulty models.Difficulty `form:"difficulty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Page       int               `form:"page" validate:"gte=0"`
	PageSize   int               `form:"pageSize" validate:"gte=0,lte=100"`
}

// List shows published paths to students and every active path to authors.
func (s *LearningPathService) List(ctx context.Context, caller auth.Caller, req ListLearningPaths) (PagedResult[models.LearningPath], error) {
	paging := repository.Paging{Page: req.Page, PageSize: req.PageSize}
	items, total, err := s.deps.Store.UnitOfWork().LearningPaths.List(ctx, repository.LearningPathFilter{
		Search:        req.Search,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		PublishedOnly: !caller.CanAuthor(),
		Paging:        paging,
	})
	if err != nil {
		return PagedResult[models.LearningPath]{}, apperr.Unexpected("failed to list learning paths", err)
	}
	return NewPagedResult(items, total, paging), nil
}

type GetLearningPath struct {
	ID uint `json:"id" validate:"required"`
}

type LearningPathDetail struct {
	models.LearningPath
	Contents      []models.Content         `json:"contents"`
	Assessments   []models.Assessment      `json:"assessments"`
	EnrolledCount int                      `json:"enrolledCount"`
	Enrollment    *models.UserLearningPath `json:"enrollment,omitempty"`
}

func (s *LearningPathService) Get(ctx context.Context, caller auth.Caller, req GetLearningPath) (LearningPathDetail, error) {
	uow := s.deps.Store.UnitOfWork()
	path, err := uow.LearningPaths.GetByID(ctx, req.ID)
	if err != nil {
		return LearningPathDetail{}, lookupErr(err, "learning path", req.ID)
	}
	if !path.IsActive || (!path.IsPublished && path.CreatorID != caller.UserID && !caller.IsAdmin()) {
		return LearningPathDetail{}, apperr.NotFound("learning path %d not found", req.ID)
	}
	contents, err := uow.Contents.ByLearningPath(ctx, path.ID)
	if err != nil {
		return LearningPathDetail{}, apperr.Unexpected("failed to load content", err)
	}
	assessments, err := uow.Assessments.List(ctx, "", &path.ID)
	if err != nil {
		return LearningPathDetail{}, apperr.Unexpected("failed to load assessments", err)
	}
	enrollments, err := uow.UserLearningPaths.ByLearningPath(ctx, path.ID)
	if err != nil {
		return LearningPathDetail{}, apperr.Unexpected("failed to load enrollments", err)
	}

	out := LearningPathDetail{
		LearningPath:  *path,
		Contents:      nonNil(contents),
		Assessments:   nonNil(assessments),
		EnrolledCount: len(enrollments),
	}
	for i := range enrollments {
		if enrollments[i].UserID == caller.UserID {
			out.Enrollment = &enrollments[i]
		}
	}
	return out, nil
}

type ListCategories struct{}

func (s *LearningPathService) Categories(ctx context.Context, caller auth.Caller, req ListCategories) ([]string, error) {
	out, err := s.deps.Store.UnitOfWork().LearningPaths.Categories(ctx)
	if err != nil {
		return nil, apperr.Unexpected("failed to load categories", err)
	}
	return nonNil(out), nil
}

type Enroll struct {
	LearningPathID uint `json:"learningPathId" validate:"required"`
	UserID         uint `json:"userId" validate:"required"`
}

// Enroll registers the user on a published path and records an order for its price.
func (s *LearningPathService) Enroll(ctx context.Context, caller auth.Caller, req Enroll) (models.UserLearningPath, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return models.UserLearningPath{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	path, err := uow.LearningPaths.GetByID(ctx, req.LearningPathID)
	if err != nil {
		return models.UserLearningPath{}, lookupErr(err, "learning path", req.LearningPathID)
	}
	if !path.IsActive || !path.IsPublished {
		return models.UserLearningPath{}, apperr.Validation("learning path %d is not open for enrollment", path.ID)
	}
	if ok, err := uow.Users.Exists(ctx, req.UserID); err != nil {
		return models.UserLearningPath{}, apperr.Unexpected("failed to load user", err)
	} else if !ok {
		return models.UserLearningPath{}, apperr.NotFound("user %d not found", req.UserID)
	}
	if _, err := uow.UserLearningPaths.Get(ctx, req.UserID, path.ID); err == nil {
		return models.UserLearningPath{}, apperr.Validation("Already enrolled")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.UserLearningPath{}, apperr.Unexpected("failed to check enrollment", err)
	}

	now := s.deps.now()
	enrollment := &models.UserLearningPath{
		UserID:         req.UserID,
		LearningPathID: path.ID,
		AmountPaid:     path.Price,
		EnrolledAt:     now,
		LastAccessed:   now,
		Status:         models.StatusNotStarted,
	}
	uow.UserLearningPaths.Add(enrollment)
	if path.Price > 0 {
		uow.Orders.Add(&models.Order{UserID: req.UserID, LearningPathID: path.ID, TotalAmount: path.Price})
	}
	uow.Activities.Add(&models.UserActivity{
		UserID:       req.UserID,
		ActivityType: models.ActivityEnrolled,
		Description:  fmt.Sprintf("Enrolled in %q", path.Title),
		Metadata:     activityMetadata(map[string]interface{}{"learningPathId": path.ID}),
		Timestamp:    now,
	})
	if err := uow.SaveChanges(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return models.UserLearningPath{}, apperr.Validation("Already enrolled")
		}
		return models.UserLearningPath{}, apperr.Unexpected("failed to enroll", err)
	}
	s.log.Info("User enrolled", zap.Uint("user_id", req.UserID), zap.Uint("learning_path_id", path.ID))
	return *enrollment, nil
}

type GetUserLearningPaths struct {
	UserID uint `json:"userId" validate:"required"`
}

type EnrolledPath struct {
	Enrollment   models.UserLearningPath `json:"enrollment"`
	LearningPath models.LearningPath     `json:"learningPath"`
}

func (s *LearningPathService) UserLearningPaths(ctx context.Context, caller auth.Caller, req GetUserLearningPaths) ([]EnrolledPath, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return nil, err
	}
	uow := s.deps.Store.UnitOfWork()
	enrollments, err := uow.UserLearningPaths.ByUser(ctx, req.UserID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load enrollments", err)
	}
	out := make([]EnrolledPath, 0, len(enrollments))
	for _, e := range enrollments {
		path, err := uow.LearningPaths.GetByID(ctx, e.LearningPathID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Unexpected("failed to load learning path", err)
		}
		out = append(out, EnrolledPath{Enrollment: e, LearningPath: *path})
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
