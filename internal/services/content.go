package services

import (
	"context"
	"errors"
	"fmt"

	"skillup-go/internal/analytics"
	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

type ContentService struct {
	deps Deps
	log  *zap.Logger
}

type ContentInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	ContentType     string `json:"contentType" validate:"required,oneof=Video Article Quiz Exercise Document"`
	Body            string `json:"body"`
	URL             string `json:"url" validate:"omitempty,url"`
	OrderIndex      int    `json:"orderIndex" validate:"gte=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0"`
	IsPublished     bool   `json:"isPublished"`
}

func (in ContentInput) apply(c *models.Content) {
	c.Title = in.Title
	c.ContentType = in.ContentType
	c.Body = in.Body
	c.URL = in.URL
	c.OrderIndex = in.OrderIndex
	c.DurationMinutes = in.DurationMinutes
	c.IsPublished = in.IsPublished
}

type CreateContent struct {
	LearningPathID uint `json:"learningPathId" validate:"required"`
	ContentInput
}

func (s *ContentService) Create(ctx context.Context, caller auth.Caller, req CreateContent) (models.Content, error) {
	uow := s.deps.Store.UnitOfWork()
	if _, err := ownedPath(ctx, uow, caller, req.LearningPathID); err != nil {
		return models.Content{}, err
	}
	content := &models.Content{LearningPathID: req.LearningPathID}
	req.apply(content)
	uow.Contents.Add(content)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.Content{}, apperr.Unexpected("failed to create content", err)
	}
	s.log.Info("Content created", zap.Uint("content_id", content.ID), zap.Uint("learning_path_id", req.LearningPathID))
	return *content, nil
}

// ownedContent loads a content item whose path the caller may edit.
func ownedContent(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, id uint) (*models.Content, error) {
	content, err := uow.Contents.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "content", id)
	}
	if _, err := ownedPath(ctx, uow, caller, content.LearningPathID); err != nil {
		return nil, err
	}
	return content, nil
}

type UpdateContent struct {
	ID uint `json:"-" validate:"required"`
	ContentInput
}

func (s *ContentService) Update(ctx context.Context, caller auth.Caller, req UpdateContent) (models.Content, error) {
	uow := s.deps.Store.UnitOfWork()
	content, err := ownedContent(ctx, uow, caller, req.ID)
	if err != nil {
		return models.Content{}, err
	}
	req.apply(content)
	uow.Contents.Update(content)
	if err := uow.SaveChanges(ctx); err != nil {
		return models.Content{}, apperr.Unexpected("failed to update content", err)
	}
	return *content, nil
}

type DeleteContent struct {
	ID uint `json:"id" validate:"required"`
}

func (s *ContentService) Delete(ctx context.Context, caller auth.Caller, req DeleteContent) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	content, err := ownedContent(ctx, uow, caller, req.ID)
	if err != nil {
		return struct{}{}, err
	}
	uow.UserProgress.RemoveWhere("content_id = ?", content.ID)
	uow.Contents.Remove(content)
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to delete content", err)
	}
	return struct{}{}, nil
}

type ListContent struct {
	LearningPathID uint `json:"learningPathId" validate:"required"`
}

// ListByLearningPath returns a path's content in order. Students only see published items.
func (s *ContentService) ListByLearningPath(ctx context.Context, caller auth.Caller, req ListContent) ([]models.Content, error) {
	uow := s.deps.Store.UnitOfWork()
	if ok, err := uow.LearningPaths.Exists(ctx, req.LearningPathID); err != nil {
		return nil, apperr.Unexpected("failed to load learning path", err)
	} else if !ok {
		return nil, apperr.NotFound("learning path %d not found", req.LearningPathID)
	}
	contents, err := uow.Contents.ByLearningPath(ctx, req.LearningPathID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load content", err)
	}
	if caller.CanAuthor() {
		return nonNil(contents), nil
	}
	out := make([]models.Content, 0, len(contents))
	for _, c := range contents {
		if c.IsPublished {
			out = append(out, c)
		}
	}
	return out, nil
}

type GetContent struct {
	ID uint `json:"id" validate:"required"`
}

type ContentDetail struct {
	models.Content
	Progress *models.UserProgress `json:"progress,omitempty"`
}

func (s *ContentService) Get(ctx context.Context, caller auth.Caller, req GetContent) (ContentDetail, error) {
	uow := s.deps.Store.UnitOfWork()
	content, err := uow.Contents.GetByID(ctx, req.ID)
	if err != nil {
		return ContentDetail{}, lookupErr(err, "content", req.ID)
	}
	if !content.IsPublished && !caller.CanAuthor() {
		return ContentDetail{}, apperr.NotFound("content %d not found", req.ID)
	}
	out := ContentDetail{Content: *content}
	if caller.Authenticated() {
		p, err := uow.UserProgress.Get(ctx, caller.UserID, content.ID)
		switch {
		case err == nil:
			out.Progress = p
		case !errors.Is(err, repository.ErrNotFound):
			return ContentDetail{}, apperr.Unexpected("failed to load progress", err)
		}
	}
	return out, nil
}

type CompleteContent struct {
	ContentID        uint `json:"contentId" validate:"required"`
	UserID           uint `json:"userId" validate:"required"`
	TimeSpentMinutes int  `json:"timeSpentMinutes" validate:"gte=0"`
}

type CompletionResult struct {
	Progress      models.UserProgress     `json:"progress"`
	Enrollment    models.UserLearningPath `json:"enrollment"`
	PathProgress  int                     `json:"pathProgress"`
	PathCompleted bool                    `json:"pathCompleted"`
}

// Complete marks content done for an enrolled user and recomputes the enrollment's progress.
func (s *ContentService) Complete(ctx context.Context, caller auth.Caller, req CompleteContent) (CompletionResult, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return CompletionResult{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	content, err := uow.Contents.GetByID(ctx, req.ContentID)
	if err != nil {
		return CompletionResult{}, lookupErr(err, "content", req.ContentID)
	}
	enrollment, err := uow.UserLearningPaths.Get(ctx, req.UserID, content.LearningPathID)
	if errors.Is(err, repository.ErrNotFound) {
		return CompletionResult{}, apperr.Validation("not enrolled in learning path %d", content.LearningPathID)
	}
	if err != nil {
		return CompletionResult{}, apperr.Unexpected("failed to load enrollment", err)
	}

	now := s.deps.now()
	progress, err := uow.UserProgress.Get(ctx, req.UserID, content.ID)
	newlyCompleted := false
	switch {
	case errors.Is(err, repository.ErrNotFound):
		progress = &models.UserProgress{UserID: req.UserID, ContentID: content.ID, LearningPathID: content.LearningPathID}
		newlyCompleted = true
	case err != nil:
		return CompletionResult{}, apperr.Unexpected("failed to load progress", err)
	default:
		newlyCompleted = !progress.IsCompleted
	}
	progress.TimeSpentMinutes += req.TimeSpentMinutes
	progress.ProgressPercentage = 100
	if newlyCompleted {
		progress.IsCompleted = true
		progress.CompletedAt = &now
	}
	if progress.ID == 0 {
		uow.UserProgress.Add(progress)
	} else {
		uow.UserProgress.Update(progress)
	}

	contents, err := uow.Contents.ByLearningPath(ctx, content.LearningPathID)
	if err != nil {
		return CompletionResult{}, apperr.Unexpected("failed to load content", err)
	}
	existing, err := uow.UserProgress.ByUserAndLearningPath(ctx, req.UserID, content.LearningPathID)
	if err != nil {
		return CompletionResult{}, apperr.Unexpected("failed to load progress", err)
	}
	done := map[uint]bool{content.ID: true}
	for _, p := range existing {
		if p.IsCompleted {
			done[p.ContentID] = true
		}
	}
	completed := 0
	for _, c := range contents {
		if done[c.ID] {
			completed++
		}
	}
	pct := int(analytics.Percent(float64(completed), float64(len(contents))))

	enrollment.ProgressPercentage = pct
	enrollment.LastAccessed = now
	enrollment.SessionCount++
	enrollment.TotalMinutesSpent += req.TimeSpentMinutes
	finished := false
	switch {
	case pct >= 100 && enrollment.Status != models.StatusCompleted:
		enrollment.Status = models.StatusCompleted
		enrollment.CompletedAt = &now
		finished = true
	case pct < 100:
		enrollment.Status = models.StatusInProgress
	}
	uow.UserLearningPaths.Update(enrollment)

	if newlyCompleted {
		uow.Activities.Add(&models.UserActivity{
			UserID:       req.UserID,
			ActivityType: models.ActivityContentCompleted,
			Description:  fmt.Sprintf("Completed %q", content.Title),
			Metadata:     activityMetadata(map[string]interface{}{"contentId": content.ID, "learningPathId": content.LearningPathID}),
			Timestamp:    now,
		})
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return CompletionResult{}, apperr.Unexpected("failed to record progress", err)
	}

	return CompletionResult{
		Progress:      *progress,
		Enrollment:    *enrollment,
		PathProgress:  pct,
		PathCompleted: finished,
	}, nil
}

type AdjacentContent struct {
	ContentID uint `json:"contentId" validate:"required"`
	Next      bool `json:"next"`
}

// Adjacent returns the next or previous published item on the same path.
func (s *ContentService) Adjacent(ctx context.Context, caller auth.Caller, req AdjacentContent) (models.Content, error) {
	uow := s.deps.Store.UnitOfWork()
	current, err := uow.Contents.GetByID(ctx, req.ContentID)
	if err != nil {
		return models.Content{}, lookupErr(err, "content", req.ContentID)
	}
	contents, err := uow.Contents.ByLearningPath(ctx, current.LearningPathID)
	if err != nil {
		return models.Content{}, apperr.Unexpected("failed to load content", err)
	}
	visible := contents[:0:0]
	for _, c := range contents {
		if c.IsPublished || c.ID == current.ID || caller.CanAuthor() {
			visible = append(visible, c)
		}
	}
	for i, c := range visible {
		if c.ID != current.ID {
			continue
		}
		j := i - 1
		if req.Next {
			j = i + 1
		}
		if j >= 0 && j < len(visible) {
			return visible[j], nil
		}
		break
	}
	if req.Next {
		return models.Content{}, apperr.NotFound("content %d is the last item", current.ID)
	}
	return models.Content{}, apperr.NotFound("content %d is the first item", current.ID)
}
