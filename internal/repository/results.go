package repository

import (
	"context"

	"skillup-go/internal/models"
)

type ResultRepository struct {
	Repository[models.AssessmentResult]
}

// ByUser returns a user's attempts, newest first.
func (r *ResultRepository) ByUser(ctx context.Context, userID uint) ([]models.AssessmentResult, error) {
	var out []models.AssessmentResult
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *ResultRepository) ByUserAndAssessment(ctx context.Context, userID, assessmentID uint) ([]models.AssessmentResult, error) {
	var out []models.AssessmentResult
	err := r.db.WithContext(ctx).Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *ResultRepository) ByAssessment(ctx context.Context, assessmentID uint) ([]models.AssessmentResult, error) {
	return r.Find(ctx, "assessment_id = ?", assessmentID)
}

func (r *ResultRepository) ByAssessments(ctx context.Context, ids []uint) ([]models.AssessmentResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "assessment_id IN ?", ids)
}

type AnswerRepository struct {
	Repository[models.UserAnswer]
}

func (r *AnswerRepository) ByResult(ctx context.Context, resultID uint) ([]models.UserAnswer, error) {
	return r.Find(ctx, "assessment_result_id = ?", resultID)
}
