package repository

import (
	"context"

	"skillup-go/internal/models"
)

type AssessmentRepository struct {
	Repository[models.Assessment]
}

// List returns active assessments, optionally narrowed by type and learning path.
func (r *AssessmentRepository) List(ctx context.Context, assessmentType string, learningPathID *uint) ([]models.Assessment, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if assessmentType != "" {
		q = q.Where("assessment_type = ?", assessmentType)
	}
	if learningPathID != nil {
		q = q.Where("learning_path_id = ?", *learningPathID)
	}
	var out []models.Assessment
	err := q.Order("id").Find(&out).Error
	return out, err
}

func (r *AssessmentRepository) ByLearningPaths(ctx context.Context, ids []uint) ([]models.Assessment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, "learning_path_id IN ?", ids)
}

type QuestionRepository struct {
	Repository[models.Question]
}

// ByAssessment returns the questions of an assessment in presentation order.
func (r *QuestionRepository) ByAssessment(ctx context.Context, assessmentID uint) ([]models.Question, error) {
	var out []models.Question
	err := r.db.WithContext(ctx).Where("assessment_id = ?", assessmentID).
		Order("order_index, id").Find(&out).Error
	return out, err
}

// RemoveByAssessment queues deletion of every question of an assessment.
func (r *QuestionRepository) RemoveByAssessment(assessmentID uint) {
	r.RemoveWhere("assessment_id = ?", assessmentID)
}
