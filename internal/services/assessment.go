package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"skillup-go/internal/analytics"
	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/cache"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type AssessmentService struct {
	deps Deps
	log  *zap.Logger
}

type StartAttempt struct {
	AssessmentID uint `json:"assessmentId" validate:"required"`
	UserID       uint `json:"userId" validate:"required"`
}

type StartAttemptResult struct {
	AttemptID      uint `json:"attemptId"`
	MaxScore       int  `json:"maxScore"`
	TotalQuestions int  `json:"totalQuestions"`
	TimeLimit      int  `json:"timeLimit"`
}

// Start opens a new attempt with a zero score.
func (s *AssessmentService) Start(ctx context.Context, caller auth.Caller, req StartAttempt) (StartAttemptResult, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return StartAttemptResult{}, err
	}
	uow := s.deps.Store.UnitOfWork()

	assessment, err := uow.Assessments.GetByID(ctx, req.AssessmentID)
	if err != nil {
		return StartAttemptResult{}, lookupErr(err, "assessment", req.AssessmentID)
	}
	if ok, err := uow.Users.Exists(ctx, req.UserID); err != nil {
		return StartAttemptResult{}, apperr.Unexpected("failed to load user", err)
	} else if !ok {
		return StartAttemptResult{}, apperr.NotFound("user %d not found", req.UserID)
	}
	if !assessment.IsActive {
		return StartAttemptResult{}, apperr.Validation("assessment %d is not active", assessment.ID)
	}
	questions, err := uow.Questions.ByAssessment(ctx, assessment.ID)
	if err != nil {
		return StartAttemptResult{}, apperr.Unexpected("failed to load questions", err)
	}
	if len(questions) == 0 {
		return StartAttemptResult{}, apperr.Validation("assessment %d has no questions", assessment.ID)
	}

	result := &models.AssessmentResult{
		AssessmentID:   assessment.ID,
		UserID:         req.UserID,
		MaxScore:       totalPoints(questions),
		TotalQuestions: len(questions),
	}
	uow.AssessmentResults.Add(result)
	if err := uow.SaveChanges(ctx); err != nil {
		return StartAttemptResult{}, apperr.Unexpected("failed to start attempt", err)
	}

	s.log.Info("Attempt started",
		zap.Uint("attempt_id", result.ID),
		zap.Uint("assessment_id", assessment.ID),
		zap.Uint("user_id", req.UserID))
	return StartAttemptResult{
		AttemptID:      result.ID,
		MaxScore:       result.MaxScore,
		TotalQuestions: result.TotalQuestions,
		TimeLimit:      assessment.TimeLimit,
	}, nil
}

type SubmittedAnswer struct {
	QuestionID uint   `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

type SubmitAttempt struct {
	AssessmentID     uint              `json:"assessmentId" validate:"required"`
	UserID           uint              `json:"userId" validate:"required"`
	AttemptID        *uint             `json:"attemptId,omitempty"`
	TimeSpentMinutes int               `json:"timeSpentMinutes" validate:"gte=0"`
	Answers          []SubmittedAnswer `json:"answers" validate:"dive"`
}

type AttemptResult struct {
	AttemptID        uint    `json:"attemptId"`
	AssessmentID     uint    `json:"assessmentId"`
	Score            int     `json:"score"`
	MaxScore         int     `json:"maxScore"`
	Percentage       float64 `json:"percentage"`
	TotalQuestions   int     `json:"totalQuestions"`
	CorrectAnswers   int     `json:"correctAnswers"`
	IsPassed         bool    `json:"isPassed"`
	TimeSpentMinutes int     `json:"timeSpentMinutes"`
}

// Submit scores the answers and finalizes the attempt. Answers whose
// question is not part of the assessment are skipped, and only the first
// answer per question counts. Feedback is generated in the background.
func (s *AssessmentService) Submit(ctx context.Context, caller auth.Caller, req SubmitAttempt) (AttemptResult, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return AttemptResult{}, err
	}
	uow := s.deps.Store.UnitOfWork()

	assessment, err := uow.Assessments.GetByID(ctx, req.AssessmentID)
	if err != nil {
		return AttemptResult{}, lookupErr(err, "assessment", req.AssessmentID)
	}
	if ok, err := uow.Users.Exists(ctx, req.UserID); err != nil {
		return AttemptResult{}, apperr.Unexpected("failed to load user", err)
	} else if !ok {
		return AttemptResult{}, apperr.NotFound("user %d not found", req.UserID)
	}
	questions, err := uow.Questions.ByAssessment(ctx, assessment.ID)
	if err != nil {
		return AttemptResult{}, apperr.Unexpected("failed to load questions", err)
	}
	maxScore := totalPoints(questions)

	var result *models.AssessmentResult
	if req.AttemptID != nil {
		result, err = uow.AssessmentResults.GetByID(ctx, *req.AttemptID)
		if err != nil {
			return AttemptResult{}, lookupErr(err, "attempt", *req.AttemptID)
		}
		if result.UserID != req.UserID || result.AssessmentID != assessment.ID {
			return AttemptResult{}, apperr.Validation("attempt %d does not belong to this assessment and user", result.ID)
		}
		if result.CompletedAt != nil {
			return AttemptResult{}, apperr.Validation("attempt %d was already submitted", result.ID)
		}
	} else {
		result = &models.AssessmentResult{
			AssessmentID:   assessment.ID,
			UserID:         req.UserID,
			MaxScore:       maxScore,
			TotalQuestions: len(questions),
		}
		uow.AssessmentResults.Add(result)
		if err := uow.SaveChanges(ctx); err != nil {
			return AttemptResult{}, apperr.Unexpected("failed to record attempt", err)
		}
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	answered := make(map[uint]bool, len(req.Answers))
	score, correct := 0, 0
	for _, a := range req.Answers {
		q, ok := byID[a.QuestionID]
		if !ok || answered[q.ID] {
			continue
		}
		answered[q.ID] = true
		isCorrect := answerMatches(a.Answer, q.CorrectAnswer)
		if isCorrect {
			score += q.Points
			correct++
		}
		uow.UserAnswers.Add(&models.UserAnswer{
			AssessmentResultID: result.ID,
			QuestionID:         q.ID,
			UserID:             req.UserID,
			Answer:             a.Answer,
			IsCorrect:          isCorrect,
		})
	}

	now := s.deps.now()
	result.Score = score
	result.MaxScore = maxScore
	result.TotalQuestions = len(questions)
	result.CorrectAnswers = correct
	result.IsPassed = score >= assessment.PassingScore
	result.TimeSpentMinutes = req.TimeSpentMinutes
	result.CompletedAt = &now
	uow.AssessmentResults.Update(result)
	uow.Activities.Add(&models.UserActivity{
		UserID:       req.UserID,
		ActivityType: models.ActivityAssessmentCompleted,
		Description:  fmt.Sprintf("Completed assessment %q", assessment.Title),
		Metadata:     activityMetadata(map[string]interface{}{"assessmentId": assessment.ID, "attemptId": result.ID, "score": score, "passed": result.IsPassed}),
		Timestamp:    now,
	})
	if err := uow.SaveChanges(ctx); err != nil {
		return AttemptResult{}, apperr.Unexpected("failed to submit attempt", err)
	}

	s.log.Info("Attempt submitted",
		zap.Uint("attempt_id", result.ID),
		zap.Uint("user_id", req.UserID),
		zap.Int("score", score),
		zap.Int("max_score", maxScore),
		zap.Bool("passed", result.IsPassed))

	if s.deps.Feedback != nil {
		job := FeedbackJob{
			ResultID: result.ID,
			Input: FeedbackInput{
				Title:    assessment.Title,
				Score:    score,
				MaxScore: maxScore,
				Passed:   result.IsPassed,
			},
		}
		if err := s.deps.Feedback.Enqueue(job); err != nil {
			s.log.Warn("Feedback not queued", zap.Uint("attempt_id", result.ID), zap.Error(err))
		}
	}

	return toAttemptResult(result), nil
}

func toAttemptResult(r *models.AssessmentResult) AttemptResult {
	return AttemptResult{
		AttemptID:        r.ID,
		AssessmentID:     r.AssessmentID,
		Score:            r.Score,
		MaxScore:         r.MaxScore,
		Percentage:       analytics.ScorePercent(*r),
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		IsPassed:         r.IsPassed,
		TimeSpentMinutes: r.TimeSpentMinutes,
	}
}

// answerMatches compares answers ignoring surrounding space and case.
func answerMatches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

func totalPoints(questions []models.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func activityMetadata(v map[string]interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

type QuestionInput struct {
	QuestionText  string   `json:"questionText" validate:"required"`
	QuestionType  string   `json:"questionType" validate:"required,oneof=MultipleChoice TrueFalse ShortAnswer"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points" validate:"gte=0"`
}

type CreateAssessment struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description"`
	AssessmentType string          `json:"assessmentType" validate:"required"`
	TimeLimit      int             `json:"timeLimit" validate:"gte=0"`
	PassingScore   int             `json:"passingScore" validate:"gte=0"`
	LearningPathID *uint           `json:"learningPathId,omitempty"`
	Questions      []QuestionInput `json:"questions" validate:"dive"`
}

func (c CreateAssessment) Validate() error {
	return validatePassingScore(c.PassingScore, c.Questions)
}

func validatePassingScore(passing int, questions []QuestionInput) error {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	if len(questions) > 0 && passing > total {
		return apperr.Validation("passingScore %d exceeds the total of %d points", passing, total)
	}
	return nil
}

type AssessmentDetail struct {
	models.Assessment
	Questions []models.Question `json:"questions"`
}

func (s *AssessmentService) authorize(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, learningPathID *uint) error {
	if !caller.CanAuthor() {
		return apperr.Unauthorized("content creator role required")
	}
	if learningPathID == nil {
		return nil
	}
	path, err := uow.LearningPaths.GetByID(ctx, *learningPathID)
	if err != nil {
		return lookupErr(err, "learning path", *learningPathID)
	}
	if path.CreatorID != caller.UserID && !caller.IsAdmin() {
		return apperr.Unauthorized("learning path %d belongs to another creator", path.ID)
	}
	return nil
}

func buildQuestions(assessmentID uint, in []QuestionInput) []*models.Question {
	out := make([]*models.Question, 0, len(in))
	for i, q := range in {
		out = append(out, &models.Question{
			AssessmentID:  assessmentID,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			Options:       models.StringList(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Points:        q.Points,
			OrderIndex:    i + 1,
		})
	}
	return out
}

func (s *AssessmentService) Create(ctx context.Context, caller auth.Caller, req CreateAssessment) (AssessmentDetail, error) {
	uow := s.deps.Store.UnitOfWork()
	if err := s.authorize(ctx, uow, caller, req.LearningPathID); err != nil {
		return AssessmentDetail{}, err
	}

	assessment := &models.Assessment{
		Title:          req.Title,
		Description:    req.Description,
		AssessmentType: req.AssessmentType,
		TimeLimit:      req.TimeLimit,
		PassingScore:   req.PassingScore,
		LearningPathID: req.LearningPathID,
		IsActive:       true,
	}
	questions := buildQuestions(0, req.Questions)
	for _, q := range questions {
		assessment.MaxScore += q.Points
	}
	uow.Assessments.Add(assessment)
	if err := uow.SaveChanges(ctx); err != nil {
		return AssessmentDetail{}, apperr.Unexpected("failed to create assessment", err)
	}
	for _, q := range questions {
		q.AssessmentID = assessment.ID
		uow.Questions.Add(q)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return AssessmentDetail{}, apperr.Unexpected("failed to create questions", err)
	}

	s.log.Info("Assessment created", zap.Uint("assessment_id", assessment.ID), zap.Int("questions", len(questions)))
	return detail(assessment, questions), nil
}

type UpdateAssessment struct {
	ID uint `json:"-" validate:"required"`
	CreateAssessment
	IsActive bool `json:"isActive"`
}

// Update replaces the assessment's fields and, when questions are given, its whole question set.
// Once attempts exist the questions and the passing score are frozen.
func (s *AssessmentService) Update(ctx context.Context, caller auth.Caller, req UpdateAssessment) (AssessmentDetail, error) {
	uow := s.deps.Store.UnitOfWork()
	assessment, err := uow.Assessments.GetByID(ctx, req.ID)
	if err != nil {
		return AssessmentDetail{}, lookupErr(err, "assessment", req.ID)
	}
	if err := s.authorize(ctx, uow, caller, assessment.LearningPathID); err != nil {
		return AssessmentDetail{}, err
	}
	if req.LearningPathID != nil {
		if err := s.authorize(ctx, uow, caller, req.LearningPathID); err != nil {
			return AssessmentDetail{}, err
		}
	}

	attempts, err := uow.AssessmentResults.Count(ctx, "assessment_id = ?", assessment.ID)
	if err != nil {
		return AssessmentDetail{}, apperr.Unexpected("failed to count attempts", err)
	}
	if attempts > 0 {
		if len(req.Questions) > 0 {
			return AssessmentDetail{}, apperr.Validation("assessment %d has %d attempts; its questions can no longer be replaced", assessment.ID, attempts)
		}
		if req.PassingScore != assessment.PassingScore {
			return AssessmentDetail{}, apperr.Validation("assessment %d has %d attempts; its passing score can no longer change", assessment.ID, attempts)
		}
	}

	replace := len(req.Questions) > 0
	var questions []*models.Question
	if replace {
		questions = buildQuestions(assessment.ID, req.Questions)
	} else {
		existing, err := uow.Questions.ByAssessment(ctx, assessment.ID)
		if err != nil {
			return AssessmentDetail{}, apperr.Unexpected("failed to load questions", err)
		}
		for i := range existing {
			questions = append(questions, &existing[i])
		}
	}
	maxScore := 0
	for _, q := range questions {
		maxScore += q.Points
	}
	if len(questions) > 0 && req.PassingScore > maxScore {
		return AssessmentDetail{}, apperr.Validation("passingScore %d exceeds the total of %d points", req.PassingScore, maxScore)
	}

	assessment.Title = req.Title
	assessment.Description = req.Description
	assessment.AssessmentType = req.AssessmentType
	assessment.TimeLimit = req.TimeLimit
	assessment.PassingScore = req.PassingScore
	assessment.LearningPathID = req.LearningPathID
	assessment.IsActive = req.IsActive
	assessment.MaxScore = maxScore

	uow.Assessments.Update(assessment)
	if replace {
		uow.Questions.RemoveByAssessment(assessment.ID)
		for _, q := range questions {
			uow.Questions.Add(q)
		}
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return AssessmentDetail{}, apperr.Unexpected("failed to update assessment", err)
	}
	s.deps.Cache.Invalidate(ctx, cache.AssessmentKey(assessment.ID))
	return detail(assessment, questions), nil
}

type DeleteAssessment struct {
	ID uint `json:"id" validate:"required"`
}

func (s *AssessmentService) Delete(ctx context.Context, caller auth.Caller, req DeleteAssessment) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	assessment, err := uow.Assessments.GetByID(ctx, req.ID)
	if err != nil {
		return struct{}{}, lookupErr(err, "assessment", req.ID)
	}
	if err := s.authorize(ctx, uow, caller, assessment.LearningPathID); err != nil {
		return struct{}{}, err
	}
	attempts, err := uow.AssessmentResults.Count(ctx, "assessment_id = ?", assessment.ID)
	if err != nil {
		return struct{}{}, apperr.Unexpected("failed to count attempts", err)
	}
	// Attempts keep referencing the assessment and its questions, so it is only retired.
	if attempts > 0 {
		assessment.IsActive = false
		uow.Assessments.Update(assessment)
	} else {
		uow.Questions.RemoveByAssessment(assessment.ID)
		uow.Assessments.Remove(assessment)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to delete assessment", err)
	}
	s.deps.Cache.Invalidate(ctx, cache.AssessmentKey(assessment.ID))
	s.log.Info("Assessment deleted", zap.Uint("assessment_id", assessment.ID), zap.Bool("retired", attempts > 0))
	return struct{}{}, nil
}

type GetAssessment struct {
	ID uint `json:"id" validate:"required"`
}

// Get returns the assessment with its questions, answers included. Authors only.
func (s *AssessmentService) Get(ctx context.Context, caller auth.Caller, req GetAssessment) (AssessmentDetail, error) {
	if !caller.CanAuthor() {
		return AssessmentDetail{}, apperr.Unauthorized("content creator role required")
	}
	return s.loadDetail(ctx, req.ID)
}

func (s *AssessmentService) loadDetail(ctx context.Context, id uint) (AssessmentDetail, error) {
	return cache.GetOrLoad(ctx, s.deps.Cache, cache.AssessmentKey(id), func() (AssessmentDetail, error) {
		uow := s.deps.Store.UnitOfWork()
		assessment, err := uow.Assessments.GetByID(ctx, id)
		if err != nil {
			return AssessmentDetail{}, lookupErr(err, "assessment", id)
		}
		questions, err := uow.Questions.ByAssessment(ctx, id)
		if err != nil {
			return AssessmentDetail{}, apperr.Unexpected("failed to load questions", err)
		}
		return AssessmentDetail{Assessment: *assessment, Questions: questions}, nil
	})
}

func detail(a *models.Assessment, questions []*models.Question) AssessmentDetail {
	out := AssessmentDetail{Assessment: *a, Questions: make([]models.Question, 0, len(questions))}
	for _, q := range questions {
		out.Questions = append(out.Questions, *q)
	}
	return out
}

type ListAssessments struct {
	AssessmentType string `form:"type"`
	LearningPathID *uint  `form:"learningPathId"`
}

func (s *AssessmentService) List(ctx context.Context, caller auth.Caller, req ListAssessments) ([]models.Assessment, error) {
	out, err := s.deps.Store.UnitOfWork().Assessments.List(ctx, req.AssessmentType, req.LearningPathID)
	if err != nil {
		return nil, apperr.Unexpected("failed to list assessments", err)
	}
	if out == nil {
		out = []models.Assessment{}
	}
	return out, nil
}

type GetQuestions struct {
	AssessmentID uint `json:"assessmentId" validate:"required"`
}

// QuestionView is a question as shown to a student taking the assessment.
type QuestionView struct {
	ID           uint              `json:"id"`
	QuestionText string            `json:"questionText"`
	QuestionType string            `json:"questionType"`
	Options      models.StringList `json:"options"`
	Points       int               `json:"points"`
	OrderIndex   int               `json:"orderIndex"`
}

// Questions lists an active assessment's questions without their answers.
func (s *AssessmentService) Questions(ctx context.Context, caller auth.Caller, req GetQuestions) ([]QuestionView, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	d, err := s.loadDetail(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, apperr.Validation("assessment %d is not active", d.ID)
	}
	out := make([]QuestionView, 0, len(d.Questions))
	for _, q := range d.Questions {
		out = append(out, QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Options:      q.Options,
			Points:       q.Points,
			OrderIndex:   q.OrderIndex,
		})
	}
	return out, nil
}

type GetAssessmentResults struct {
	AssessmentID uint  `json:"assessmentId" validate:"required"`
	UserID       *uint `form:"userId"`
}

type AssessmentResultsSummary struct {
	AssessmentID uint                      `json:"assessmentId"`
	Attempts     int                       `json:"attempts"`
	AverageScore float64                   `json:"averageScore"`
	PassRate     float64                   `json:"passRate"`
	Ratings      []analytics.RatingBucket  `json:"ratings"`
	Results      []models.AssessmentResult `json:"results"`
}

// Results summarizes every attempt at an assessment. Students only see their own attempts.
func (s *AssessmentService) Results(ctx context.Context, caller auth.Caller, req GetAssessmentResults) (AssessmentResultsSummary, error) {
	if err := requireAuthenticated(caller); err != nil {
		return AssessmentResultsSummary{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	if ok, err := uow.Assessments.Exists(ctx, req.AssessmentID); err != nil {
		return AssessmentResultsSummary{}, apperr.Unexpected("failed to load assessment", err)
	} else if !ok {
		return AssessmentResultsSummary{}, apperr.NotFound("assessment %d not found", req.AssessmentID)
	}

	userID := req.UserID
	if !caller.CanAuthor() {
		userID = &caller.UserID
	}
	var (
		results []models.AssessmentResult
		err     error
	)
	if userID != nil {
		results, err = uow.AssessmentResults.ByUserAndAssessment(ctx, *userID, req.AssessmentID)
	} else {
		results, err = uow.AssessmentResults.ByAssessment(ctx, req.AssessmentID)
	}
	if err != nil {
		return AssessmentResultsSummary{}, apperr.Unexpected("failed to load results", err)
	}
	if results == nil {
		results = []models.AssessmentResult{}
	}
	return AssessmentResultsSummary{
		AssessmentID: req.AssessmentID,
		Attempts:     len(results),
		AverageScore: analytics.AverageScore(results),
		PassRate:     analytics.PassRate(results),
		Ratings:      analytics.RatingDistribution(results),
		Results:      results,
	}, nil
}

type GetUserResults struct {
	UserID uint `json:"userId" validate:"required"`
}

func (s *AssessmentService) UserResults(ctx context.Context, caller auth.Caller, req GetUserResults) ([]models.AssessmentResult, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return nil, err
	}
	out, err := s.deps.Store.UnitOfWork().AssessmentResults.ByUser(ctx, req.UserID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load results", err)
	}
	if out == nil {
		out = []models.AssessmentResult{}
	}
	return out, nil
}
