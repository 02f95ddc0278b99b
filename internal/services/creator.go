package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"skillup-go/internal/analytics"
	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"
)

type CreatorService struct {
	deps Deps
}

// creatorPaths loads the caller's learning paths, or one of them when id is set.
func (s *CreatorService) creatorPaths(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, id *uint) ([]models.LearningPath, error) {
	if caller.Role != models.RoleContentCreator && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("content creator role required")
	}
	if id != nil {
		path, err := ownedPath(ctx, uow, caller, *id)
		if err != nil {
			return nil, err
		}
		return []models.LearningPath{*path}, nil
	}
	paths, err := uow.LearningPaths.ByCreator(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load learning paths", err)
	}
	return paths, nil
}

func pathIDs(paths []models.LearningPath) []uint {
	ids := make([]uint, len(paths))
	for i, p := range paths {
		ids[i] = p.ID
	}
	return ids
}

type GetCreatorDashboard struct{}

type PathSummary struct {
	LearningPathID uint    `json:"learningPathId"`
	Title          string  `json:"title"`
	Enrollments    int     `json:"enrollments"`
	Revenue        int     `json:"revenue"`
	CompletionRate float64 `json:"completionRate"`
}

type CreatorDashboard struct {
	TotalPaths       int                      `json:"totalPaths"`
	PublishedPaths   int                      `json:"publishedPaths"`
	TotalStudents    int                      `json:"totalStudents"`
	TotalEnrollments int                      `json:"totalEnrollments"`
	NewEnrollments   int                      `json:"newEnrollments"`
	TotalRevenue     int                      `json:"totalRevenue"`
	CompletionRate   float64                  `json:"completionRate"`
	AverageScore     float64                  `json:"averageScore"`
	Ratings          []analytics.RatingBucket `json:"ratings"`
	TopPaths         []PathSummary            `json:"topPaths"`
}

func (s *CreatorService) Dashboard(ctx context.Context, caller auth.Caller, req GetCreatorDashboard) (CreatorDashboard, error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, nil)
	if err != nil {
		return CreatorDashboard{}, err
	}
	ids := pathIDs(paths)
	enrollments, err := uow.UserLearningPaths.ByLearningPaths(ctx, ids)
	if err != nil {
		return CreatorDashboard{}, apperr.Unexpected("failed to load enrollments", err)
	}
	results, err := s.pathResults(ctx, uow, ids)
	if err != nil {
		return CreatorDashboard{}, err
	}

	now := s.deps.now()
	out := CreatorDashboard{
		TotalPaths:       len(paths),
		TotalStudents:    analytics.DistinctUsers(enrollments),
		TotalEnrollments: len(enrollments),
		NewEnrollments:   analytics.CountEnrolledSince(enrollments, now.Add(-analytics.RetentionWindow)),
		TotalRevenue:     analytics.Revenue(enrollments),
		CompletionRate:   analytics.CompletionRate(enrollments),
		AverageScore:     analytics.AverageScore(results),
		Ratings:          analytics.RatingDistribution(results),
		TopPaths:         summarize(paths, enrollments),
	}
	for _, p := range paths {
		if p.IsPublished {
			out.PublishedPaths++
		}
	}
	if len(out.TopPaths) > 5 {
		out.TopPaths = out.TopPaths[:5]
	}
	return out, nil
}

// summarize returns per-path figures ordered by enrollments, then revenue.
func summarize(paths []models.LearningPath, enrollments []models.UserLearningPath) []PathSummary {
	byPath := make(map[uint][]models.UserLearningPath, len(paths))
	for _, e := range enrollments {
		byPath[e.LearningPathID] = append(byPath[e.LearningPathID], e)
	}
	out := make([]PathSummary, 0, len(paths))
	for _, p := range paths {
		es := byPath[p.ID]
		out = append(out, PathSummary{
			LearningPathID: p.ID,
			Title:          p.Title,
			Enrollments:    len(es),
			Revenue:        analytics.Revenue(es),
			CompletionRate: analytics.CompletionRate(es),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Enrollments != out[j].Enrollments {
			return out[i].Enrollments > out[j].Enrollments
		}
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

func (s *CreatorService) pathResults(ctx context.Context, uow *repository.UnitOfWork, ids []uint) ([]models.AssessmentResult, error) {
	assessments, err := uow.Assessments.ByLearningPaths(ctx, ids)
	if err != nil {
		return nil, apperr.Unexpected("failed to load assessments", err)
	}
	aids := make([]uint, len(assessments))
	for i, a := range assessments {
		aids[i] = a.ID
	}
	results, err := uow.AssessmentResults.ByAssessments(ctx, aids)
	if err != nil {
		return nil, apperr.Unexpected("failed to load results", err)
	}
	return results, nil
}

type GetLearningPathAnalytics struct {
	LearningPathID uint `json:"learningPathId" validate:"required"`
}

type ContentStat struct {
	ContentID      uint    `json:"contentId"`
	Title          string  `json:"title"`
	Completions    int     `json:"completions"`
	CompletionRate float64 `json:"completionRate"`
	AverageMinutes float64 `json:"averageMinutes"`
}

type AssessmentStat struct {
	AssessmentID uint    `json:"assessmentId"`
	Title        string  `json:"title"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	PassRate     float64 `json:"passRate"`
}

type LearningPathAnalytics struct {
	LearningPathID   uint                     `json:"learningPathId"`
	Title            string                   `json:"title"`
	Enrollments      int                      `json:"enrollments"`
	ActiveStudents   int                      `json:"activeStudents"`
	CompletionRate   float64                  `json:"completionRate"`
	RetentionRate    float64                  `json:"retentionRate"`
	AverageProgress  float64                  `json:"averageProgress"`
	Revenue          int                      `json:"revenue"`
	DailyEnrollments []analytics.DailyCount   `json:"dailyEnrollments"`
	Contents         []ContentStat            `json:"contents"`
	Assessments      []AssessmentStat         `json:"assessments"`
	Ratings          []analytics.RatingBucket `json:"ratings"`
}

func (s *CreatorService) LearningPathAnalytics(ctx context.Context, caller auth.Caller, req GetLearningPathAnalytics) (LearningPathAnalytics, error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, &req.LearningPathID)
	if err != nil {
		return LearningPathAnalytics{}, err
	}
	path := paths[0]
	enrollments, err := uow.UserLearningPaths.ByLearningPath(ctx, path.ID)
	if err != nil {
		return LearningPathAnalytics{}, apperr.Unexpected("failed to load enrollments", err)
	}
	contents, err := uow.Contents.ByLearningPath(ctx, path.ID)
	if err != nil {
		return LearningPathAnalytics{}, apperr.Unexpected("failed to load content", err)
	}
	contentIDs := make([]uint, len(contents))
	for i, c := range contents {
		contentIDs[i] = c.ID
	}
	progress, err := uow.UserProgress.ByContents(ctx, contentIDs)
	if err != nil {
		return LearningPathAnalytics{}, apperr.Unexpected("failed to load progress", err)
	}
	assessments, err := uow.Assessments.ByLearningPaths(ctx, []uint{path.ID})
	if err != nil {
		return LearningPathAnalytics{}, apperr.Unexpected("failed to load assessments", err)
	}

	now := s.deps.now()
	out := LearningPathAnalytics{
		LearningPathID:   path.ID,
		Title:            path.Title,
		Enrollments:      len(enrollments),
		ActiveStudents:   analytics.ActiveUsers(enrollments, now.Add(-analytics.RetentionWindow), now),
		CompletionRate:   analytics.CompletionRate(enrollments),
		RetentionRate:    analytics.RetentionRate(enrollments, now),
		AverageProgress:  analytics.AverageProgress(enrollments),
		Revenue:          analytics.Revenue(enrollments),
		DailyEnrollments: analytics.DailyEnrollments(enrollments, now.AddDate(0, 0, -29), now),
		Contents:         make([]ContentStat, 0, len(contents)),
		Assessments:      make([]AssessmentStat, 0, len(assessments)),
	}

	byContent := make(map[uint][]models.UserProgress)
	for _, p := range progress {
		byContent[p.ContentID] = append(byContent[p.ContentID], p)
	}
	for _, c := range contents {
		completions, minutes := 0, 0
		for _, p := range byContent[c.ID] {
			if p.IsCompleted {
				completions++
				minutes += p.TimeSpentMinutes
			}
		}
		stat := ContentStat{
			ContentID:      c.ID,
			Title:          c.Title,
			Completions:    completions,
			CompletionRate: analytics.Percent(float64(completions), float64(len(enrollments))),
		}
		if completions > 0 {
			stat.AverageMinutes = analytics.Round2(float64(minutes) / float64(completions))
		}
		out.Contents = append(out.Contents, stat)
	}

	var all []models.AssessmentResult
	for _, a := range assessments {
		results, err := uow.AssessmentResults.ByAssessment(ctx, a.ID)
		if err != nil {
			return LearningPathAnalytics{}, apperr.Unexpected("failed to load results", err)
		}
		all = append(all, results...)
		out.Assessments = append(out.Assessments, AssessmentStat{
			AssessmentID: a.ID,
			Title:        a.Title,
			Attempts:     len(results),
			AverageScore: analytics.AverageScore(results),
			PassRate:     analytics.PassRate(results),
		})
	}
	out.Ratings = analytics.RatingDistribution(all)
	return out, nil
}

type GetEngagementAnalytics struct {
	LearningPathID *uint `form:"learningPathId"`
	Days           int   `form:"days" validate:"gte=0,lte=365"`
}

type EngagementAnalytics struct {
	ActiveStudents         int                    `json:"activeStudents"`
	TotalStudents          int                    `json:"totalStudents"`
	RetentionRate          float64                `json:"retentionRate"`
	AverageSessions        float64                `json:"averageSessions"`
	AverageMinutesPerUser  float64                `json:"averageMinutesPerUser"`
	AverageProgress        float64                `json:"averageProgress"`
	ContentCompletions     int                    `json:"contentCompletions"`
	DailyEnrollments       []analytics.DailyCount `json:"dailyEnrollments"`
	StatusDistribution     map[string]int         `json:"statusDistribution"`
	CompletionRate         float64                `json:"completionRate"`
	EnrollmentsInTimeframe int                    `json:"enrollmentsInTimeframe"`
}

func (s *CreatorService) EngagementAnalytics(ctx context.Context, caller auth.Caller, req GetEngagementAnalytics) (EngagementAnalytics, error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, req.LearningPathID)
	if err != nil {
		return EngagementAnalytics{}, err
	}
	ids := pathIDs(paths)
	enrollments, err := uow.UserLearningPaths.ByLearningPaths(ctx, ids)
	if err != nil {
		return EngagementAnalytics{}, apperr.Unexpected("failed to load enrollments", err)
	}
	contents, err := uow.Contents.ByLearningPaths(ctx, ids)
	if err != nil {
		return EngagementAnalytics{}, apperr.Unexpected("failed to load content", err)
	}
	contentIDs := make([]uint, len(contents))
	for i, c := range contents {
		contentIDs[i] = c.ID
	}
	progress, err := uow.UserProgress.ByContents(ctx, contentIDs)
	if err != nil {
		return EngagementAnalytics{}, apperr.Unexpected("failed to load progress", err)
	}

	days := req.Days
	if days == 0 {
		days = 30
	}
	now := s.deps.now()
	from := now.AddDate(0, 0, -(days - 1))
	out := EngagementAnalytics{
		ActiveStudents:         analytics.ActiveUsers(enrollments, now.Add(-analytics.RetentionWindow), now),
		TotalStudents:          analytics.DistinctUsers(enrollments),
		RetentionRate:          analytics.RetentionRate(enrollments, now),
		AverageProgress:        analytics.AverageProgress(enrollments),
		CompletionRate:         analytics.CompletionRate(enrollments),
		DailyEnrollments:       analytics.DailyEnrollments(enrollments, from, now),
		EnrollmentsInTimeframe: analytics.CountEnrolledSince(enrollments, truncateToDay(from)),
		StatusDistribution: map[string]int{
			string(models.StatusNotStarted): 0,
			string(models.StatusInProgress): 0,
			string(models.StatusCompleted):  0,
		},
	}
	sessions, minutes := 0, 0
	for _, e := range enrollments {
		sessions += e.SessionCount
		minutes += e.TotalMinutesSpent
		out.StatusDistribution[string(e.Status)]++
	}
	if len(enrollments) > 0 {
		out.AverageSessions = analytics.Round2(float64(sessions) / float64(len(enrollments)))
	}
	if out.TotalStudents > 0 {
		out.AverageMinutesPerUser = analytics.Round2(float64(minutes) / float64(out.TotalStudents))
	}
	for _, p := range progress {
		if p.IsCompleted {
			out.ContentCompletions++
		}
	}
	return out, nil
}

type GetRevenueAnalytics struct {
	Months int `form:"months" validate:"gte=0,lte=36"`
}

type RevenueAnalytics struct {
	TotalRevenue             int                       `json:"totalRevenue"`
	RevenueThisMonth         int                       `json:"revenueThisMonth"`
	AverageRevenuePerStudent float64                   `json:"averageRevenuePerStudent"`
	PaidEnrollments          int                       `json:"paidEnrollments"`
	Monthly                  []analytics.MonthlyAmount `json:"monthly"`
	ByPath                   []PathSummary             `json:"byPath"`
}

func (s *CreatorService) RevenueAnalytics(ctx context.Context, caller auth.Caller, req GetRevenueAnalytics) (RevenueAnalytics, error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, nil)
	if err != nil {
		return RevenueAnalytics{}, err
	}
	enrollments, err := uow.UserLearningPaths.ByLearningPaths(ctx, pathIDs(paths))
	if err != nil {
		return RevenueAnalytics{}, apperr.Unexpected("failed to load enrollments", err)
	}
	months := req.Months
	if months == 0 {
		months = 12
	}
	monthly := analytics.MonthlyRevenue(enrollments, s.deps.now(), months)
	out := RevenueAnalytics{
		TotalRevenue:             analytics.Revenue(enrollments),
		AverageRevenuePerStudent: analytics.AverageRevenuePerStudent(enrollments),
		Monthly:                  monthly,
		ByPath:                   summarize(paths, enrollments),
	}
	if len(monthly) > 0 {
		out.RevenueThisMonth = monthly[len(monthly)-1].Revenue
	}
	for _, e := range enrollments {
		if e.AmountPaid > 0 {
			out.PaidEnrollments++
		}
	}
	sort.SliceStable(out.ByPath, func(i, j int) bool { return out.ByPath[i].Revenue > out.ByPath[j].Revenue })
	return out, nil
}

type ListCreatorLearningPaths struct {
	Status   string `form:"status" validate:"omitempty,oneof=published draft"`
	Page     int    `form:"page" validate:"gte=0"`
	PageSize int    `form:"pageSize" validate:"gte=0,lte=100"`
}

type CreatorLearningPath struct {
	models.LearningPath
	EnrollmentCount int     `json:"enrollmentCount"`
	ResultCount     int     `json:"resultCount"`
	AverageScore    float64 `json:"averageScore"`
}

// LearningPaths pages through the caller's own paths with enrollment and score totals.
func (s *CreatorService) LearningPaths(ctx context.Context, caller auth.Caller, req ListCreatorLearningPaths) (PagedResult[CreatorLearningPath], error) {
	if caller.Role != models.RoleContentCreator && !caller.IsAdmin() {
		return PagedResult[CreatorLearningPath]{}, apperr.Unauthorized("content creator role required")
	}
	var published *bool
	if req.Status != "" {
		v := req.Status == "published"
		published = &v
	}
	paging := repository.Paging{Page: req.Page, PageSize: req.PageSize}
	uow := s.deps.Store.UnitOfWork()
	paths, total, err := uow.LearningPaths.ListByCreator(ctx, caller.UserID, published, paging)
	if err != nil {
		return PagedResult[CreatorLearningPath]{}, apperr.Unexpected("failed to list learning paths", err)
	}
	ids := pathIDs(paths)
	enrollments, err := uow.UserLearningPaths.ByLearningPaths(ctx, ids)
	if err != nil {
		return PagedResult[CreatorLearningPath]{}, apperr.Unexpected("failed to load enrollments", err)
	}
	assessments, err := uow.Assessments.ByLearningPaths(ctx, ids)
	if err != nil {
		return PagedResult[CreatorLearningPath]{}, apperr.Unexpected("failed to load assessments", err)
	}
	pathOf := make(map[uint]uint, len(assessments))
	aids := make([]uint, 0, len(assessments))
	for _, a := range assessments {
		if a.LearningPathID != nil {
			pathOf[a.ID] = *a.LearningPathID
			aids = append(aids, a.ID)
		}
	}
	results, err := uow.AssessmentResults.ByAssessments(ctx, aids)
	if err != nil {
		return PagedResult[CreatorLearningPath]{}, apperr.Unexpected("failed to load results", err)
	}

	enrolled := make(map[uint]int)
	for _, e := range enrollments {
		enrolled[e.LearningPathID]++
	}
	byPath := make(map[uint][]models.AssessmentResult)
	for _, r := range results {
		byPath[pathOf[r.AssessmentID]] = append(byPath[pathOf[r.AssessmentID]], r)
	}

	items := make([]CreatorLearningPath, len(paths))
	for i, p := range paths {
		items[i] = CreatorLearningPath{
			LearningPath:    p,
			EnrollmentCount: enrolled[p.ID],
			ResultCount:     len(byPath[p.ID]),
			AverageScore:    analytics.AverageScore(byPath[p.ID]),
		}
	}
	return NewPagedResult(items, total, paging), nil
}

type ListCreatorStudents struct {
	LearningPathID *uint  `form:"learningPathId"`
	Search         string `form:"search" validate:"max=100"`
	Page           int    `form:"page" validate:"gte=0"`
	PageSize       int    `form:"pageSize" validate:"gte=0,lte=100"`
}

type CreatorStudent struct {
	EnrollmentID       uint                    `json:"enrollmentId"`
	UserID             uint                    `json:"userId"`
	FirstName          string                  `json:"firstName"`
	LastName           string                  `json:"lastName"`
	Email              string                  `json:"email"`
	IsActive           bool                    `json:"isActive"`
	LearningPathID     uint                    `json:"learningPathId"`
	LearningPathTitle  string                  `json:"learningPathTitle"`
	EnrolledAt         time.Time               `json:"enrolledAt"`
	LastAccessed       time.Time               `json:"lastAccessed"`
	ProgressPercentage int                     `json:"progressPercentage"`
	Status             models.EnrollmentStatus `json:"status"`
}

// Students pages through enrollments in the caller's paths, or in one owned path when
// LearningPathID is set.
func (s *CreatorService) Students(ctx context.Context, caller auth.Caller, req ListCreatorStudents) (PagedResult[CreatorStudent], error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, req.LearningPathID)
	if err != nil {
		return PagedResult[CreatorStudent]{}, err
	}
	paging := repository.Paging{Page: req.Page, PageSize: req.PageSize}
	enrollments, total, err := uow.UserLearningPaths.ListStudents(ctx, repository.StudentFilter{
		LearningPathIDs: pathIDs(paths),
		Search:          strings.TrimSpace(req.Search),
		Paging:          paging,
	})
	if err != nil {
		return PagedResult[CreatorStudent]{}, apperr.Unexpected("failed to list students", err)
	}

	userIDs := make([]uint, len(enrollments))
	for i, e := range enrollments {
		userIDs[i] = e.UserID
	}
	users, err := uow.Users.ByIDs(ctx, userIDs)
	if err != nil {
		return PagedResult[CreatorStudent]{}, apperr.Unexpected("failed to load students", err)
	}
	userByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	titles := make(map[uint]string, len(paths))
	for _, p := range paths {
		titles[p.ID] = p.Title
	}

	items := make([]CreatorStudent, len(enrollments))
	for i, e := range enrollments {
		u := userByID[e.UserID]
		items[i] = CreatorStudent{
			EnrollmentID:       e.ID,
			UserID:             e.UserID,
			FirstName:          u.FirstName,
			LastName:           u.LastName,
			Email:              u.Email,
			IsActive:           u.IsActive,
			LearningPathID:     e.LearningPathID,
			LearningPathTitle:  titles[e.LearningPathID],
			EnrolledAt:         e.EnrolledAt,
			LastAccessed:       e.LastAccessed,
			ProgressPercentage: e.ProgressPercentage,
			Status:             e.Status,
		}
	}
	return NewPagedResult(items, total, paging), nil
}

type GetStudentProgress struct {
	LearningPathID uint `json:"learningPathId" validate:"required"`
	StudentID      uint `json:"studentId" validate:"required"`
}

type StudentContentProgress struct {
	ContentID        uint       `json:"contentId"`
	Title            string     `json:"title"`
	IsCompleted      bool       `json:"isCompleted"`
	TimeSpentMinutes int        `json:"timeSpentMinutes"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

type StudentProgress struct {
	StudentID          uint                      `json:"studentId"`
	FirstName          string                    `json:"firstName"`
	LastName           string                    `json:"lastName"`
	Email              string                    `json:"email"`
	LearningPathID     uint                      `json:"learningPathId"`
	LearningPathTitle  string                    `json:"learningPathTitle"`
	Status             models.EnrollmentStatus   `json:"status"`
	ProgressPercentage int                       `json:"progressPercentage"`
	EnrolledAt         time.Time                 `json:"enrolledAt"`
	LastAccessed       time.Time                 `json:"lastAccessed"`
	TotalMinutes       int                       `json:"totalMinutes"`
	Contents           []StudentContentProgress  `json:"contents"`
	Results            []models.AssessmentResult `json:"results"`
}

// StudentProgress shows one student's content progress and assessment results in an owned path.
func (s *CreatorService) StudentProgress(ctx context.Context, caller auth.Caller, req GetStudentProgress) (StudentProgress, error) {
	uow := s.deps.Store.UnitOfWork()
	paths, err := s.creatorPaths(ctx, uow, caller, &req.LearningPathID)
	if err != nil {
		return StudentProgress{}, err
	}
	path := paths[0]
	enrollment, err := uow.UserLearningPaths.Get(ctx, req.StudentID, path.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return StudentProgress{}, apperr.NotFound("student %d is not enrolled in learning path %d", req.StudentID, path.ID)
	}
	if err != nil {
		return StudentProgress{}, apperr.Unexpected("failed to load enrollment", err)
	}
	student, err := uow.Users.GetByID(ctx, req.StudentID)
	if err != nil {
		return StudentProgress{}, lookupErr(err, "user", req.StudentID)
	}
	contents, err := uow.Contents.ByLearningPath(ctx, path.ID)
	if err != nil {
		return StudentProgress{}, apperr.Unexpected("failed to load content", err)
	}
	progress, err := uow.UserProgress.ByUserAndLearningPath(ctx, req.StudentID, path.ID)
	if err != nil {
		return StudentProgress{}, apperr.Unexpected("failed to load progress", err)
	}
	assessments, err := uow.Assessments.ByLearningPaths(ctx, []uint{path.ID})
	if err != nil {
		return StudentProgress{}, apperr.Unexpected("failed to load assessments", err)
	}
	inPath := make(map[uint]bool, len(assessments))
	for _, a := range assessments {
		inPath[a.ID] = true
	}
	all, err := uow.AssessmentResults.ByUser(ctx, req.StudentID)
	if err != nil {
		return StudentProgress{}, apperr.Unexpected("failed to load results", err)
	}

	out := StudentProgress{
		StudentID:          student.ID,
		FirstName:          student.FirstName,
		LastName:           student.LastName,
		Email:              student.Email,
		LearningPathID:     path.ID,
		LearningPathTitle:  path.Title,
		Status:             enrollment.Status,
		ProgressPercentage: enrollment.ProgressPercentage,
		EnrolledAt:         enrollment.EnrolledAt,
		LastAccessed:       enrollment.LastAccessed,
		Contents:           make([]StudentContentProgress, len(contents)),
		Results:            []models.AssessmentResult{},
	}
	byContent := make(map[uint]models.UserProgress, len(progress))
	for _, p := range progress {
		byContent[p.ContentID] = p
		out.TotalMinutes += p.TimeSpentMinutes
	}
	for i, c := range contents {
		p := byContent[c.ID]
		out.Contents[i] = StudentContentProgress{
			ContentID:        c.ID,
			Title:            c.Title,
			IsCompleted:      p.IsCompleted,
			TimeSpentMinutes: p.TimeSpentMinutes,
			CompletedAt:      p.CompletedAt,
		}
	}
	for _, r := range all {
		if inPath[r.AssessmentID] {
			out.Results = append(out.Results, r)
		}
	}
	return out, nil
}
