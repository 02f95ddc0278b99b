package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"skillup-go/internal/analytics"
	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"
)

type DashboardService struct {
	deps Deps
}

type GetDashboardOverview struct {
	UserID uint `json:"userId" validate:"required"`
}

type DashboardOverview struct {
	EnrolledPaths     int     `json:"enrolledPaths"`
	CompletedPaths    int     `json:"completedPaths"`
	InProgressPaths   int     `json:"inProgressPaths"`
	CompletionRate    float64 `json:"completionRate"`
	AverageProgress   float64 `json:"averageProgress"`
	TotalMinutes      int     `json:"totalMinutes"`
	ContentCompleted  int     `json:"contentCompleted"`
	AssessmentsTaken  int     `json:"assessmentsTaken"`
	AssessmentsPassed int     `json:"assessmentsPassed"`
	AverageScore      float64 `json:"averageScore"`
	CurrentStreak     int     `json:"currentStreak"`
}

func (s *DashboardService) Overview(ctx context.Context, caller auth.Caller, req GetDashboardOverview) (DashboardOverview, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return DashboardOverview{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	enrollments, err := uow.UserLearningPaths.ByUser(ctx, req.UserID)
	if err != nil {
		return DashboardOverview{}, apperr.Unexpected("failed to load enrollments", err)
	}
	progress, err := uow.UserProgress.ByUser(ctx, req.UserID)
	if err != nil {
		return DashboardOverview{}, apperr.Unexpected("failed to load progress", err)
	}
	results, err := uow.AssessmentResults.ByUser(ctx, req.UserID)
	if err != nil {
		return DashboardOverview{}, apperr.Unexpected("failed to load results", err)
	}
	activities, err := uow.Activities.ByUser(ctx, req.UserID)
	if err != nil {
		return DashboardOverview{}, apperr.Unexpected("failed to load activity", err)
	}

	out := DashboardOverview{
		EnrolledPaths:   len(enrollments),
		CompletionRate:  analytics.CompletionRate(enrollments),
		AverageProgress: analytics.AverageProgress(enrollments),
		AverageScore:    analytics.AverageScore(results),
		CurrentStreak:   analytics.Streak(activities, s.deps.now()).Days,
	}
	for _, e := range enrollments {
		switch e.Status {
		case models.StatusCompleted:
			out.CompletedPaths++
		case models.StatusInProgress:
			out.InProgressPaths++
		}
		out.TotalMinutes += e.TotalMinutesSpent
	}
	for _, p := range progress {
		if p.IsCompleted {
			out.ContentCompleted++
		}
	}
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		out.AssessmentsTaken++
		if r.IsPassed {
			out.AssessmentsPassed++
		}
	}
	return out, nil
}

type GetLearningStatistics struct {
	UserID uint   `json:"userId" validate:"required"`
	Period string `json:"period" validate:"omitempty,oneof=weekly monthly yearly"`
}

type LearningStatistics struct {
	Period           string                `json:"period"`
	From             time.Time             `json:"from"`
	To               time.Time             `json:"to"`
	ContentCompleted int                   `json:"contentCompleted"`
	AssessmentsTaken int                   `json:"assessmentsTaken"`
	MinutesSpent     int                   `json:"minutesSpent"`
	ActiveDays       int                   `json:"activeDays"`
	Daily            []analytics.DailyStat `json:"daily"`
}

// periodStart returns the beginning of a weekly, monthly or yearly window ending at now.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "monthly":
		return now.AddDate(0, -1, 0)
	case "yearly":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

func (s *DashboardService) LearningStatistics(ctx context.Context, caller auth.Caller, req GetLearningStatistics) (LearningStatistics, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return LearningStatistics{}, err
	}
	period := req.Period
	if period == "" {
		period = "weekly"
	}
	now := s.deps.now()
	from := periodStart(period, now)

	uow := s.deps.Store.UnitOfWork()
	progress, err := uow.UserProgress.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningStatistics{}, apperr.Unexpected("failed to load progress", err)
	}
	results, err := uow.AssessmentResults.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningStatistics{}, apperr.Unexpected("failed to load results", err)
	}

	daily := analytics.DailyStats(progress, results, from, now)
	out := LearningStatistics{Period: period, From: from, To: now, Daily: daily, ActiveDays: len(daily)}
	for _, d := range daily {
		out.ContentCompleted += d.ContentCompleted
		out.AssessmentsTaken += d.AssessmentsTaken
		out.MinutesSpent += d.MinutesSpent
	}
	return out, nil
}

type GetStudyStreak struct {
	UserID uint `json:"userId" validate:"required"`
}

func (s *DashboardService) StudyStreak(ctx context.Context, caller auth.Caller, req GetStudyStreak) (analytics.StreakInfo, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return analytics.StreakInfo{}, err
	}
	activities, err := s.deps.Store.UnitOfWork().Activities.ByUser(ctx, req.UserID)
	if err != nil {
		return analytics.StreakInfo{}, apperr.Unexpected("failed to load activity", err)
	}
	return analytics.Streak(activities, s.deps.now()), nil
}

type GetRecentActivities struct {
	UserID uint `json:"userId" validate:"required"`
	Limit  int  `json:"limit" validate:"gte=0,lte=50"`
}

func (s *DashboardService) RecentActivities(ctx context.Context, caller auth.Caller, req GetRecentActivities) ([]models.UserActivity, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = 10
	}
	out, err := s.deps.Store.UnitOfWork().Activities.Recent(ctx, req.UserID, limit)
	if err != nil {
		return nil, apperr.Unexpected("failed to load activity", err)
	}
	return nonNil(out), nil
}

type GetUserStatistics struct {
	UserID uint `json:"userId" validate:"required"`
}

type CategoryProgress struct {
	Category         string  `json:"category"`
	TotalContent     int     `json:"totalContent"`
	CompletedContent int     `json:"completedContent"`
	CompletionRate   float64 `json:"completionRate"`
	MinutesSpent     int     `json:"minutesSpent"`
}

type UserStatistics struct {
	TotalMinutes           int                `json:"totalMinutes"`
	TotalLearningPaths     int                `json:"totalLearningPaths"`
	CompletedLearningPaths int                `json:"completedLearningPaths"`
	TotalAssessments       int                `json:"totalAssessments"`
	PassedAssessments      int                `json:"passedAssessments"`
	AverageScore           float64            `json:"averageScore"`
	LastLogin              *time.Time         `json:"lastLogin,omitempty"`
	CurrentStreak          int                `json:"currentStreak"`
	LongestStreak          int                `json:"longestStreak"`
	CategoryProgress       []CategoryProgress `json:"categoryProgress"`
}

// UserStatistics summarizes a user's learning history, including the current and longest streaks
// and content completion per category of the paths the user is enrolled in.
func (s *DashboardService) UserStatistics(ctx context.Context, caller auth.Caller, req GetUserStatistics) (UserStatistics, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return UserStatistics{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	user, err := uow.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return UserStatistics{}, lookupErr(err, "user", req.UserID)
	}
	enrollments, err := uow.UserLearningPaths.ByUser(ctx, req.UserID)
	if err != nil {
		return UserStatistics{}, apperr.Unexpected("failed to load enrollments", err)
	}
	progress, err := uow.UserProgress.ByUser(ctx, req.UserID)
	if err != nil {
		return UserStatistics{}, apperr.Unexpected("failed to load progress", err)
	}
	results, err := uow.AssessmentResults.ByUser(ctx, req.UserID)
	if err != nil {
		return UserStatistics{}, apperr.Unexpected("failed to load results", err)
	}
	activities, err := uow.Activities.ByUser(ctx, req.UserID)
	if err != nil {
		return UserStatistics{}, apperr.Unexpected("failed to load activity", err)
	}

	out := UserStatistics{
		TotalLearningPaths: len(enrollments),
		AverageScore:       analytics.AverageScore(results),
		LastLogin:          user.LastLoginAt,
		CurrentStreak:      analytics.Streak(activities, s.deps.now()).Days,
		LongestStreak:      analytics.LongestStreak(activities),
	}
	for _, e := range enrollments {
		if e.Status == models.StatusCompleted {
			out.CompletedLearningPaths++
		}
	}
	for _, p := range progress {
		out.TotalMinutes += p.TimeSpentMinutes
	}
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		out.TotalAssessments++
		if r.IsPassed {
			out.PassedAssessments++
		}
	}

	out.CategoryProgress, err = s.categoryProgress(ctx, uow, enrollments, progress)
	if err != nil {
		return UserStatistics{}, err
	}
	return out, nil
}

func (s *DashboardService) categoryProgress(ctx context.Context, uow *repository.UnitOfWork, enrollments []models.UserLearningPath, progress []models.UserProgress) ([]CategoryProgress, error) {
	ids := make([]uint, len(enrollments))
	for i, e := range enrollments {
		ids[i] = e.LearningPathID
	}
	if len(ids) == 0 {
		return []CategoryProgress{}, nil
	}
	paths, err := uow.LearningPaths.Find(ctx, "id IN ?", ids)
	if err != nil {
		return nil, apperr.Unexpected("failed to load learning paths", err)
	}
	contents, err := uow.Contents.ByLearningPaths(ctx, ids)
	if err != nil {
		return nil, apperr.Unexpected("failed to load content", err)
	}

	category := make(map[uint]string, len(paths))
	for _, p := range paths {
		category[p.ID] = p.Category
	}
	contentCategory := make(map[uint]string, len(contents))
	byCategory := make(map[string]*CategoryProgress)
	get := func(name string) *CategoryProgress {
		c, ok := byCategory[name]
		if !ok {
			c = &CategoryProgress{Category: name}
			byCategory[name] = c
		}
		return c
	}
	for _, c := range contents {
		name := category[c.LearningPathID]
		contentCategory[c.ID] = name
		get(name).TotalContent++
	}
	for _, p := range progress {
		name, ok := contentCategory[p.ContentID]
		if !ok {
			continue
		}
		c := get(name)
		c.MinutesSpent += p.TimeSpentMinutes
		if p.IsCompleted {
			c.CompletedContent++
		}
	}

	out := make([]CategoryProgress, 0, len(byCategory))
	for _, c := range byCategory {
		c.CompletionRate = analytics.Percent(float64(c.CompletedContent), float64(c.TotalContent))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type GetLearningProgress struct {
	UserID uint `json:"userId" validate:"required"`
}

type PathProgress struct {
	LearningPathID uint                    `json:"learningPathId"`
	Title          string                  `json:"title"`
	Status         models.EnrollmentStatus `json:"status"`
	Progress       int                     `json:"progress"`
	MinutesSpent   int                     `json:"minutesSpent"`
	LastAccessed   time.Time               `json:"lastAccessed"`
}

type LearningProgress struct {
	TotalLearningPaths      int            `json:"totalLearningPaths"`
	CompletedLearningPaths  int            `json:"completedLearningPaths"`
	InProgressLearningPaths int            `json:"inProgressLearningPaths"`
	OverallProgress         float64        `json:"overallProgress"`
	Paths                   []PathProgress `json:"paths"`
}

// LearningProgress reports progress and time spent per enrolled path.
func (s *DashboardService) LearningProgress(ctx context.Context, caller auth.Caller, req GetLearningProgress) (LearningProgress, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return LearningProgress{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	enrollments, err := uow.UserLearningPaths.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningProgress{}, apperr.Unexpected("failed to load enrollments", err)
	}
	progress, err := uow.UserProgress.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningProgress{}, apperr.Unexpected("failed to load progress", err)
	}
	minutes := make(map[uint]int)
	for _, p := range progress {
		minutes[p.LearningPathID] += p.TimeSpentMinutes
	}

	out := LearningProgress{
		TotalLearningPaths: len(enrollments),
		OverallProgress:    analytics.AverageProgress(enrollments),
		Paths:              make([]PathProgress, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		switch e.Status {
		case models.StatusCompleted:
			out.CompletedLearningPaths++
		case models.StatusInProgress:
			out.InProgressLearningPaths++
		}
		title := ""
		if path, err := uow.LearningPaths.GetByID(ctx, e.LearningPathID); err == nil {
			title = path.Title
		} else if !errors.Is(err, repository.ErrNotFound) {
			return LearningProgress{}, apperr.Unexpected("failed to load learning path", err)
		}
		out.Paths = append(out.Paths, PathProgress{
			LearningPathID: e.LearningPathID,
			Title:          title,
			Status:         e.Status,
			Progress:       e.ProgressPercentage,
			MinutesSpent:   minutes[e.LearningPathID],
			LastAccessed:   e.LastAccessed,
		})
	}
	return out, nil
}

type GetLearningCalendar struct {
	UserID uint `json:"userId" validate:"required"`
	Year   int  `form:"year" validate:"omitempty,gte=2000,lte=9999"`
	Month  int  `form:"month" validate:"omitempty,gte=1,lte=12"`
}

type LearningCalendar struct {
	Year   int                    `json:"year"`
	Month  int                    `json:"month"`
	Days   []analytics.DailyCount `json:"days"`
	Streak analytics.StreakInfo   `json:"streak"`
}

// LearningCalendar returns completed content per day for one month, the current month by default.
func (s *DashboardService) LearningCalendar(ctx context.Context, caller auth.Caller, req GetLearningCalendar) (LearningCalendar, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return LearningCalendar{}, err
	}
	now := s.deps.now()
	year, month := now.Year(), int(now.Month())
	if req.Year != 0 {
		year = req.Year
	}
	if req.Month != 0 {
		month = req.Month
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	uow := s.deps.Store.UnitOfWork()
	progress, err := uow.UserProgress.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningCalendar{}, apperr.Unexpected("failed to load progress", err)
	}
	activities, err := uow.Activities.ByUser(ctx, req.UserID)
	if err != nil {
		return LearningCalendar{}, apperr.Unexpected("failed to load activity", err)
	}
	return LearningCalendar{
		Year:   year,
		Month:  month,
		Days:   analytics.DailyCompletions(progress, first, last),
		Streak: analytics.Streak(activities, now),
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
