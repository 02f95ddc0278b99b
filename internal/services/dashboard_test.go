package services

import (
	"context"
	"testing"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/mediator"
	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// learner enrolls a student in a two-lesson Programming path and a one-lesson Design path,
// then completes the whole Programming path today.
func learner(t *testing.T, f *fixture) (*models.User, auth.Caller, *models.LearningPath, *models.LearningPath) {
	t.Helper()
	ctx := context.Background()
	creator, _ := f.user(t, "creator@example.com", models.RoleContentCreator)
	u, caller := f.user(t, "student@example.com", models.RoleStudent)

	programming, lessons := f.path(t, creator.ID, 0, 2)
	design, _ := f.path(t, creator.ID, 0, 1)
	require.NoError(t, f.store.DB().Model(design).Updates(map[string]interface{}{"category": "Design", "title": "Visual Design"}).Error)

	for _, p := range []*models.LearningPath{programming, design} {
		_, err := f.svc.LearningPaths.Enroll(ctx, caller, Enroll{LearningPathID: p.ID, UserID: u.ID})
		require.NoError(t, err)
	}
	_, err := f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: lessons[0].ID, UserID: u.ID, TimeSpentMinutes: 10})
	require.NoError(t, err)
	_, err = f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: lessons[1].ID, UserID: u.ID, TimeSpentMinutes: 5})
	require.NoError(t, err)
	return u, caller, programming, design
}

func TestUserStatisticsTracksStreaksAndCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, caller, _, _ := learner(t, f)

	// Three earlier days in a row, separated from today by a gap.
	for _, daysAgo := range []int{3, 4, 5} {
		a := models.UserActivity{UserID: u.ID, ActivityType: models.ActivityContentCompleted, Timestamp: fixedNow.AddDate(0, 0, -daysAgo)}
		require.NoError(t, f.store.DB().Create(&a).Error)
	}
	a, _ := f.assessment(t, 5, 10)
	completed := fixedNow
	result := models.AssessmentResult{AssessmentID: a.ID, UserID: u.ID, Score: 8, MaxScore: 10, IsPassed: true, CompletedAt: &completed}
	require.NoError(t, f.store.DB().Create(&result).Error)

	stats, err := f.svc.Dashboard.UserStatistics(ctx, caller, GetUserStatistics{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLearningPaths)
	assert.Equal(t, 1, stats.CompletedLearningPaths)
	assert.Equal(t, 15, stats.TotalMinutes)
	assert.Equal(t, 1, stats.TotalAssessments)
	assert.Equal(t, 1, stats.PassedAssessments)
	assert.InDelta(t, 80.0, stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)

	require.Len(t, stats.CategoryProgress, 2)
	assert.Equal(t, CategoryProgress{Category: "Design", TotalContent: 1}, stats.CategoryProgress[0])
	assert.Equal(t, CategoryProgress{Category: "Programming", TotalContent: 2, CompletedContent: 2, CompletionRate: 100, MinutesSpent: 15}, stats.CategoryProgress[1])

	_, other := f.user(t, "other@example.com", models.RoleStudent)
	_, err = f.svc.Dashboard.UserStatistics(ctx, other, GetUserStatistics{UserID: u.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestLearningProgressPerPath(t *testing.T) {
	f := newFixture(t)
	u, caller, programming, design := learner(t, f)

	progress, err := f.svc.Dashboard.LearningProgress(context.Background(), caller, GetLearningProgress{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TotalLearningPaths)
	assert.Equal(t, 1, progress.CompletedLearningPaths)
	assert.Equal(t, 0, progress.InProgressLearningPaths)
	assert.InDelta(t, 50.0, progress.OverallProgress, 0.001)

	byPath := make(map[uint]PathProgress)
	for _, p := range progress.Paths {
		byPath[p.LearningPathID] = p
	}
	require.Len(t, byPath, 2)
	assert.Equal(t, "Concurrency in Go", byPath[programming.ID].Title)
	assert.Equal(t, 100, byPath[programming.ID].Progress)
	assert.Equal(t, 15, byPath[programming.ID].MinutesSpent)
	assert.Equal(t, models.StatusCompleted, byPath[programming.ID].Status)
	assert.Equal(t, "Visual Design", byPath[design.ID].Title)
	assert.Equal(t, 0, byPath[design.ID].MinutesSpent)
	assert.Equal(t, models.StatusNotStarted, byPath[design.ID].Status)
}

func TestLearningCalendarFillsMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, caller, _, _ := learner(t, f)

	june, err := f.svc.Dashboard.LearningCalendar(ctx, caller, GetLearningCalendar{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, 2024, june.Year)
	assert.Equal(t, 6, june.Month)
	require.Len(t, june.Days, 30)
	assert.Equal(t, "2024-06-01", june.Days[0].Date)
	assert.Equal(t, "2024-06-15", june.Days[14].Date)
	assert.Equal(t, 2, june.Days[14].Count)
	assert.Equal(t, 1, june.Streak.Days)

	may, err := f.svc.Dashboard.LearningCalendar(ctx, caller, GetLearningCalendar{UserID: u.ID, Year: 2024, Month: 5})
	require.NoError(t, err)
	require.Len(t, may.Days, 31)
	for _, d := range may.Days {
		assert.Zero(t, d.Count, d.Date)
	}

	_, err = mediator.Send[GetLearningCalendar, LearningCalendar](ctx, f.med, caller, GetLearningCalendar{UserID: u.ID, Month: 13})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
