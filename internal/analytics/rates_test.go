package analytics

import (
	"math"
	"testing"
	"time"

	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestRatesWithNoDataAreZero(t *testing.T) {
	assert.Zero(t, Percent(3, 0))
	assert.Zero(t, CompletionRate(nil))
	assert.Zero(t, RetentionRate(nil, now))
	assert.Zero(t, AverageRevenuePerStudent(nil))
	assert.Zero(t, AverageScore(nil))
	assert.Zero(t, PassRate(nil))
	assert.Zero(t, AverageProgress(nil))
	assert.False(t, math.IsNaN(Percent(0, 0)))
}

func TestCompletionRate(t *testing.T) {
	enrollments := []models.UserLearningPath{
		{Status: models.StatusCompleted},
		{Status: models.StatusInProgress},
		{Status: models.StatusNotStarted},
		{Status: models.StatusCompleted},
	}
	assert.Equal(t, 50.0, CompletionRate(enrollments))
}

func TestRetentionRate(t *testing.T) {
	day := 24 * time.Hour
	enrollments := []models.UserLearningPath{
		{UserID: 1, LastAccessed: now.Add(-2 * day)},
		{UserID: 1, LastAccessed: now.Add(-3 * day)},
		{UserID: 2, LastAccessed: now.Add(-40 * day)},
		{UserID: 3, LastAccessed: now.Add(-45 * day)},
		{UserID: 4, LastAccessed: now.Add(-50 * day)},
		{UserID: 5, LastAccessed: now.Add(-90 * day)},
	}
	// one active now, three in the prior window
	assert.Equal(t, 33.33, RetentionRate(enrollments, now))
}

func TestRevenue(t *testing.T) {
	enrollments := []models.UserLearningPath{
		{UserID: 1, AmountPaid: 100, EnrolledAt: now},
		{UserID: 1, AmountPaid: 50, EnrolledAt: now.AddDate(0, -1, 0)},
		{UserID: 2, AmountPaid: 0, EnrolledAt: now.AddDate(0, -13, 0)},
	}
	assert.Equal(t, 150, Revenue(enrollments))
	assert.Equal(t, 75.0, AverageRevenuePerStudent(enrollments))

	months := MonthlyRevenue(enrollments, now, 12)
	require.Len(t, months, 12)
	assert.Equal(t, "2023-07", months[0].Month)
	assert.Equal(t, MonthlyAmount{Month: "2024-05", Revenue: 50, Enrollments: 1}, months[10])
	assert.Equal(t, MonthlyAmount{Month: "2024-06", Revenue: 100, Enrollments: 1}, months[11])
}

func TestRatingDistributionRoundsHalfToEven(t *testing.T) {
	done := now
	result := func(score int) models.AssessmentResult {
		return models.AssessmentResult{Score: score, MaxScore: 100, CompletedAt: &done}
	}
	results := []models.AssessmentResult{
		result(100), // 5
		result(90),  // 4.5 -> 4
		result(70),  // 3.5 -> 4
		result(50),  // 2.5 -> 2
		result(0),   // 0 stars counts as 1
		// not completed
		{Score: 80, MaxScore: 100},
	}
	buckets := RatingDistribution(results)
	require.Len(t, buckets, 5)
	assert.Equal(t, RatingBucket{Stars: 5, Count: 1, Percentage: 20}, buckets[0])
	assert.Equal(t, RatingBucket{Stars: 4, Count: 2, Percentage: 40}, buckets[1])
	assert.Equal(t, RatingBucket{Stars: 3, Count: 0, Percentage: 0}, buckets[2])
	assert.Equal(t, RatingBucket{Stars: 2, Count: 1, Percentage: 20}, buckets[3])
	assert.Equal(t, RatingBucket{Stars: 1, Count: 1, Percentage: 20}, buckets[4])
}

func TestDailyEnrollmentsFillsEveryDay(t *testing.T) {
	enrollments := []models.UserLearningPath{
		{EnrolledAt: now},
		{EnrolledAt: now.Add(-time.Hour)},
		{EnrolledAt: now.AddDate(0, 0, -2)},
	}
	out := DailyEnrollments(enrollments, now.AddDate(0, 0, -2), now)
	assert.Equal(t, []DailyCount{
		{Date: "2024-06-13", Count: 1},
		{Date: "2024-06-14", Count: 0},
		{Date: "2024-06-15", Count: 2},
	}, out)
}

func TestDailyCompletionsFillsEveryDay(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	progress := []models.UserProgress{
		{IsCompleted: true, CompletedAt: &now},
		{IsCompleted: true, CompletedAt: &yesterday},
		{IsCompleted: true, CompletedAt: &now},
		{IsCompleted: false, CompletedAt: &now},
		{IsCompleted: true},
	}
	out := DailyCompletions(progress, now.AddDate(0, 0, -2), now)
	assert.Equal(t, []DailyCount{
		{Date: "2024-06-13", Count: 0},
		{Date: "2024-06-14", Count: 1},
		{Date: "2024-06-15", Count: 2},
	}, out)
}

func TestDailyStatsGroupsByDay(t *testing.T) {
	d1 := now.AddDate(0, 0, -1)
	d2 := now
	progress := []models.UserProgress{
		{IsCompleted: true, CompletedAt: &d1, TimeSpentMinutes: 10},
		{IsCompleted: true, CompletedAt: &d2, TimeSpentMinutes: 5},
		{IsCompleted: false, TimeSpentMinutes: 99},
	}
	results := []models.AssessmentResult{{CompletedAt: &d2, TimeSpentMinutes: 20}}
	stats := DailyStats(progress, results, now.AddDate(0, 0, -7), now)
	assert.Equal(t, []DailyStat{
		{Date: "2024-06-14", ContentCompleted: 1, MinutesSpent: 10},
		{Date: "2024-06-15", ContentCompleted: 1, MinutesSpent: 25, AssessmentsTaken: 1},
	}, stats)
}
