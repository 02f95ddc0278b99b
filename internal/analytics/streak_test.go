package analytics

import (
	"testing"
	"time"

	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
)

func activity(kind string, daysAgo int, hour int) models.UserActivity {
	ts := time.Date(2024, 6, 15, hour, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return models.UserActivity{ActivityType: kind, Timestamp: ts}
}

func TestStreakEmpty(t *testing.T) {
	s := Streak(nil, now)
	assert.Equal(t, StreakInfo{}, s)
	assert.Zero(t, s.Days)
	assert.False(t, s.IsActive)
}

func TestStreakWithoutGapsEqualsDistinctDates(t *testing.T) {
	acts := []models.UserActivity{
		activity(models.ActivityContentCompleted, 0, 9),
		activity(models.ActivityAssessmentCompleted, 0, 18),
		activity(models.ActivityContentCompleted, 1, 10),
		activity(models.ActivityContentCompleted, 2, 8),
		activity(models.ActivityContentCompleted, 2, 23),
	}
	s := Streak(acts, now)
	assert.Equal(t, 3, s.Days)
	assert.True(t, s.IsActive)
	assert.Equal(t, "2024-06-13", s.StartDate.Format(time.DateOnly))
	assert.Equal(t, "2024-06-15", s.EndDate.Format(time.DateOnly))
}

func TestStreakStopsAtGap(t *testing.T) {
	acts := []models.UserActivity{
		activity(models.ActivityContentCompleted, 1, 9),
		activity(models.ActivityContentCompleted, 2, 9),
		activity(models.ActivityContentCompleted, 5, 9),
		activity(models.ActivityContentCompleted, 6, 9),
	}
	s := Streak(acts, now)
	assert.Equal(t, 2, s.Days)
	assert.False(t, s.IsActive)
}

func TestStreakIgnoresOtherActivityTypes(t *testing.T) {
	acts := []models.UserActivity{
		activity(models.ActivityLogin, 0, 9),
		activity(models.ActivityEnrolled, 1, 9),
		activity(models.ActivityContentCompleted, 3, 9),
	}
	s := Streak(acts, now)
	assert.Equal(t, 1, s.Days)
	assert.False(t, s.IsActive)
}

func TestLongestStreakFindsBestRun(t *testing.T) {
	assert.Zero(t, LongestStreak(nil))

	acts := []models.UserActivity{
		activity(models.ActivityContentCompleted, 0, 9),
		activity(models.ActivityContentCompleted, 4, 9),
		activity(models.ActivityAssessmentCompleted, 5, 9),
		activity(models.ActivityContentCompleted, 5, 20),
		activity(models.ActivityContentCompleted, 6, 9),
		activity(models.ActivityLogin, 7, 9),
		activity(models.ActivityContentCompleted, 9, 9),
	}
	assert.Equal(t, 3, LongestStreak(acts))
	assert.Equal(t, 1, Streak(acts, now).Days)
}
