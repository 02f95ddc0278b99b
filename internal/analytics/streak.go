package analytics

import (
	"sort"
	"time"

	"skillup-go/internal/models"
)

type StreakInfo struct {
	Days      int        `json:"days"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsActive  bool       `json:"isActive"`
}

// countsTowardStreak reports whether an activity type extends a streak.
func countsTowardStreak(activityType string) bool {
	return activityType == models.ActivityContentCompleted || activityType == models.ActivityAssessmentCompleted
}

// streakDays returns the distinct UTC days with qualifying activity, newest first.
func streakDays(activities []models.UserActivity) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, a := range activities {
		if !countsTowardStreak(a.ActivityType) {
			continue
		}
		d := truncateDay(a.Timestamp)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// Streak returns the run of consecutive UTC days ending at the most recent qualifying activity.
// Several activities on one day count once. The streak is active when it ends today.
func Streak(activities []models.UserActivity, today time.Time) StreakInfo {
	days := streakDays(activities)
	if len(days) == 0 {
		return StreakInfo{}
	}

	end := days[0]
	start := end
	count := 1
	for i := 1; i < len(days); i++ {
		if start.Sub(days[i]) != 24*time.Hour {
			break
		}
		start = days[i]
		count++
	}
	return StreakInfo{
		Days:      count,
		StartDate: &start,
		EndDate:   &end,
		IsActive:  end.Equal(truncateDay(today)),
	}
}

// LongestStreak returns the longest run of consecutive UTC days with qualifying activity.
func LongestStreak(activities []models.UserActivity) int {
	days := streakDays(activities)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
