// Package analytics aggregates already-loaded rows into dashboard figures.
// Every rate returns 0 when its denominator is 0.
package analytics

import (
	"math"
	"sort"
	"time"

	"skillup-go/internal/models"
)

// RetentionWindow is the length of the current and prior activity windows.
const RetentionWindow = 30 * 24 * time.Hour

// Percent returns part/total*100 rounded to two decimals, or 0 when total is 0.
func Percent(part, total float64) float64 {
	if total == 0 || math.IsNaN(part) || math.IsNaN(total) {
		return 0
	}
	return Round2(part / total * 100)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompletionRate is the share of enrollments whose status is Completed.
func CompletionRate(enrollments []models.UserLearningPath) float64 {
	completed := 0
	for _, e := range enrollments {
		if e.Status == models.StatusCompleted {
			completed++
		}
	}
	return Percent(float64(completed), float64(len(enrollments)))
}

// ActiveUsers counts distinct users whose enrollment was accessed in [from, to).
func ActiveUsers(enrollments []models.UserLearningPath, from, to time.Time) int {
	seen := make(map[uint]struct{})
	for _, e := range enrollments {
		if !e.LastAccessed.Before(from) && e.LastAccessed.Before(to) {
			seen[e.UserID] = struct{}{}
		}
	}
	return len(seen)
}

// RetentionRate compares users active in the last window with users active in the window before it.
func RetentionRate(enrollments []models.UserLearningPath, now time.Time) float64 {
	current := ActiveUsers(enrollments, now.Add(-RetentionWindow), now.Add(time.Nanosecond))
	prior := ActiveUsers(enrollments, now.Add(-2*RetentionWindow), now.Add(-RetentionWindow))
	return Percent(float64(current), float64(prior))
}

// DistinctUsers counts the distinct students across enrollments.
func DistinctUsers(enrollments []models.UserLearningPath) int {
	seen := make(map[uint]struct{}, len(enrollments))
	for _, e := range enrollments {
		seen[e.UserID] = struct{}{}
	}
	return len(seen)
}

// CountEnrolledSince counts enrollments created at or after from.
func CountEnrolledSince(enrollments []models.UserLearningPath, from time.Time) int {
	n := 0
	for _, e := range enrollments {
		if !e.EnrolledAt.Before(from) {
			n++
		}
	}
	return n
}

// AverageProgress is the mean progress percentage across enrollments.
func AverageProgress(enrollments []models.UserLearningPath) float64 {
	total := 0
	for _, e := range enrollments {
		total += e.ProgressPercentage
	}
	if len(enrollments) == 0 {
		return 0
	}
	return Round2(float64(total) / float64(len(enrollments)))
}

// ScorePercent normalizes an attempt's score to 0..100.
func ScorePercent(r models.AssessmentResult) float64 {
	return Percent(float64(r.Score), float64(r.MaxScore))
}

// AverageScore is the mean percentage score of completed attempts.
func AverageScore(results []models.AssessmentResult) float64 {
	sum, n := 0.0, 0
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		sum += ScorePercent(r)
		n++
	}
	if n == 0 {
		return 0
	}
	return Round2(sum / float64(n))
}

// PassRate is the share of completed attempts that passed.
func PassRate(results []models.AssessmentResult) float64 {
	passed, n := 0, 0
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		n++
		if r.IsPassed {
			passed++
		}
	}
	return Percent(float64(passed), float64(n))
}

type RatingBucket struct {
	Stars      int     `json:"stars"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RatingDistribution buckets completed attempts into 1..5 stars, star = round-half-even(score%/20).
// Buckets are returned from 5 stars down to 1. Scores of 10% or less round to 0 stars and are
// counted in the 1-star bucket, so every completed attempt lands in some bucket.
func RatingDistribution(results []models.AssessmentResult) []RatingBucket {
	counts := make(map[int]int, 5)
	total := 0
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		counts[Stars(ScorePercent(r))]++
		total++
	}
	out := make([]RatingBucket, 0, 5)
	for s := 5; s >= 1; s-- {
		out = append(out, RatingBucket{
			Stars:      s,
			Count:      counts[s],
			Percentage: Percent(float64(counts[s]), float64(total)),
		})
	}
	return out
}

// Stars converts a percentage score into a 1..5 rating.
func Stars(percent float64) int {
	s := int(math.RoundToEven(percent / 20.0))
	if s < 1 {
		return 1
	}
	if s > 5 {
		return 5
	}
	return s
}

// Revenue sums the amount paid across enrollments.
func Revenue(enrollments []models.UserLearningPath) int {
	total := 0
	for _, e := range enrollments {
		total += e.AmountPaid
	}
	return total
}

// AverageRevenuePerStudent divides revenue by the number of distinct enrolled students.
func AverageRevenuePerStudent(enrollments []models.UserLearningPath) float64 {
	students := DistinctUsers(enrollments)
	if students == 0 {
		return 0
	}
	return Round2(float64(Revenue(enrollments)) / float64(students))
}

type MonthlyAmount struct {
	Month       string `json:"month"` // YYYY-MM
	Revenue     int    `json:"revenue"`
	Enrollments int    `json:"enrollments"`
}

// MonthlyRevenue returns the last n calendar months ending with now's month, oldest first.
func MonthlyRevenue(enrollments []models.UserLearningPath, now time.Time, n int) []MonthlyAmount {
	if n <= 0 {
		return []MonthlyAmount{}
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	out := make([]MonthlyAmount, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = key
		index[key] = i
	}
	for _, e := range enrollments {
		if i, ok := index[e.EnrolledAt.UTC().Format("2006-01")]; ok {
			out[i].Revenue += e.AmountPaid
			out[i].Enrollments++
		}
	}
	return out
}

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// DailyEnrollments counts enrollments per UTC day over [from, to], one entry per day.
func DailyEnrollments(enrollments []models.UserLearningPath, from, to time.Time) []DailyCount {
	days := dayRange(from, to)
	out := make([]DailyCount, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		out[i].Date = d
		index[d] = i
	}
	for _, e := range enrollments {
		if i, ok := index[e.EnrolledAt.UTC().Format(time.DateOnly)]; ok {
			out[i].Count++
		}
	}
	return out
}

// DailyCompletions counts completed content per UTC day over [from, to], one entry per day.
func DailyCompletions(progress []models.UserProgress, from, to time.Time) []DailyCount {
	days := dayRange(from, to)
	out := make([]DailyCount, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		out[i].Date = d
		index[d] = i
	}
	for _, p := range progress {
		if !p.IsCompleted || p.CompletedAt == nil {
			continue
		}
		if i, ok := index[p.CompletedAt.UTC().Format(time.DateOnly)]; ok {
			out[i].Count++
		}
	}
	return out
}

type DailyStat struct {
	Date             string `json:"date"`
	ContentCompleted int    `json:"contentCompleted"`
	MinutesSpent     int    `json:"minutesSpent"`
	AssessmentsTaken int    `json:"assessmentsTaken"`
}

// DailyStats groups progress and completed attempts by UTC day within [from, to].
// Only days with activity are returned, oldest first.
func DailyStats(progress []models.UserProgress, results []models.AssessmentResult, from, to time.Time) []DailyStat {
	byDay := make(map[string]*DailyStat)
	get := func(t time.Time) *DailyStat {
		if t.Before(from) || t.After(to) {
			return nil
		}
		key := t.UTC().Format(time.DateOnly)
		s, ok := byDay[key]
		if !ok {
			s = &DailyStat{Date: key}
			byDay[key] = s
		}
		return s
	}
	for _, p := range progress {
		if !p.IsCompleted || p.CompletedAt == nil {
			continue
		}
		if s := get(*p.CompletedAt); s != nil {
			s.ContentCompleted++
			s.MinutesSpent += p.TimeSpentMinutes
		}
	}
	for _, r := range results {
		if r.CompletedAt == nil {
			continue
		}
		if s := get(*r.CompletedAt); s != nil {
			s.AssessmentsTaken++
			s.MinutesSpent += r.TimeSpentMinutes
		}
	}
	out := make([]DailyStat, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func dayRange(from, to time.Time) []string {
	start := truncateDay(from)
	end := truncateDay(to)
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
