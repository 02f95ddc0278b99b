package services

import (
	"context"
	"testing"

	"skillup-go/internal/apperr"
	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollRecordsOrderAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator, _ := f.user(t, "creator@example.com", models.RoleContentCreator)
	u, caller := f.user(t, "student@example.com", models.RoleStudent)
	path, _ := f.path(t, creator.ID, 4900, 1)

	enrollment, err := f.svc.LearningPaths.Enroll(ctx, caller, Enroll{LearningPathID: path.ID, UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, enrollment.Status)
	assert.Equal(t, 4900, enrollment.AmountPaid)

	_, err = f.svc.LearningPaths.Enroll(ctx, caller, Enroll{LearningPathID: path.ID, UserID: u.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Already enrolled", apperr.PublicMessage(err))

	orders, err := f.store.UnitOfWork().Orders.All(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 4900, orders[0].TotalAmount)

	mine, err := f.svc.LearningPaths.UserLearningPaths(ctx, caller, GetUserLearningPaths{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, path.Title, mine[0].LearningPath.Title)
}

func TestEnrollRequiresPublishedPath(t *testing.T) {
	f := newFixture(t)
	creator, _ := f.user(t, "creator@example.com", models.RoleContentCreator)
	u, caller := f.user(t, "student@example.com", models.RoleStudent)
	path, _ := f.path(t, creator.ID, 0, 1)
	require.NoError(t, f.store.DB().Model(path).Update("is_published", false).Error)

	_, err := f.svc.LearningPaths.Enroll(context.Background(), caller, Enroll{LearningPathID: path.ID, UserID: u.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPublishRequiresContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, creator := f.user(t, "creator@example.com", models.RoleContentCreator)
	_, intruder := f.user(t, "intruder@example.com", models.RoleContentCreator)

	path, err := f.svc.LearningPaths.Create(ctx, creator, CreateLearningPath{LearningPathInput{
		Title:      "Testing in Go",
		Category:   "Programming",
		Difficulty: models.DifficultyBeginner,
	}})
	require.NoError(t, err)
	assert.False(t, path.IsPublished)

	_, err = f.svc.LearningPaths.SetPublished(ctx, creator, SetLearningPathPublished{ID: path.ID, Published: true})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.LearningPaths.SetPublished(ctx, intruder, SetLearningPathPublished{ID: path.ID, Published: true})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.Contents.Create(ctx, creator, CreateContent{LearningPathID: path.ID, ContentInput: ContentInput{Title: "Table tests", ContentType: "Article"}})
	require.NoError(t, err)
	published, err := f.svc.LearningPaths.SetPublished(ctx, creator, SetLearningPathPublished{ID: path.ID, Published: true})
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestCompleteContentUpdatesEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator, _ := f.user(t, "creator@example.com", models.RoleContentCreator)
	u, caller := f.user(t, "student@example.com", models.RoleStudent)
	path, contents := f.path(t, creator.ID, 0, 2)

	_, err := f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: contents[0].ID, UserID: u.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "completion requires enrollment")

	_, err = f.svc.LearningPaths.Enroll(ctx, caller, Enroll{LearningPathID: path.ID, UserID: u.ID})
	require.NoError(t, err)

	first, err := f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: contents[0].ID, UserID: u.ID, TimeSpentMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, 50, first.PathProgress)
	assert.Equal(t, models.StatusInProgress, first.Enrollment.Status)
	assert.False(t, first.PathCompleted)

	again, err := f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: contents[0].ID, UserID: u.ID, TimeSpentMinutes: 5})
	require.NoError(t, err)
	assert.Equal(t, 50, again.PathProgress)
	assert.Equal(t, 15, again.Progress.TimeSpentMinutes)

	last, err := f.svc.Contents.Complete(ctx, caller, CompleteContent{ContentID: contents[1].ID, UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, 100, last.PathProgress)
	assert.True(t, last.PathCompleted)
	assert.Equal(t, models.StatusCompleted, last.Enrollment.Status)
	require.NotNil(t, last.Enrollment.CompletedAt)

	completions, err := f.store.UnitOfWork().Activities.Count(ctx, "user_id = ? AND activity_type = ?", u.ID, models.ActivityContentCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completions, "repeat completions are not recorded twice")

	streak, err := f.svc.Dashboard.StudyStreak(ctx, caller, GetStudyStreak{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Days)
	assert.True(t, streak.IsActive)
}

func TestCreatorAnalyticsRequireCreatorRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator, creatorCaller := f.user(t, "creator@example.com", models.RoleContentCreator)
	u, student := f.user(t, "student@example.com", models.RoleStudent)

	_, err := f.svc.Creator.Dashboard(ctx, student, GetCreatorDashboard{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	path, _ := f.path(t, creator.ID, 1000, 1)
	_, err = f.svc.LearningPaths.Enroll(ctx, student, Enroll{LearningPathID: path.ID, UserID: u.ID})
	require.NoError(t, err)

	dash, err := f.svc.Creator.Dashboard(ctx, creatorCaller, GetCreatorDashboard{})
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalPaths)
	assert.Equal(t, 1, dash.PublishedPaths)
	assert.Equal(t, 1, dash.TotalStudents)
	assert.Equal(t, 1000, dash.TotalRevenue)
	require.Len(t, dash.TopPaths, 1)
	assert.Equal(t, path.ID, dash.TopPaths[0].LearningPathID)
}

func TestStudentListSeesPublishedOnly(t *testing.T) {
	f := newFixture(t)
	creator, creatorCaller := f.user(t, "creator@example.com", models.RoleContentCreator)
	_, student := f.user(t, "student@example.com", models.RoleStudent)
	f.path(t, creator.ID, 0, 1)
	hidden, _ := f.path(t, creator.ID, 0, 1)
	require.NoError(t, f.store.DB().Model(hidden).Update("is_published", false).Error)

	page, err := f.svc.LearningPaths.List(context.Background(), student, ListLearningPaths{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	page, err = f.svc.LearningPaths.List(context.Background(), creatorCaller, ListLearningPaths{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
}
