package services

import (
	"context"
	"testing"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type classroom struct {
	creator        auth.Caller
	rival          auth.Caller
	alice          *models.User
	bob            *models.User
	aliceCaller    auth.Caller
	published      *models.LearningPath
	draft          *models.LearningPath
	rivalPath      *models.LearningPath
	lessons        []models.Content
	pathAssessment *models.Assessment
}

// newClassroom gives one creator a published and a draft path with two students in the
// published one, and a second creator whose path Bob also takes.
func newClassroom(t *testing.T, f *fixture) classroom {
	t.Helper()
	ctx := context.Background()
	var c classroom
	creator, creatorCaller := f.user(t, "creator@example.com", models.RoleContentCreator)
	rival, rivalCaller := f.user(t, "rival@example.com", models.RoleContentCreator)
	c.creator, c.rival = creatorCaller, rivalCaller

	alice, aliceCaller := f.user(t, "alice@example.com", models.RoleStudent)
	require.NoError(t, f.store.DB().Model(alice).Updates(map[string]interface{}{"first_name": "Alice", "last_name": "Smith"}).Error)
	bob, bobCaller := f.user(t, "bob@example.com", models.RoleStudent)
	require.NoError(t, f.store.DB().Model(bob).Updates(map[string]interface{}{"first_name": "Bob", "last_name": "Jones"}).Error)
	c.alice, c.bob, c.aliceCaller = alice, bob, aliceCaller

	c.published, c.lessons = f.path(t, creator.ID, 500, 2)
	c.draft, _ = f.path(t, creator.ID, 0, 1)
	require.NoError(t, f.store.DB().Model(c.draft).Update("is_published", false).Error)
	c.rivalPath, _ = f.path(t, rival.ID, 0, 1)

	for _, e := range []struct {
		caller auth.Caller
		user   *models.User
		path   *models.LearningPath
	}{
		{aliceCaller, alice, c.published},
		{bobCaller, bob, c.published},
		{bobCaller, bob, c.rivalPath},
	} {
		_, err := f.svc.LearningPaths.Enroll(ctx, e.caller, Enroll{LearningPathID: e.path.ID, UserID: e.user.ID})
		require.NoError(t, err)
	}

	c.pathAssessment, _ = f.assessment(t, 5, 10)
	require.NoError(t, f.store.DB().Model(c.pathAssessment).Update("learning_path_id", c.published.ID).Error)
	completed := fixedNow
	result := models.AssessmentResult{AssessmentID: c.pathAssessment.ID, UserID: alice.ID, Score: 6, MaxScore: 10, IsPassed: true, CompletedAt: &completed}
	require.NoError(t, f.store.DB().Create(&result).Error)
	return c
}

func TestCreatorLearningPathsFilterByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newClassroom(t, f)

	all, err := f.svc.Creator.LearningPaths(ctx, c.creator, ListCreatorLearningPaths{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)

	published, err := f.svc.Creator.LearningPaths(ctx, c.creator, ListCreatorLearningPaths{Status: "published"})
	require.NoError(t, err)
	require.Len(t, published.Items, 1)
	item := published.Items[0]
	assert.Equal(t, c.published.ID, item.ID)
	assert.Equal(t, 2, item.EnrollmentCount)
	assert.Equal(t, 1, item.ResultCount)
	assert.InDelta(t, 60.0, item.AverageScore, 0.001)

	drafts, err := f.svc.Creator.LearningPaths(ctx, c.creator, ListCreatorLearningPaths{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, c.draft.ID, drafts.Items[0].ID)
	assert.Zero(t, drafts.Items[0].EnrollmentCount)

	_, err = f.svc.Creator.LearningPaths(ctx, c.aliceCaller, ListCreatorLearningPaths{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestCreatorStudentsScopedToOwnPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newClassroom(t, f)

	page, err := f.svc.Creator.Students(ctx, c.creator, ListCreatorStudents{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount, "Bob's enrollment with the other creator is not listed")
	for _, s := range page.Items {
		assert.Equal(t, c.published.ID, s.LearningPathID)
		assert.Equal(t, c.published.Title, s.LearningPathTitle)
	}

	found, err := f.svc.Creator.Students(ctx, c.creator, ListCreatorStudents{Search: "ALICE"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, c.alice.ID, found.Items[0].UserID)
	assert.Equal(t, "Smith", found.Items[0].LastName)
	assert.Equal(t, "alice@example.com", found.Items[0].Email)

	paged, err := f.svc.Creator.Students(ctx, c.creator, ListCreatorStudents{LearningPathID: &c.published.ID, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 1)
	assert.Equal(t, int64(2), paged.TotalCount)
	assert.True(t, paged.HasNext)

	_, err = f.svc.Creator.Students(ctx, c.creator, ListCreatorStudents{LearningPathID: &c.rivalPath.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestStudentProgressForOwnedPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newClassroom(t, f)

	_, err := f.svc.Contents.Complete(ctx, c.aliceCaller, CompleteContent{ContentID: c.lessons[0].ID, UserID: c.alice.ID, TimeSpentMinutes: 7})
	require.NoError(t, err)

	progress, err := f.svc.Creator.StudentProgress(ctx, c.creator, GetStudentProgress{LearningPathID: c.published.ID, StudentID: c.alice.ID})
	require.NoError(t, err)
	assert.Equal(t, "Alice", progress.FirstName)
	assert.Equal(t, models.StatusInProgress, progress.Status)
	assert.Equal(t, 50, progress.ProgressPercentage)
	assert.Equal(t, 7, progress.TotalMinutes)
	require.Len(t, progress.Contents, 2)
	assert.True(t, progress.Contents[0].IsCompleted)
	assert.Equal(t, 7, progress.Contents[0].TimeSpentMinutes)
	assert.False(t, progress.Contents[1].IsCompleted)
	require.Len(t, progress.Results, 1)
	assert.Equal(t, c.pathAssessment.ID, progress.Results[0].AssessmentID)

	_, err = f.svc.Creator.StudentProgress(ctx, c.creator, GetStudentProgress{LearningPathID: c.draft.ID, StudentID: c.alice.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Creator.StudentProgress(ctx, c.rival, GetStudentProgress{LearningPathID: c.published.ID, StudentID: c.alice.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}
