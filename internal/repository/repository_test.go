package repository_test

import (
	"context"
	"testing"
	"time"

	"skillup-go/internal/models"
	"skillup-go/internal/repository"
	"skillup-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveChangesCommitsQueuedWrites(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))

	user := &models.User{Email: "ada@example.com", Password: "x", Role: models.RoleStudent, IsActive: true}
	uow.Users.Add(user)
	assert.Equal(t, 1, uow.Pending())
	assert.Zero(t, user.ID)

	exists, err := uow.Users.ExistsByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "queued writes are invisible before SaveChanges")

	require.NoError(t, uow.SaveChanges(ctx))
	assert.NotZero(t, user.ID)
	assert.Zero(t, uow.Pending())

	got, err := uow.Users.GetByEmail(ctx, " ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestSaveChangesRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))

	uow.Users.Add(&models.User{Email: "dup@example.com", Password: "x", Role: models.RoleStudent})
	require.NoError(t, uow.SaveChanges(ctx))

	uow.LearningPaths.Add(&models.LearningPath{Title: "Go"})
	uow.Users.Add(&models.User{Email: "dup@example.com", Password: "y", Role: models.RoleStudent})
	require.Error(t, uow.SaveChanges(ctx))

	paths, err := uow.LearningPaths.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Zero(t, uow.Pending())
}

func TestGetByIDNotFound(t *testing.T) {
	uow := repository.NewUnitOfWork(testutil.NewDB(t))
	_, err := uow.Assessments.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := uow.Assessments.Exists(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuestionsOrderedAndRemovedByAssessment(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))

	a := &models.Assessment{Title: "Quiz", IsActive: true}
	uow.Assessments.Add(a)
	require.NoError(t, uow.SaveChanges(ctx))

	uow.Questions.Add(&models.Question{AssessmentID: a.ID, QuestionText: "second", OrderIndex: 2, Options: models.StringList{"a", "b"}})
	uow.Questions.Add(&models.Question{AssessmentID: a.ID, QuestionText: "first", OrderIndex: 1})
	require.NoError(t, uow.SaveChanges(ctx))

	qs, err := uow.Questions.ByAssessment(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "first", qs[0].QuestionText)
	assert.Equal(t, models.StringList{}, qs[0].Options)
	assert.Equal(t, models.StringList{"a", "b"}, qs[1].Options)

	uow.Questions.RemoveByAssessment(a.ID)
	require.NoError(t, uow.SaveChanges(ctx))
	qs, err = uow.Questions.ByAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestUserListPagingAndFilter(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))
	for _, email := range []string{"a@x.io", "b@x.io", "c@y.io"} {
		uow.Users.Add(&models.User{Email: email, Password: "x", Role: models.RoleStudent, IsActive: true})
	}
	uow.Users.Add(&models.User{Email: "admin@x.io", Password: "x", Role: models.RoleAdmin, IsActive: true})
	require.NoError(t, uow.SaveChanges(ctx))

	users, total, err := uow.Users.List(ctx, repository.UserFilter{Role: models.RoleStudent, Paging: repository.Paging{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	users, total, err = uow.Users.List(ctx, repository.UserFilter{Search: "@X.IO"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)
}

func TestActiveUsersBetweenCountsDistinctUsers(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))
	now := time.Now().UTC()
	uow.Activities.Add(&models.UserActivity{UserID: 1, ActivityType: models.ActivityLogin, Timestamp: now.Add(-time.Hour)})
	uow.Activities.Add(&models.UserActivity{UserID: 1, ActivityType: models.ActivityLogin, Timestamp: now.Add(-2 * time.Hour)})
	uow.Activities.Add(&models.UserActivity{UserID: 2, ActivityType: models.ActivityLogin, Timestamp: now.Add(-3 * time.Hour)})
	uow.Activities.Add(&models.UserActivity{UserID: 3, ActivityType: models.ActivityLogin, Timestamp: now.AddDate(0, 0, -40)})
	require.NoError(t, uow.SaveChanges(ctx))

	n, err := uow.Activities.ActiveUsersBetween(ctx, now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestListStudentsFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))
	grace := &models.User{Email: "grace@navy.mil", FirstName: "Grace", LastName: "Hopper", Password: "x", Role: models.RoleStudent}
	alan := &models.User{Email: "alan@bletchley.uk", FirstName: "Alan", LastName: "Turing", Password: "x", Role: models.RoleStudent}
	uow.Users.Add(grace)
	uow.Users.Add(alan)
	mine := &models.LearningPath{Title: "Mine", CreatorID: 9}
	other := &models.LearningPath{Title: "Other", CreatorID: 10}
	uow.LearningPaths.Add(mine)
	uow.LearningPaths.Add(other)
	require.NoError(t, uow.SaveChanges(ctx))

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	uow.UserLearningPaths.Add(&models.UserLearningPath{UserID: grace.ID, LearningPathID: mine.ID, EnrolledAt: base})
	uow.UserLearningPaths.Add(&models.UserLearningPath{UserID: alan.ID, LearningPathID: mine.ID, EnrolledAt: base.AddDate(0, 0, 1)})
	uow.UserLearningPaths.Add(&models.UserLearningPath{UserID: alan.ID, LearningPathID: other.ID, EnrolledAt: base.AddDate(0, 0, 2)})
	require.NoError(t, uow.SaveChanges(ctx))

	page, total, err := uow.UserLearningPaths.ListStudents(ctx, repository.StudentFilter{
		LearningPathIDs: []uint{mine.ID},
		Paging:          repository.Paging{Page: 1, PageSize: 1},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, alan.ID, page[0].UserID)

	found, total, err := uow.UserLearningPaths.ListStudents(ctx, repository.StudentFilter{
		LearningPathIDs: []uint{mine.ID, other.ID},
		Search:          "HOPPER",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, grace.ID, found[0].UserID)
	assert.Equal(t, mine.ID, found[0].LearningPathID)

	none, total, err := uow.UserLearningPaths.ListStudents(ctx, repository.StudentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestListByCreatorFiltersPublished(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(testutil.NewDB(t))
	uow.LearningPaths.Add(&models.LearningPath{Title: "Draft", CreatorID: 3})
	uow.LearningPaths.Add(&models.LearningPath{Title: "Live", CreatorID: 3, IsPublished: true})
	uow.LearningPaths.Add(&models.LearningPath{Title: "Someone else", CreatorID: 4, IsPublished: true})
	require.NoError(t, uow.SaveChanges(ctx))

	all, total, err := uow.LearningPaths.ListByCreator(ctx, 3, nil, repository.Paging{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	published := true
	live, total, err := uow.LearningPaths.ListByCreator(ctx, 3, &published, repository.Paging{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, live, 1)
	assert.Equal(t, "Live", live[0].Title)
}

func TestPagingNormalize(t *testing.T) {
	assert.Equal(t, repository.Paging{Page: 1, PageSize: repository.DefaultPageSize}, repository.Paging{}.Normalize())
	assert.Equal(t, repository.MaxPageSize, repository.Paging{Page: 2, PageSize: 1000}.Normalize().PageSize)
	assert.Equal(t, 10, repository.Paging{Page: 2, PageSize: 10}.Offset())
}
