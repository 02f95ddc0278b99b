package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"skillup-go/internal/models"
	"skillup-go/internal/repository"
	"skillup-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `
users:
  - email: Author@Example.com
    password: "Secret#123"
    first_name: Ann
    last_name: Author
    role: ContentCreator
learning_paths:
  - title: SQL Basics
    category: Data
    difficulty: Beginner
    published: true
    creator: author@example.com
    contents:
      - title: SELECT
        type: Article
    assessments:
      - title: SQL Quiz
        type: Quiz
        passing_score: 10
        questions:
          - text: Keyword to filter rows?
            type: ShortAnswer
            answer: WHERE
            points: 10
          - text: Keyword to sort rows?
            type: ShortAnswer
            answer: ORDER BY
            points: 5
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeSeed(t))
	require.NoError(t, err)
	require.Len(t, f.Users, 1)
	assert.Equal(t, models.RoleContentCreator, f.Users[0].Role)
	require.Len(t, f.LearningPaths, 1)
	require.Len(t, f.LearningPaths[0].Assessments, 1)
	assert.Len(t, f.LearningPaths[0].Assessments[0].Questions, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))
	f, err := Load(writeSeed(t))
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, store, f, zap.NewNop()))
	require.NoError(t, Apply(ctx, store, f, zap.NewNop()))

	uow := store.UnitOfWork()
	users, err := uow.Users.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	author, err := uow.Users.GetByEmail(ctx, "author@example.com")
	require.NoError(t, err)
	assert.True(t, author.CheckPassword("Secret#123"))

	paths, err := uow.LearningPaths.ByCreator(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, paths[0].IsPublished)

	assessments, err := uow.Assessments.List(ctx, "", &paths[0].ID)
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.Equal(t, 15, assessments[0].MaxScore)

	questions, err := uow.Questions.ByAssessment(ctx, assessments[0].ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "WHERE", questions[0].CorrectAnswer)
}

func TestApplyRequiresKnownCreator(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	f := &File{LearningPaths: []LearningPath{{Title: "Orphan", Creator: "nobody@example.com"}}}
	assert.Error(t, Apply(context.Background(), store, f, zap.NewNop()))
}
