package services

import (
	"context"
	"testing"
	"time"

	"skillup-go/internal/auth"
	"skillup-go/internal/config"
	"skillup-go/internal/mediator"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"
	"skillup-go/internal/storage"
	"skillup-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store *repository.Store
	med   *mediator.Mediator
	svc   *Services
	deps  Deps
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	store := repository.NewStore(testutil.NewDB(t))
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	authCfg := config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "skillup-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	d := Deps{
		Log:     zap.NewNop(),
		Store:   store,
		Tokens:  auth.NewTokenService(authCfg),
		Auth:    authCfg,
		Storage: local,
		Files: config.StorageConfig{
			MaxFileSize:  1024,
			AllowedTypes: []string{"pdf", "txt", "png"},
		},
		Email: NewEmailService(zap.NewNop(), store),
		Now:   func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&d)
	}
	m := mediator.New(zap.NewNop())
	return &fixture{store: store, med: m, svc: Register(m, d), deps: d}
}

func (f *fixture) user(t *testing.T, email string, role models.Role) (*models.User, auth.Caller) {
	t.Helper()
	hashed, err := models.HashPassword("Passw0rd!")
	require.NoError(t, err)
	u := &models.User{Email: email, Password: hashed, FirstName: "Test", LastName: "User", Role: role, IsActive: true}
	require.NoError(t, f.store.DB().Create(u).Error)
	return u, auth.Caller{UserID: u.ID, Role: role}
}

// assessment creates an active assessment with one question per entry in points.
// Every question's correct answer is "yes".
func (f *fixture) assessment(t *testing.T, passing int, points ...int) (*models.Assessment, []models.Question) {
	t.Helper()
	a := &models.Assessment{Title: "Go Basics", AssessmentType: "Quiz", PassingScore: passing, IsActive: true}
	require.NoError(t, f.store.DB().Create(a).Error)
	questions := make([]models.Question, 0, len(points))
	for i, p := range points {
		q := models.Question{
			AssessmentID:  a.ID,
			QuestionText:  "Is this question correct?",
			QuestionType:  "TrueFalse",
			Options:       models.StringList{"yes", "no"},
			CorrectAnswer: "yes",
			Points:        p,
			OrderIndex:    i,
		}
		require.NoError(t, f.store.DB().Create(&q).Error)
		questions = append(questions, q)
	}
	return a, questions
}

func (f *fixture) path(t *testing.T, creatorID uint, price int, contents int) (*models.LearningPath, []models.Content) {
	t.Helper()
	p := &models.LearningPath{
		Title:       "Concurrency in Go",
		Category:    "Programming",
		Difficulty:  models.DifficultyIntermediate,
		Price:       price,
		IsPublished: true,
		IsActive:    true,
		CreatorID:   creatorID,
	}
	require.NoError(t, f.store.DB().Create(p).Error)
	items := make([]models.Content, 0, contents)
	for i := 0; i < contents; i++ {
		c := models.Content{LearningPathID: p.ID, Title: "Lesson", ContentType: "Article", OrderIndex: i, IsPublished: true}
		require.NoError(t, f.store.DB().Create(&c).Error)
		items = append(items, c)
	}
	return p, items
}

func TestNewPagedResult(t *testing.T) {
	page := NewPagedResult([]int{1, 2}, 45, repository.Paging{Page: 2, PageSize: 20})
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrevious)

	empty := NewPagedResult[int](nil, 0, repository.Paging{})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, repository.DefaultPageSize, empty.PageSize)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}

func TestSchedulerClosesExpiredSessions(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, "sched@example.com", models.RoleStudent)
	sessions := []models.UserSession{
		{UserID: u.ID, SessionID: "expired", RefreshToken: "r1", ExpiresAt: fixedNow.Add(-time.Hour), IsActive: true},
		{UserID: u.ID, SessionID: "live", RefreshToken: "r2", ExpiresAt: fixedNow.Add(time.Hour), IsActive: true},
	}
	require.NoError(t, f.store.DB().Create(&sessions).Error)

	s := NewScheduler(zap.NewNop(), f.store, time.Minute)
	s.now = func() time.Time { return fixedNow }
	assert.Equal(t, int64(1), s.RunOnce(context.Background()))
	assert.Equal(t, int64(0), s.RunOnce(context.Background()))

	active, err := f.store.UnitOfWork().Sessions.ActiveByUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "live", active[0].SessionID)
}
