// Package services holds one handler per command or query. Handlers are
// registered on the mediator by Register and receive the caller explicitly.
package services

import (
	"errors"
	"fmt"
	"time"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/cache"
	"skillup-go/internal/config"
	"skillup-go/internal/mediator"
	"skillup-go/internal/repository"
	"skillup-go/internal/storage"

	"go.uber.org/zap"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	Log      *zap.Logger
	Store    *repository.Store
	Tokens   *auth.TokenService
	Auth     config.AuthConfig
	Storage  storage.Backend
	Files    config.StorageConfig
	Cache    *cache.Cache
	Feedback *FeedbackWorker
	Email    *EmailService
	Now      func() time.Time

	// Live returns the current configuration after hot reloads. Upload limits come from it when set.
	Live func() *config.Config
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// fileLimits returns the storage settings uploads are checked against.
func (d Deps) fileLimits() config.StorageConfig {
	if d.Live != nil {
		if c := d.Live(); c != nil {
			return c.Storage
		}
	}
	return d.Files
}

// Services groups the handler sets. It is returned by Register for direct use in tests.
type Services struct {
	Auth          *AuthService
	LearningPaths *LearningPathService
	Contents      *ContentService
	Assessments   *AssessmentService
	Dashboard     *DashboardService
	Creator       *CreatorService
	Admin         *AdminService
	Files         *FileService
}

func New(d Deps) *Services {
	return &Services{
		Auth:          &AuthService{deps: d, log: d.Log.Named("auth")},
		LearningPaths: &LearningPathService{deps: d, log: d.Log.Named("learning_paths")},
		Contents:      &ContentService{deps: d, log: d.Log.Named("contents")},
		Assessments:   &AssessmentService{deps: d, log: d.Log.Named("assessments")},
		Dashboard:     &DashboardService{deps: d},
		Creator:       &CreatorService{deps: d},
		Admin:         &AdminService{deps: d, log: d.Log.Named("admin")},
		Files:         &FileService{deps: d, log: d.Log.Named("files")},
	}
}

// Register builds the services and binds every handler to its request type.
func Register(m *mediator.Mediator, d Deps) *Services {
	s := New(d)

	mediator.RegisterFunc(m, s.Auth.Register)
	mediator.RegisterFunc(m, s.Auth.Login)
	mediator.RegisterFunc(m, s.Auth.Refresh)
	mediator.RegisterFunc(m, s.Auth.Logout)
	mediator.RegisterFunc(m, s.Auth.ChangePassword)
	mediator.RegisterFunc(m, s.Auth.GetProfile)
	mediator.RegisterFunc(m, s.Auth.UpdateProfile)
	mediator.RegisterFunc(m, s.Auth.Notifications)

	mediator.RegisterFunc(m, s.LearningPaths.Create)
	mediator.RegisterFunc(m, s.LearningPaths.Update)
	mediator.RegisterFunc(m, s.LearningPaths.SetPublished)
	mediator.RegisterFunc(m, s.LearningPaths.Delete)
	mediator.RegisterFunc(m, s.LearningPaths.List)
	mediator.RegisterFunc(m, s.LearningPaths.Get)
	mediator.RegisterFunc(m, s.LearningPaths.Categories)
	mediator.RegisterFunc(m, s.LearningPaths.Enroll)
	mediator.RegisterFunc(m, s.LearningPaths.UserLearningPaths)

	mediator.RegisterFunc(m, s.Contents.Create)
	mediator.RegisterFunc(m, s.Contents.Update)
	mediator.RegisterFunc(m, s.Contents.Delete)
	mediator.RegisterFunc(m, s.Contents.ListByLearningPath)
	mediator.RegisterFunc(m, s.Contents.Get)
	mediator.RegisterFunc(m, s.Contents.Complete)
	mediator.RegisterFunc(m, s.Contents.Adjacent)

	mediator.RegisterFunc(m, s.Assessments.Start)
	mediator.RegisterFunc(m, s.Assessments.Submit)
	mediator.RegisterFunc(m, s.Assessments.Create)
	mediator.RegisterFunc(m, s.Assessments.Update)
	mediator.RegisterFunc(m, s.Assessments.Delete)
	mediator.RegisterFunc(m, s.Assessments.Get)
	mediator.RegisterFunc(m, s.Assessments.List)
	mediator.RegisterFunc(m, s.Assessments.Questions)
	mediator.RegisterFunc(m, s.Assessments.Results)
	mediator.RegisterFunc(m, s.Assessments.UserResults)

	mediator.RegisterFunc(m, s.Dashboard.Overview)
	mediator.RegisterFunc(m, s.Dashboard.LearningStatistics)
	mediator.RegisterFunc(m, s.Dashboard.StudyStreak)
	mediator.RegisterFunc(m, s.Dashboard.RecentActivities)
	mediator.RegisterFunc(m, s.Dashboard.UserStatistics)
	mediator.RegisterFunc(m, s.Dashboard.LearningProgress)
	mediator.RegisterFunc(m, s.Dashboard.LearningCalendar)

	mediator.RegisterFunc(m, s.Creator.Dashboard)
	mediator.RegisterFunc(m, s.Creator.LearningPathAnalytics)
	mediator.RegisterFunc(m, s.Creator.EngagementAnalytics)
	mediator.RegisterFunc(m, s.Creator.RevenueAnalytics)
	mediator.RegisterFunc(m, s.Creator.LearningPaths)
	mediator.RegisterFunc(m, s.Creator.Students)
	mediator.RegisterFunc(m, s.Creator.StudentProgress)

	mediator.RegisterFunc(m, s.Admin.PlatformAnalytics)
	mediator.RegisterFunc(m, s.Admin.PlatformCharts)
	mediator.RegisterFunc(m, s.Admin.ListUsers)
	mediator.RegisterFunc(m, s.Admin.UpdateUserRole)
	mediator.RegisterFunc(m, s.Admin.SuspendUser)
	mediator.RegisterFunc(m, s.Admin.ActivateUser)
	mediator.RegisterFunc(m, s.Admin.DeleteUser)
	mediator.RegisterFunc(m, s.Admin.SendMessage)
	mediator.RegisterFunc(m, s.Admin.ExportUsers)

	mediator.RegisterFunc(m, s.Files.Upload)
	mediator.RegisterFunc(m, s.Files.Download)
	mediator.RegisterFunc(m, s.Files.Update)
	mediator.RegisterFunc(m, s.Files.Delete)
	mediator.RegisterFunc(m, s.Files.List)
	mediator.RegisterFunc(m, s.Files.Share)
	mediator.RegisterFunc(m, s.Files.Categories)

	return s
}

// PagedResult is one page of a larger result set.
type PagedResult[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"totalCount"`
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

func NewPagedResult[T any](items []T, total int64, paging repository.Paging) PagedResult[T] {
	p := paging.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	return PagedResult[T]{
		Items:       items,
		TotalCount:  total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  pages,
		HasNext:     p.Page < pages,
		HasPrevious: p.Page > 1,
	}
}

// lookupErr turns a repository lookup failure into NotFound or Unexpected.
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Unexpected(fmt.Sprintf("failed to load %s", what), err)
}

func requireAuthenticated(caller auth.Caller) error {
	if !caller.Authenticated() {
		return apperr.Unauthorized("authentication required")
	}
	return nil
}

func requireOwner(caller auth.Caller, userID uint) error {
	if !caller.Owns(userID) {
		return apperr.Unauthorized("not allowed to act for user %d", userID)
	}
	return nil
}

func requireAdmin(caller auth.Caller) error {
	if !caller.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	return nil
}
