package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"skillup-go/internal/analytics"
	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/charts"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

type AdminService struct {
	deps Deps
	log  *zap.Logger
}

type GetPlatformAnalytics struct{}

type PlatformAnalytics struct {
	TotalUsers       int64                     `json:"totalUsers"`
	Students         int64                     `json:"students"`
	ContentCreators  int64                     `json:"contentCreators"`
	NewUsers         int64                     `json:"newUsers"`
	ActiveUsers      int64                     `json:"activeUsers"`
	PreviousActive   int64                     `json:"previousActiveUsers"`
	RetentionRate    float64                   `json:"retentionRate"`
	TotalPaths       int64                     `json:"totalLearningPaths"`
	TotalEnrollments int                       `json:"totalEnrollments"`
	CompletionRate   float64                   `json:"completionRate"`
	TotalRevenue     int                       `json:"totalRevenue"`
	RevenueInPeriod  int                       `json:"revenueInPeriod"`
	AttemptsInPeriod int                       `json:"attemptsInPeriod"`
	MonthlyTrend     []analytics.MonthlyAmount `json:"monthlyTrend"`
}

// PlatformAnalytics reports platform totals and the last 30 days against the 30 before.
func (s *AdminService) PlatformAnalytics(ctx context.Context, caller auth.Caller, req GetPlatformAnalytics) (PlatformAnalytics, error) {
	if err := requireAdmin(caller); err != nil {
		return PlatformAnalytics{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	now := s.deps.now()
	since := now.Add(-analytics.RetentionWindow)
	prior := since.Add(-analytics.RetentionWindow)

	var out PlatformAnalytics
	var err error
	if out.TotalUsers, err = uow.Users.Total(ctx); err != nil {
		return out, apperr.Unexpected("failed to count users", err)
	}
	if out.Students, err = uow.Users.CountByRole(ctx, models.RoleStudent); err != nil {
		return out, apperr.Unexpected("failed to count users", err)
	}
	if out.ContentCreators, err = uow.Users.CountByRole(ctx, models.RoleContentCreator); err != nil {
		return out, apperr.Unexpected("failed to count users", err)
	}
	if out.NewUsers, err = uow.Users.CountCreatedBetween(ctx, since, now.Add(time.Second)); err != nil {
		return out, apperr.Unexpected("failed to count users", err)
	}
	if out.ActiveUsers, err = uow.Activities.ActiveUsersBetween(ctx, since, now.Add(time.Second)); err != nil {
		return out, apperr.Unexpected("failed to count active users", err)
	}
	if out.PreviousActive, err = uow.Activities.ActiveUsersBetween(ctx, prior, since); err != nil {
		return out, apperr.Unexpected("failed to count active users", err)
	}
	out.RetentionRate = analytics.Percent(float64(out.ActiveUsers), float64(out.PreviousActive))
	if out.TotalPaths, err = uow.LearningPaths.Count(ctx, "is_active = ?", true); err != nil {
		return out, apperr.Unexpected("failed to count learning paths", err)
	}

	enrollments, err := uow.UserLearningPaths.All(ctx)
	if err != nil {
		return out, apperr.Unexpected("failed to load enrollments", err)
	}
	out.TotalEnrollments = len(enrollments)
	out.CompletionRate = analytics.CompletionRate(enrollments)
	out.MonthlyTrend = analytics.MonthlyRevenue(enrollments, now, 12)

	orders, err := uow.Orders.All(ctx)
	if err != nil {
		return out, apperr.Unexpected("failed to load orders", err)
	}
	for _, o := range orders {
		out.TotalRevenue += o.TotalAmount
		if !o.CreatedAt.Before(since) {
			out.RevenueInPeriod += o.TotalAmount
		}
	}
	attempts, err := uow.AssessmentResults.Count(ctx, "completed_at >= ?", since)
	if err != nil {
		return out, apperr.Unexpected("failed to count attempts", err)
	}
	out.AttemptsInPeriod = int(attempts)
	return out, nil
}

type GetPlatformCharts struct{}

// PlatformCharts are echarts option objects for the admin dashboard.
type PlatformCharts struct {
	Revenue     map[string]interface{} `json:"revenue"`
	Enrollments map[string]interface{} `json:"enrollments"`
	Ratings     map[string]interface{} `json:"ratings"`
}

func (s *AdminService) PlatformCharts(ctx context.Context, caller auth.Caller, req GetPlatformCharts) (PlatformCharts, error) {
	if err := requireAdmin(caller); err != nil {
		return PlatformCharts{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	enrollments, err := uow.UserLearningPaths.All(ctx)
	if err != nil {
		return PlatformCharts{}, apperr.Unexpected("failed to load enrollments", err)
	}
	results, err := uow.AssessmentResults.All(ctx)
	if err != nil {
		return PlatformCharts{}, apperr.Unexpected("failed to load results", err)
	}
	now := s.deps.now()
	return PlatformCharts{
		Revenue:     charts.Options(charts.RevenueTrend(analytics.MonthlyRevenue(enrollments, now, 12))),
		Enrollments: charts.Options(charts.EnrollmentTimeline(analytics.DailyEnrollments(enrollments, now.AddDate(0, 0, -89), now))),
		Ratings:     charts.Options(charts.RatingBars(analytics.RatingDistribution(results))),
	}, nil
}

type ListUsers struct {
	Search   string      `form:"search"`
	Role     models.Role `form:"role" validate:"omitempty,oneof=Student ContentCreator Admin"`
	IsActive *bool       `form:"isActive"`
	Page     int         `form:"page" validate:"gte=0"`
	PageSize int         `form:"pageSize" validate:"gte=0,lte=100"`
}

func (s *AdminService) ListUsers(ctx context.Context, caller auth.Caller, req ListUsers) (PagedResult[UserProfile], error) {
	if err := requireAdmin(caller); err != nil {
		return PagedResult[UserProfile]{}, err
	}
	paging := repository.Paging{Page: req.Page, PageSize: req.PageSize}
	users, total, err := s.deps.Store.UnitOfWork().Users.List(ctx, repository.UserFilter{
		Search:   req.Search,
		Role:     req.Role,
		IsActive: req.IsActive,
		Paging:   paging,
	})
	if err != nil {
		return PagedResult[UserProfile]{}, apperr.Unexpected("failed to list users", err)
	}
	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, toProfile(&users[i]))
	}
	return NewPagedResult(profiles, total, paging), nil
}

// adminTarget loads a user an admin may change. Admins cannot change themselves.
func (s *AdminService) adminTarget(ctx context.Context, uow *repository.UnitOfWork, caller auth.Caller, userID uint) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if userID == caller.UserID {
		return nil, apperr.Validation("admins cannot change their own account here")
	}
	user, err := uow.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	return user, nil
}

type UpdateUserRole struct {
	UserID uint        `json:"-" validate:"required"`
	Role   models.Role `json:"role" validate:"required,oneof=Student ContentCreator Admin"`
}

func (s *AdminService) UpdateUserRole(ctx context.Context, caller auth.Caller, req UpdateUserRole) (UserProfile, error) {
	uow := s.deps.Store.UnitOfWork()
	user, err := s.adminTarget(ctx, uow, caller, req.UserID)
	if err != nil {
		return UserProfile{}, err
	}
	old := user.Role
	user.Role = req.Role
	uow.Users.Update(user)
	if err := uow.SaveChanges(ctx); err != nil {
		return UserProfile{}, apperr.Unexpected("failed to update role", err)
	}
	s.log.Info("User role changed", zap.Uint("user_id", user.ID), zap.String("from", string(old)), zap.String("to", string(req.Role)), zap.Uint("by", caller.UserID))
	return toProfile(user), nil
}

type SuspendUser struct {
	UserID uint   `json:"-" validate:"required"`
	Days   int    `json:"days" validate:"required,gte=1,lte=3650"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// SuspendUser blocks logins until the suspension ends and closes open sessions.
func (s *AdminService) SuspendUser(ctx context.Context, caller auth.Caller, req SuspendUser) (UserProfile, error) {
	uow := s.deps.Store.UnitOfWork()
	user, err := s.adminTarget(ctx, uow, caller, req.UserID)
	if err != nil {
		return UserProfile{}, err
	}
	now := s.deps.now()
	until := now.AddDate(0, 0, req.Days)
	user.SuspendedUntil = &until
	user.SuspensionReason = req.Reason
	uow.Users.Update(user)
	if err := s.closeSessions(ctx, uow, user.ID, now); err != nil {
		return UserProfile{}, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return UserProfile{}, apperr.Unexpected("failed to suspend user", err)
	}
	if err := s.deps.Email.Notify(ctx, user, "Account suspended", "Your account has been suspended until "+until.Format("2006-01-02")+". Reason: "+req.Reason); err != nil {
		s.log.Warn("Suspension notice not sent", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	s.log.Info("User suspended", zap.Uint("user_id", user.ID), zap.Time("until", until), zap.Uint("by", caller.UserID))
	return toProfile(user), nil
}

func (s *AdminService) closeSessions(ctx context.Context, uow *repository.UnitOfWork, userID uint, now time.Time) error {
	sessions, err := uow.Sessions.ActiveByUser(ctx, userID)
	if err != nil {
		return apperr.Unexpected("failed to load sessions", err)
	}
	for i := range sessions {
		sessions[i].IsActive = false
		sessions[i].LogoutTime = &now
		uow.Sessions.Update(&sessions[i])
	}
	return nil
}

type ActivateUser struct {
	UserID uint `json:"userId" validate:"required"`
	Active bool `json:"active"`
}

// ActivateUser lifts any suspension and sets the active flag.
func (s *AdminService) ActivateUser(ctx context.Context, caller auth.Caller, req ActivateUser) (UserProfile, error) {
	uow := s.deps.Store.UnitOfWork()
	user, err := s.adminTarget(ctx, uow, caller, req.UserID)
	if err != nil {
		return UserProfile{}, err
	}
	user.IsActive = req.Active
	if req.Active {
		user.SuspendedUntil = nil
		user.SuspensionReason = ""
	} else if err := s.closeSessions(ctx, uow, user.ID, s.deps.now()); err != nil {
		return UserProfile{}, err
	}
	uow.Users.Update(user)
	if err := uow.SaveChanges(ctx); err != nil {
		return UserProfile{}, apperr.Unexpected("failed to update user", err)
	}
	return toProfile(user), nil
}

type DeleteUser struct {
	UserID uint `json:"userId" validate:"required"`
}

// DeleteUser removes the account and its sessions and notifications. Learning records are kept.
func (s *AdminService) DeleteUser(ctx context.Context, caller auth.Caller, req DeleteUser) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	user, err := s.adminTarget(ctx, uow, caller, req.UserID)
	if err != nil {
		return struct{}{}, err
	}
	uow.Sessions.RemoveWhere("user_id = ?", user.ID)
	uow.Notifications.RemoveWhere("user_id = ?", user.ID)
	uow.Users.Remove(user)
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to delete user", err)
	}
	s.log.Info("User deleted", zap.Uint("user_id", user.ID), zap.Uint("by", caller.UserID))
	return struct{}{}, nil
}

type SendMessage struct {
	UserIDs []uint `json:"userIds" validate:"required,min=1,dive,required"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type SendMessageResult struct {
	Sent    int    `json:"sent"`
	Missing []uint `json:"missing"`
}

// SendMessage notifies each listed user. Unknown ids are reported, not fatal.
func (s *AdminService) SendMessage(ctx context.Context, caller auth.Caller, req SendMessage) (SendMessageResult, error) {
	if err := requireAdmin(caller); err != nil {
		return SendMessageResult{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	out := SendMessageResult{Missing: []uint{}}
	seen := make(map[uint]bool, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		user, err := uow.Users.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			out.Missing = append(out.Missing, id)
			continue
		}
		if err != nil {
			return SendMessageResult{}, apperr.Unexpected("failed to load user", err)
		}
		if err := s.deps.Email.Notify(ctx, user, req.Subject, req.Message); err != nil {
			return SendMessageResult{}, apperr.Unexpected("failed to send message", err)
		}
		out.Sent++
	}
	return out, nil
}

type ExportUsers struct {
	Role models.Role `form:"role" validate:"omitempty,oneof=Student ContentCreator Admin"`
}

type Export struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// ExportUsers renders every user matching the filter as CSV.
func (s *AdminService) ExportUsers(ctx context.Context, caller auth.Caller, req ExportUsers) (Export, error) {
	if err := requireAdmin(caller); err != nil {
		return Export{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	var users []models.User
	for page := 1; ; page++ {
		batch, _, err := uow.Users.List(ctx, repository.UserFilter{Role: req.Role, Paging: repository.Paging{Page: page, PageSize: repository.MaxPageSize}})
		if err != nil {
			return Export{}, apperr.Unexpected("failed to load users", err)
		}
		users = append(users, batch...)
		if len(batch) < repository.MaxPageSize {
			break
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "email", "first_name", "last_name", "role", "active", "created_at", "last_login_at"})
	for _, u := range users {
		lastLogin := ""
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Email,
			u.FirstName,
			u.LastName,
			string(u.Role),
			strconv.FormatBool(u.IsActive),
			u.CreatedAt.UTC().Format(time.RFC3339),
			lastLogin,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Export{}, apperr.Unexpected("failed to write export", err)
	}
	return Export{
		FileName:    "users-" + s.deps.now().Format("20060102") + ".csv",
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}
