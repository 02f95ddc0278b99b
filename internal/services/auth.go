package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"skillup-go/internal/apperr"
	"skillup-go/internal/auth"
	"skillup-go/internal/database"
	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	deps Deps
	log  *zap.Logger
}

type RegisterUser struct {
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,complexpassword"`
	FirstName   string      `json:"firstName" validate:"required,max=100"`
	LastName    string      `json:"lastName" validate:"required,max=100"`
	PhoneNumber string      `json:"phoneNumber" validate:"omitempty,max=32"`
	Role        models.Role `json:"role" validate:"omitempty,oneof=Student ContentCreator"`
}

type UserProfile struct {
	ID          uint        `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	FullName    string      `json:"fullName"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Role        models.Role `json:"role"`
	IsActive    bool        `json:"isActive"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func toProfile(u *models.User) UserProfile {
	return UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Register creates a student or content creator account.
func (s *AuthService) Register(ctx context.Context, caller auth.Caller, req RegisterUser) (UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	uow := s.deps.Store.UnitOfWork()
	exists, err := uow.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return UserProfile{}, apperr.Unexpected("failed to check email", err)
	}
	if exists {
		return UserProfile{}, apperr.Conflict("an account with this email already exists")
	}

	hashed, err := models.HashPassword(req.Password)
	if err != nil {
		return UserProfile{}, apperr.Unexpected("failed to hash password", err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	user := &models.User{
		Email:       email,
		Password:    hashed,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: req.PhoneNumber,
		Role:        role,
		IsActive:    true,
	}
	uow.Users.Add(user)
	if err := uow.SaveChanges(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return UserProfile{}, apperr.Conflict("an account with this email already exists")
		}
		return UserProfile{}, apperr.Unexpected("failed to create user", err)
	}
	s.log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return toProfile(user), nil
}

type Login struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         UserProfile `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, caller auth.Caller, req Login) (AuthResult, error) {
	uow := s.deps.Store.UnitOfWork()
	user, err := uow.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return AuthResult{}, apperr.Unexpected("failed to load user", err)
	}
	if !user.CheckPassword(req.Password) {
		s.log.Info("Failed login", zap.String("email", user.Email), zap.String("ip", req.IPAddress))
		return AuthResult{}, apperr.Unauthorized("invalid email or password")
	}
	now := s.deps.now()
	if err := checkActive(user, now); err != nil {
		return AuthResult{}, err
	}

	refresh, err := auth.GenerateSecureToken(32)
	if err != nil {
		return AuthResult{}, apperr.Unexpected("failed to create session", err)
	}
	session := &models.UserSession{
		UserID:       user.ID,
		SessionID:    uuid.NewString(),
		RefreshToken: refresh,
		LoginTime:    now,
		ExpiresAt:    now.Add(s.deps.Auth.RefreshTokenTTL),
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		IsActive:     true,
	}
	user.LastLoginAt = &now
	uow.Sessions.Add(session)
	uow.Users.Update(user)
	uow.Activities.Add(&models.UserActivity{
		UserID:       user.ID,
		ActivityType: models.ActivityLogin,
		Description:  "Logged in",
		Timestamp:    now,
	})
	if err := uow.SaveChanges(ctx); err != nil {
		return AuthResult{}, apperr.Unexpected("failed to create session", err)
	}

	return s.issue(user, session)
}

func (s *AuthService) issue(user *models.User, session *models.UserSession) (AuthResult, error) {
	token, expires, err := s.deps.Tokens.Issue(user, session.SessionID)
	if err != nil {
		return AuthResult{}, apperr.Unexpected("failed to issue token", err)
	}
	return AuthResult{
		AccessToken:  token,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    expires,
		User:         toProfile(user),
	}, nil
}

func checkActive(user *models.User, now time.Time) error {
	if !user.IsActive {
		return apperr.Unauthorized("account is deactivated")
	}
	if user.IsSuspended(now) {
		return apperr.Unauthorized("account is suspended until %s", user.SuspendedUntil.Format(time.RFC3339))
	}
	return nil
}

type RefreshToken struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh rotates the refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, caller auth.Caller, req RefreshToken) (AuthResult, error) {
	uow := s.deps.Store.UnitOfWork()
	session, err := uow.Sessions.GetActiveByRefreshToken(ctx, req.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return AuthResult{}, apperr.Unexpected("failed to load session", err)
	}
	now := s.deps.now()
	if now.After(session.ExpiresAt) {
		return AuthResult{}, apperr.Unauthorized("refresh token expired")
	}
	user, err := uow.Users.GetByID(ctx, session.UserID)
	if err != nil {
		return AuthResult{}, lookupErr(err, "user", session.UserID)
	}
	if err := checkActive(user, now); err != nil {
		return AuthResult{}, err
	}

	refresh, err := auth.GenerateSecureToken(32)
	if err != nil {
		return AuthResult{}, apperr.Unexpected("failed to rotate session", err)
	}
	session.RefreshToken = refresh
	session.ExpiresAt = now.Add(s.deps.Auth.RefreshTokenTTL)
	uow.Sessions.Update(session)
	if err := uow.SaveChanges(ctx); err != nil {
		return AuthResult{}, apperr.Unexpected("failed to rotate session", err)
	}
	return s.issue(user, session)
}

type Logout struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (s *AuthService) Logout(ctx context.Context, caller auth.Caller, req Logout) (struct{}, error) {
	uow := s.deps.Store.UnitOfWork()
	session, err := uow.Sessions.GetActiveByRefreshToken(ctx, req.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return struct{}{}, nil
	}
	if err != nil {
		return struct{}{}, apperr.Unexpected("failed to load session", err)
	}
	if err := requireOwner(caller, session.UserID); err != nil {
		return struct{}{}, err
	}
	now := s.deps.now()
	session.IsActive = false
	session.LogoutTime = &now
	uow.Sessions.Update(session)
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to end session", err)
	}
	return struct{}{}, nil
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,complexpassword,nefield=CurrentPassword"`
}

// ChangePassword replaces the caller's password and ends their other sessions.
func (s *AuthService) ChangePassword(ctx context.Context, caller auth.Caller, req ChangePassword) (struct{}, error) {
	if err := requireAuthenticated(caller); err != nil {
		return struct{}{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	user, err := uow.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		return struct{}{}, lookupErr(err, "user", caller.UserID)
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return struct{}{}, apperr.Validation("current password is incorrect")
	}
	hashed, err := models.HashPassword(req.NewPassword)
	if err != nil {
		return struct{}{}, apperr.Unexpected("failed to hash password", err)
	}
	user.Password = hashed
	uow.Users.Update(user)

	sessions, err := uow.Sessions.ActiveByUser(ctx, user.ID)
	if err != nil {
		return struct{}{}, apperr.Unexpected("failed to load sessions", err)
	}
	now := s.deps.now()
	for i := range sessions {
		sessions[i].IsActive = false
		sessions[i].LogoutTime = &now
		uow.Sessions.Update(&sessions[i])
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return struct{}{}, apperr.Unexpected("failed to change password", err)
	}
	s.log.Info("Password changed", zap.Uint("user_id", user.ID), zap.Int("sessions_closed", len(sessions)))
	return struct{}{}, nil
}

type GetProfile struct {
	UserID uint `json:"userId" validate:"required"`
}

func (s *AuthService) GetProfile(ctx context.Context, caller auth.Caller, req GetProfile) (UserProfile, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return UserProfile{}, err
	}
	user, err := s.deps.Store.UnitOfWork().Users.GetByID(ctx, req.UserID)
	if err != nil {
		return UserProfile{}, lookupErr(err, "user", req.UserID)
	}
	return toProfile(user), nil
}

type UpdateProfile struct {
	UserID      uint   `json:"-" validate:"required"`
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, caller auth.Caller, req UpdateProfile) (UserProfile, error) {
	if err := requireOwner(caller, req.UserID); err != nil {
		return UserProfile{}, err
	}
	uow := s.deps.Store.UnitOfWork()
	user, err := uow.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return UserProfile{}, lookupErr(err, "user", req.UserID)
	}
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.PhoneNumber = req.PhoneNumber
	uow.Users.Update(user)
	if err := uow.SaveChanges(ctx); err != nil {
		return UserProfile{}, apperr.Unexpected("failed to update profile", err)
	}
	return toProfile(user), nil
}

type ListNotifications struct {
	UnreadOnly bool `form:"unread"`
}

func (s *AuthService) Notifications(ctx context.Context, caller auth.Caller, req ListNotifications) ([]models.Notification, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	out, err := s.deps.Store.UnitOfWork().Notifications.ForUser(ctx, caller.UserID, req.UnreadOnly)
	if err != nil {
		return nil, apperr.Unexpected("failed to load notifications", err)
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}
