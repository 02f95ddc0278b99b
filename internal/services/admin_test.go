package services

import (
	"context"
	"strings"
	"testing"

	"skillup-go/internal/apperr"
	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuspendUserBlocksLoginAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, admin := f.user(t, "admin@example.com", models.RoleAdmin)
	u, student := f.user(t, "student@example.com", models.RoleStudent)

	_, err := f.svc.Admin.SuspendUser(ctx, student, SuspendUser{UserID: u.ID, Days: 3, Reason: "spam"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.Admin.SuspendUser(ctx, admin, SuspendUser{UserID: admin.UserID, Days: 3, Reason: "self"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	profile, err := f.svc.Admin.SuspendUser(ctx, admin, SuspendUser{UserID: u.ID, Days: 3, Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, u.Email, profile.Email)

	_, err = f.svc.Auth.Login(ctx, student, Login{Email: u.Email, Password: "Passw0rd!"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	notes, err := f.store.UnitOfWork().Notifications.ForUser(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Account suspended", notes[0].Subject)
	assert.Contains(t, notes[0].Message, "spam")

	_, err = f.svc.Admin.ActivateUser(ctx, admin, ActivateUser{UserID: u.ID, Active: true})
	require.NoError(t, err)
	_, err = f.svc.Auth.Login(ctx, student, Login{Email: u.Email, Password: "Passw0rd!"})
	assert.NoError(t, err)
}

func TestSendMessageReportsMissingUsers(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user(t, "admin@example.com", models.RoleAdmin)
	u, _ := f.user(t, "student@example.com", models.RoleStudent)

	res, err := f.svc.Admin.SendMessage(context.Background(), admin, SendMessage{
		UserIDs: []uint{u.ID, u.ID, 999},
		Subject: "Maintenance",
		Message: "The platform is down on Sunday.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []uint{999}, res.Missing)
}

func TestExportUsersWritesCSV(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user(t, "admin@example.com", models.RoleAdmin)
	f.user(t, "student@example.com", models.RoleStudent)
	f.user(t, "creator@example.com", models.RoleContentCreator)

	export, err := f.svc.Admin.ExportUsers(context.Background(), admin, ExportUsers{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "users-20240615.csv", export.FileName)
	assert.Equal(t, "text/csv", export.ContentType)

	lines := strings.Split(strings.TrimSpace(string(export.Data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,email,"))
	assert.Contains(t, lines[1], "student@example.com")
}

func TestPlatformAnalyticsIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	_, student := f.user(t, "student@example.com", models.RoleStudent)
	_, admin := f.user(t, "admin@example.com", models.RoleAdmin)

	_, err := f.svc.Admin.PlatformAnalytics(context.Background(), student, GetPlatformAnalytics{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	stats, err := f.svc.Admin.PlatformAnalytics(context.Background(), admin, GetPlatformAnalytics{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
}
