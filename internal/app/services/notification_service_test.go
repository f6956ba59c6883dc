package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
)

func clock(h, m int) *models.ClockTime {
	return &models.ClockTime{Hour: h, Minute: m}
}

func setNow(env *testEnv, at time.Time) {
	env.svc.Notification.(*notificationServiceImpl).now = func() time.Time { return at }
}

func TestNotify_QuietHours(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     *models.ClockTime
		end       *models.ClockTime
		at        time.Time
		wantEmail bool
	}{
		{name: "no window", at: day.Add(23 * time.Hour), wantEmail: true},
		{name: "inside daytime window", start: clock(9, 0), end: clock(17, 0), at: day.Add(12 * time.Hour)},
		{name: "outside daytime window", start: clock(9, 0), end: clock(17, 0), at: day.Add(18 * time.Hour), wantEmail: true},
		{name: "overnight before midnight", start: clock(22, 0), end: clock(6, 0), at: day.Add(23*time.Hour + 30*time.Minute)},
		{name: "overnight after midnight", start: clock(22, 0), end: clock(6, 0), at: day.Add(2 * time.Hour)},
		{name: "overnight daytime", start: clock(22, 0), end: clock(6, 0), at: day.Add(12 * time.Hour), wantEmail: true},
		{name: "half open window ignored", start: clock(22, 0), at: day.Add(23 * time.Hour), wantEmail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			user := env.users.addUser("jane@alumni.edu")
			prefs := models.DefaultNotificationPreference(user.ID)
			prefs.QuietHoursStart, prefs.QuietHoursEnd = tt.start, tt.end
			require.NoError(t, env.notifications.UpsertPreferences(context.Background(), prefs))
			setNow(env, tt.at)

			n, err := env.svc.Notification.Notify(context.Background(), NotificationRequest{
				RecipientID: user.ID, Type: models.NotificationSessionScheduled, Title: "Session", Message: "Soon",
			})
			require.NoError(t, err)
			require.NotNil(t, n, "in-app delivery ignores quiet hours")
			assert.Equal(t, tt.wantEmail, n.IsEmailSent)
			if tt.wantEmail {
				assert.Equal(t, 1, env.mailer.count())
			} else {
				assert.Zero(t, env.mailer.count())
			}
		})
	}
}

func TestNotify_DefaultsWithoutStoredPreferences(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	n, err := env.svc.Notification.Notify(ctx, NotificationRequest{
		RecipientID: user.ID, Type: models.NotificationCommunityActivity, Title: "New post", Message: "Hi",
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, models.PriorityNormal, n.Priority)
	assert.False(t, n.IsEmailSent, "community email is off by default")
	assert.Equal(t, 1, env.pusher.count(user.ID))

	n, err = env.svc.Notification.Notify(ctx, NotificationRequest{
		RecipientID: user.ID, Type: models.NotificationMentorshipUpdate, Title: "Accepted", Message: "Yes",
		Priority: models.PriorityHigh, Reference: &models.Reference{ID: uuid.New(), Type: "mentorship"},
	})
	require.NoError(t, err)
	assert.True(t, n.IsEmailSent)
	assert.Equal(t, "mentorship", n.ReferenceType)
	assert.NotNil(t, n.ReferenceID)

	stored := env.notifications.forUser(user.ID, models.NotificationMentorshipUpdate)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsEmailSent)
}

func TestNotify_InAppDisabledStoresNothing(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	prefs := models.DefaultNotificationPreference(user.ID)
	prefs.InAppSessions = false
	require.NoError(t, env.notifications.UpsertPreferences(context.Background(), prefs))

	n, err := env.svc.Notification.Notify(context.Background(), NotificationRequest{
		RecipientID: user.ID, Type: models.NotificationSessionReminder, Title: "Reminder", Message: "Tomorrow",
	})
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, env.notifications.forUser(user.ID, ""))
	assert.Zero(t, env.pusher.count(user.ID))
	assert.Equal(t, 1, env.mailer.count(), "email still follows its own switch")
}

func TestNotify_MailerFailureKeepsInboxRow(t *testing.T) {
	env := newTestEnv()
	env.mailer.err = errors.New("smtp down")
	user := env.users.addUser("jane@alumni.edu")

	n, err := env.svc.Notification.Notify(context.Background(), NotificationRequest{
		RecipientID: user.ID, Type: models.NotificationFeedbackReceived, Title: "Feedback", Message: "5 stars",
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.False(t, n.IsEmailSent)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv()
	owner := env.users.addUser("jane@alumni.edu")
	other := env.users.addUser("joe@alumni.edu")
	ctx := context.Background()

	n, err := env.svc.Notification.Notify(ctx, NotificationRequest{
		RecipientID: owner.ID, Type: models.NotificationBadgeEarned, Title: "Badge", Message: "Nice",
	})
	require.NoError(t, err)

	err = env.svc.Notification.MarkRead(ctx, other.ID, n.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	first := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	setNow(env, first)
	require.NoError(t, env.svc.Notification.MarkRead(ctx, owner.ID, n.ID))

	setNow(env, first.Add(time.Hour))
	require.NoError(t, env.svc.Notification.MarkRead(ctx, owner.ID, n.ID))

	stored, err := env.notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)
	assert.Equal(t, first, *stored.ReadAt)

	unread, err := env.svc.Notification.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllRead_AndList(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.Notification.Notify(ctx, NotificationRequest{
			RecipientID: user.ID, Type: models.NotificationCareerOpportunity, Title: "Job", Message: "Apply",
		})
		require.NoError(t, err)
	}

	resp, err := env.svc.Notification.List(ctx, user.ID, true, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, int64(3), resp.UnreadCount)
	assert.Equal(t, int64(3), resp.TotalItems)

	count, err := env.svc.Notification.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = env.svc.Notification.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdatePreferences(t *testing.T) {
	off := false
	on := true
	start, end, blank, bad := "22:00", "06:30", "", "25:99"

	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	prefs, err := env.svc.Notification.UpdatePreferences(ctx, user.ID, &dto.UpdatePreferencesRequest{
		EmailSessions:   &off,
		EmailCareer:     &on,
		QuietHoursStart: &start,
		QuietHoursEnd:   &end,
	})
	require.NoError(t, err)
	assert.False(t, prefs.EmailSessions)
	assert.True(t, prefs.EmailCareer)
	assert.True(t, prefs.InAppSessions, "untouched switches keep their defaults")
	assert.Equal(t, clock(22, 0), prefs.QuietHoursStart)
	assert.Equal(t, clock(6, 30), prefs.QuietHoursEnd)

	prefs, err = env.svc.Notification.UpdatePreferences(ctx, user.ID, &dto.UpdatePreferencesRequest{QuietHoursEnd: &blank})
	require.NoError(t, err)
	assert.Equal(t, clock(22, 0), prefs.QuietHoursStart)
	assert.Nil(t, prefs.QuietHoursEnd)
	assert.False(t, prefs.EmailSessions)

	_, err = env.svc.Notification.UpdatePreferences(ctx, user.ID, &dto.UpdatePreferencesRequest{QuietHoursStart: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, err := env.svc.Notification.GetPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, clock(22, 0), stored.QuietHoursStart)
}
