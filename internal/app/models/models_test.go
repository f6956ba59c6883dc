package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(t *testing.T, s string) *ClockTime {
	t.Helper()
	c, err := ParseClockTime(s)
	require.NoError(t, err)
	return &c
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("07:05")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 7, Minute: 5}, c)
	assert.Equal(t, "07:05", c.String())

	for _, bad := range []string{"", "24:00", "12:60", "noon"} {
		_, err := ParseClockTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsQuietHours(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2024, 3, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		start, end string
		now        time.Time
		want       bool
	}{
		{"inside same-day window", "13:00", "14:00", at(13, 30), true},
		{"window bounds are inclusive", "13:00", "14:00", at(14, 0), true},
		{"outside same-day window", "13:00", "14:00", at(15, 0), false},
		{"late side of overnight window", "22:00", "07:00", at(23, 15), true},
		{"early side of overnight window", "22:00", "07:00", at(6, 59), true},
		{"daytime outside overnight window", "22:00", "07:00", at(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultNotificationPreference(uuid.New())
			p.QuietHoursStart = clock(t, tt.start)
			p.QuietHoursEnd = clock(t, tt.end)
			assert.Equal(t, tt.want, p.IsQuietHours(tt.now))
		})
	}

	t.Run("half-open window is ignored", func(t *testing.T) {
		p := DefaultNotificationPreference(uuid.New())
		p.QuietHoursStart = clock(t, "00:00")
		assert.False(t, p.IsQuietHours(at(0, 30)))
	})
}

func TestDefaultNotificationPreference(t *testing.T) {
	p := DefaultNotificationPreference(uuid.New())

	assert.False(t, p.EmailEnabled(CategoryCommunity))
	assert.False(t, p.EmailEnabled(CategoryCareer))
	assert.True(t, p.EmailEnabled(CategorySessions))
	for _, c := range []NotificationCategory{
		CategorySessions, CategoryRecordings, CategoryFeedback, CategoryCommunity,
		CategoryMilestones, CategoryMentorship, CategoryCareer,
	} {
		assert.True(t, p.InAppEnabled(c), c)
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	assert.True(t, SessionDraft.CanTransitionTo(SessionScheduled))
	assert.True(t, SessionScheduled.CanTransitionTo(SessionLive))
	assert.True(t, SessionLive.CanTransitionTo(SessionCompleted))
	assert.False(t, SessionLive.CanTransitionTo(SessionCancelled))
	assert.False(t, SessionCompleted.CanTransitionTo(SessionLive))
	assert.False(t, SessionCancelled.CanTransitionTo(SessionScheduled))

	assert.True(t, SessionScheduled.Joinable())
	assert.True(t, SessionLive.Joinable())
	assert.False(t, SessionDraft.Joinable())
	assert.False(t, SessionCompleted.Joinable())
}

func TestRelationshipStatusTransitions(t *testing.T) {
	assert.True(t, RelationshipPending.CanTransitionTo(RelationshipActive))
	assert.True(t, RelationshipPaused.CanTransitionTo(RelationshipActive))
	assert.False(t, RelationshipPending.CanTransitionTo(RelationshipCompleted))
	assert.False(t, RelationshipCompleted.CanTransitionTo(RelationshipActive))
	assert.False(t, RelationshipTerminated.CanTransitionTo(RelationshipActive))

	assert.True(t, RelationshipTerminated.IsTerminal())
	assert.False(t, RelationshipPaused.IsTerminal())
	assert.False(t, RelationshipStatus("archived").Valid())
}

func TestMentorshipSessionTransitions(t *testing.T) {
	assert.True(t, MentorshipSessionScheduled.CanTransitionTo(MentorshipSessionConfirmed))
	assert.True(t, MentorshipSessionConfirmed.CanTransitionTo(MentorshipSessionInProgress))
	assert.True(t, MentorshipSessionInProgress.CanTransitionTo(MentorshipSessionCompleted))
	assert.False(t, MentorshipSessionScheduled.CanTransitionTo(MentorshipSessionCompleted))
	assert.False(t, MentorshipSessionCompleted.CanTransitionTo(MentorshipSessionCancelled))
}

func TestVerificationDecisionsAreFinal(t *testing.T) {
	admin := uuid.New()
	now := time.Now()

	v := &AlumniVerification{Status: VerificationPending}
	require.True(t, v.Approve(admin, now))
	assert.Equal(t, VerificationVerified, v.Status)
	require.NotNil(t, v.VerifiedAt)
	assert.Equal(t, admin, *v.VerifiedBy)

	assert.False(t, v.Reject(admin, now))
	assert.False(t, v.Approve(admin, now))
	assert.Equal(t, VerificationVerified, v.Status)

	r := &AlumniVerification{Status: VerificationPending}
	require.True(t, r.Reject(admin, now))
	assert.Nil(t, r.VerifiedAt)
	assert.True(t, r.Status.IsTerminal())
}

func TestTransactionTypeFor(t *testing.T) {
	assert.Equal(t, TransactionEarned, TransactionTypeFor(10, false))
	assert.Equal(t, TransactionBonus, TransactionTypeFor(10, true))
	assert.Equal(t, TransactionSpent, TransactionTypeFor(-10, false))
	assert.Equal(t, TransactionPenalty, TransactionTypeFor(-10, true))
}

func TestPointsSourceValid(t *testing.T) {
	assert.True(t, SourceSessionAttended.Valid())
	assert.True(t, SourceAdminAdjustment.Valid())
	assert.False(t, PointsSource("lottery").Valid())
}

func TestJobPostingAcceptsApplications(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&JobPosting{IsActive: true}).AcceptsApplications(now))
	assert.True(t, (&JobPosting{IsActive: true, ApplicationDeadline: &future}).AcceptsApplications(now))
	assert.False(t, (&JobPosting{IsActive: true, ApplicationDeadline: &past}).AcceptsApplications(now))
	assert.False(t, (&JobPosting{IsActive: false}).AcceptsApplications(now))

	assert.True(t, ApplicationWithdrawn.IsFinal())
	assert.False(t, ApplicationInterviewing.IsFinal())
}

func TestUserRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, (&User{IsStaff: true}).Role())
	assert.Equal(t, RoleMember, (&User{}).Role())
}
