package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/auth"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/events"
)

func submitRequest(institution string, year int) *dto.SubmitVerificationRequest {
	return &dto.SubmitVerificationRequest{
		Institution:        institution,
		GraduationYear:     year,
		DegreeProgram:      "Computer Science",
		VerificationMethod: models.VerificationMethodManual,
	}
}

func TestVerificationSubmit_Validation(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	tests := []struct {
		name string
		req  *dto.SubmitVerificationRequest
	}{
		{name: "blank institution", req: submitRequest("  ", 2015)},
		{name: "year too early", req: submitRequest("MIT", 1850)},
		{name: "year too late", req: submitRequest("MIT", 2200)},
		{name: "unknown method", req: &dto.SubmitVerificationRequest{
			Institution: "MIT", GraduationYear: 2015, VerificationMethod: "carrier pigeon",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Verification.Submit(context.Background(), user.ID, tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestVerificationSubmit_DuplicateWhilePendingOrVerified(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, v.Status)

	_, err = env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.svc.Verification.Approve(ctx, v.ID, uuid.New())
	require.NoError(t, err)

	_, err = env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	other, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2017))
	require.NoError(t, err)
	assert.NotEqual(t, v.ID, other.ID)
}

func TestVerificationApprove_SetsAlumniAndNotifies(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	admin := uuid.New()
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)

	approved, err := env.svc.Verification.Approve(ctx, v.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, approved.Status)
	require.NotNil(t, approved.VerifiedAt)
	require.NotNil(t, approved.VerifiedBy)
	assert.Equal(t, admin, *approved.VerifiedBy)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAlumni)

	assert.Len(t, env.notifications.forUser(user.ID, models.NotificationMilestoneAchieved), 1)
	assert.Equal(t, 1, env.publisher.count(events.VerificationDecided))
}

func TestVerificationReject_LeavesAlumniFlag(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)

	rejected, err := env.svc.Verification.Reject(ctx, v.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, rejected.Status)
	assert.Nil(t, rejected.VerifiedAt)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAlumni)
}

func TestVerificationDecisions_AreFinal(t *testing.T) {
	tests := []struct {
		name  string
		first models.VerificationStatus
		then  models.VerificationStatus
	}{
		{name: "approve twice", first: models.VerificationVerified, then: models.VerificationVerified},
		{name: "reject after approve", first: models.VerificationVerified, then: models.VerificationRejected},
		{name: "approve after reject", first: models.VerificationRejected, then: models.VerificationVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			user := env.users.addUser("jane@alumni.edu")
			ctx := context.Background()

			v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
			require.NoError(t, err)

			_, err = env.svc.Verification.Decide(ctx, v.ID, uuid.New(), tt.first)
			require.NoError(t, err)

			_, err = env.svc.Verification.Decide(ctx, v.ID, uuid.New(), tt.then)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

			stored, err := env.verifications.GetByID(ctx, v.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.first, stored.Status)
		})
	}
}

func TestVerificationDecide_RejectsPendingAsDecision(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	v, err := env.svc.Verification.Submit(context.Background(), user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)

	_, err = env.svc.Verification.Decide(context.Background(), v.ID, uuid.New(), models.VerificationPending)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestVerificationGet_HiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv()
	owner := env.users.addUser("jane@alumni.edu")
	stranger := env.users.addUser("joe@alumni.edu")
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, owner.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)

	_, err = env.svc.Verification.Get(ctx, auth.Actor{UserID: owner.ID, Role: models.RoleMember}, v.ID)
	assert.NoError(t, err)

	_, err = env.svc.Verification.Get(ctx, auth.Actor{UserID: stranger.ID, Role: models.RoleMember}, v.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.svc.Verification.Get(ctx, auth.Actor{UserID: uuid.New(), Role: models.RoleAdmin}, v.ID)
	assert.NoError(t, err)
}

func TestVerificationApprove_TriggersAlumniBadge(t *testing.T) {
	env := newTestEnv(&models.Badge{Name: "Verified Alumni", Criteria: "alumni", IsActive: true})
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)
	_, err = env.svc.Verification.Approve(ctx, v.ID, uuid.New())
	require.NoError(t, err)

	earned, err := env.svc.Badge.ListUserBadges(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "Verified Alumni", earned[0].Badge.Name)
}

func TestVerificationSubmit_AllowedAgainAfterRejection(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	first, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)
	_, err = env.svc.Verification.Reject(ctx, first.ID, uuid.New())
	require.NoError(t, err)

	second, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.VerificationPending, second.Status)

	// the store constraint still covers pending and verified rows
	dup := &models.AlumniVerification{
		UserID: user.ID, Institution: "MIT", GraduationYear: 2015, Status: models.VerificationPending,
	}
	assert.ErrorIs(t, env.verifications.Create(ctx, dup), apperrors.ErrDuplicatePending)
}

func TestVerificationApprove_LocksRowBeforeDeciding(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	v, err := env.svc.Verification.Submit(ctx, user.ID, submitRequest("MIT", 2015))
	require.NoError(t, err)
	_, err = env.svc.Verification.Approve(ctx, v.ID, uuid.New())
	require.NoError(t, err)

	calls := env.tx.lastTx()
	require.NotEmpty(t, calls)
	assert.Equal(t, "GetByIDForUpdate", calls[0])
	assertCallOrder(t, calls, "GetByIDForUpdate", "UpdateDecision")
}
