package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/app/models/dto"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/events"
)

func assertPrefixSums(t *testing.T, rows []*models.PointsTransaction) {
	t.Helper()
	var running int64
	for i, r := range rows {
		running += r.Points
		assert.Equal(t, running, r.BalanceAfter, "row %d", i)
	}
}

func TestRecordTransaction_BalanceFollowsHistory(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	first, err := env.svc.Ledger.RecordTransaction(ctx, RecordInput{
		UserID: user.ID, Amount: 100, Source: models.SourceSessionHosted,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.BalanceAfter)
	assert.Equal(t, models.TransactionEarned, first.TransactionType)

	second, err := env.svc.Ledger.RecordTransaction(ctx, RecordInput{
		UserID: user.ID, Amount: -20, Source: models.SourceAdminAdjustment,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(80), second.BalanceAfter)
	assert.Equal(t, models.TransactionSpent, second.TransactionType)

	assert.Equal(t, int64(80), env.users.totalPoints(user.ID))
	assertPrefixSums(t, env.points.history(user.ID))
	assert.Equal(t, 2, env.publisher.count(events.PointsRecorded))
}

func TestRecordTransaction_Rejects(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	tests := []struct {
		name    string
		in      RecordInput
		wantErr error
	}{
		{
			name:    "zero amount",
			in:      RecordInput{UserID: user.ID, Amount: 0, Source: models.SourceMentorship},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "unknown source",
			in:      RecordInput{UserID: user.ID, Amount: 5, Source: "lottery"},
			wantErr: apperrors.ErrInvalidSource,
		},
		{
			name:    "missing profile",
			in:      RecordInput{UserID: uuid.New(), Amount: 5, Source: models.SourceMentorship},
			wantErr: apperrors.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Ledger.RecordTransaction(context.Background(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, env.points.history(user.ID))
	assert.Equal(t, int64(0), env.users.totalPoints(user.ID))
}

func TestRecordTransaction_ConcurrentWritesKeepInvariant(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			amount := int64(3)
			if i%4 == 0 {
				amount = -1
			}
			_, err := env.svc.Ledger.RecordTransaction(context.Background(), RecordInput{
				UserID: user.ID, Amount: amount, Source: models.SourceCommunityContribution,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rows := env.points.history(user.ID)
	require.Len(t, rows, writers)
	assertPrefixSums(t, rows)
	assert.Equal(t, rows[len(rows)-1].BalanceAfter, env.users.totalPoints(user.ID))
	assert.Equal(t, int64(30*3-10), env.users.totalPoints(user.ID))
}

func TestAdjustPoints_TransactionTypes(t *testing.T) {
	tests := []struct {
		name    string
		points  int64
		penalty bool
		want    models.TransactionType
	}{
		{name: "credit", points: 10, want: models.TransactionEarned},
		{name: "debit", points: -5, want: models.TransactionSpent},
		{name: "penalty", points: -5, penalty: true, want: models.TransactionPenalty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			user := env.users.addUser("jane@alumni.edu")
			admin := uuid.New()

			tx, err := env.svc.Ledger.AdjustPoints(context.Background(), admin, &dto.AdjustPointsRequest{
				UserID: user.ID, Points: tt.points, Description: "correction", Penalty: tt.penalty,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, tx.TransactionType)
			assert.Equal(t, models.SourceAdminAdjustment, tx.Source)
			require.NotNil(t, tx.ReferenceID)
			assert.Equal(t, admin, *tx.ReferenceID)
		})
	}
}

func TestAddPoints_RequiresPositiveAmount(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	_, err := env.svc.Ledger.AddPoints(context.Background(), user.ID, &dto.AddPointsRequest{Points: -3})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	tx, err := env.svc.Ledger.AddPoints(context.Background(), user.ID, &dto.AddPointsRequest{Points: 7})
	require.NoError(t, err)
	assert.Equal(t, models.SourceCommunityContribution, tx.Source)
	assert.Equal(t, "Community contribution", tx.Description)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")
	ctx := context.Background()

	for _, amount := range []int64{5, 10, 15} {
		_, err := env.svc.Ledger.RecordTransaction(ctx, RecordInput{UserID: user.ID, Amount: amount, Source: models.SourceMentorship})
		require.NoError(t, err)
	}

	resp, err := env.svc.Ledger.ListTransactions(ctx, user.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, int64(30), resp.Transactions[0].BalanceAfter)
	assert.Equal(t, int64(3), resp.TotalItems)
}

func TestRecordTransaction_LocksProfileBeforeWriting(t *testing.T) {
	env := newTestEnv()
	user := env.users.addUser("jane@alumni.edu")

	_, err := env.svc.Ledger.RecordTransaction(context.Background(), RecordInput{
		UserID: user.ID, Amount: 15, Source: models.SourceCommunityContribution,
	})
	require.NoError(t, err)

	calls := env.tx.lastTx()
	require.NotEmpty(t, calls)
	assert.Equal(t, "GetProfileForUpdate", calls[0], "the profile lock is the first statement")
	assertCallOrder(t, calls, "GetProfileForUpdate", "CreateTransaction", "UpdateTotalPoints")
}
