package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockReferralRepository(t *testing.T) (*GormReferralRepository, sqlmock.Sqlmock) {
	db, mock := testutil.NewMockDB(t)
	return NewGormReferralRepository(db), mock
}

func TestGormReferralRepository_TotalsByStatus_SingleGroupedQuery(t *testing.T) {
	repo, mock := newMockReferralRepository(t)

	affiliateID := uuid.New()
	rows := sqlmock.NewRows([]string{"status", "count", "amount"}).
		AddRow("pending", 2, "110000.00").
		AddRow("paid", 1, "75000.00")

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count, COALESCE\(SUM\(commission_amount\), 0\) AS amount FROM "referrals" WHERE affiliate_id = \$1 GROUP BY .*status`).
		WithArgs(affiliateID).
		WillReturnRows(rows)

	totals, err := repo.TotalsByStatus(context.Background(), affiliateID)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, referral.StatusPending, totals[0].Status)
	assert.Equal(t, int64(2), totals[0].Count)
	assert.True(t, totals[1].Amount.Equal(decimal.NewFromInt(75000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReferralRepository_Update_VersionGuard(t *testing.T) {
	repo, mock := newMockReferralRepository(t)

	ref := &referral.Referral{Status: referral.StatusConfirmed}
	ref.ID = uuid.New()
	ref.Version = 2

	t.Run("no matching version", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "referrals" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), ref)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("driver error is returned", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectExec(`UPDATE "referrals"`).WillReturnError(boom)

		err := repo.Update(context.Background(), ref)
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
