package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/Astemirdum/library-lending/library/migrations"
	"github.com/Astemirdum/library-lending/pkg/postgres/pgtest"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostgresRepo(t *testing.T) (repository.Repository, string) {
	t.Helper()
	pool := pgtest.Pool(t, migrations.MigrationFiles)
	repo, err := repository.NewRepository(pool, zap.NewNop())
	require.NoError(t, err)

	titleUid := uuid.NewString()
	l := ledger.NewPostgres(pool, clockwork.NewRealClock(), zap.NewNop())
	_, err = l.UpsertTitle(context.Background(), model.Title{TitleUid: titleUid, TotalCopies: 2})
	require.NoError(t, err)
	return repo, titleUid
}

func TestRepository_UpdateReservationCompareAndSet(t *testing.T) {
	repo, titleUid := newPostgresRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rsv, err := repo.CreateReservation(ctx, model.Reservation{
		ReservationUid: uuid.NewString(),
		TitleUid:       titleUid,
		Patron:         "alice",
		ReservedAt:     now,
		RequestedDate:  now,
		ExpirationDate: now.Add(72 * time.Hour),
		Status:         model.ReservationPending,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	require.Nil(t, rsv.HoldUid)

	_, err = repo.CreateReservation(ctx, rsv)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	hold := uuid.NewString()
	approved := rsv
	approved.Status = model.ReservationApproved
	approved.HoldUid = &hold
	require.NoError(t, repo.UpdateReservation(ctx, approved, model.ReservationPending))

	err = repo.UpdateReservation(ctx, approved, model.ReservationPending)
	require.ErrorIs(t, err, repository.ErrStale)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	missing := approved
	missing.ReservationUid = uuid.NewString()
	require.ErrorIs(t, repo.UpdateReservation(ctx, missing, model.ReservationPending), errs.ErrNotFound)

	got, err := repo.GetReservation(ctx, rsv.ReservationUid)
	require.NoError(t, err)
	require.Equal(t, model.ReservationApproved, got.Status)
	require.Equal(t, hold, *got.HoldUid)
	require.True(t, got.ExpirationDate.Equal(rsv.ExpirationDate))

	items, err := repo.ListReservations(ctx, model.ReservationFilter{
		TitleUid: titleUid,
		Statuses: []model.ReservationStatus{model.ReservationApproved},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	expiresBefore := now.Add(time.Hour)
	items, err = repo.ListReservations(ctx, model.ReservationFilter{TitleUid: titleUid, ExpiresBefore: &expiresBefore})
	require.NoError(t, err)
	require.Empty(t, items)

	holds, err := repo.CountActiveHolds(ctx, titleUid)
	require.NoError(t, err)
	require.Equal(t, 1, holds)
}

func TestRepository_RacingLoanUpdates(t *testing.T) {
	repo, titleUid := newPostgresRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	loan, err := repo.CreateLoan(ctx, model.Loan{
		LoanUid:    uuid.NewString(),
		TitleUid:   titleUid,
		Patron:     "bob",
		HoldUid:    uuid.NewString(),
		BorrowedAt: now,
		DueDate:    now.Add(14 * 24 * time.Hour),
		Status:     model.LoanBorrowed,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	require.False(t, loan.LateFee.Valid)

	returned := loan
	returned.Status = model.LoanReturned
	returned.ReturnedAt = &now
	returned.LateFee = decimal.NewNullDecimal(decimal.RequireFromString("1.50"))

	var (
		wg         sync.WaitGroup
		won, stale atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithinTx(ctx, func(ctx context.Context) error {
				return repo.UpdateLoan(ctx, returned, model.LoanBorrowed)
			})
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, repository.ErrStale):
				stale.Add(1)
			default:
				t.Errorf("UpdateLoan: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, won.Load())
	require.EqualValues(t, 7, stale.Load())

	got, err := repo.GetLoan(ctx, loan.LoanUid)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, got.Status)
	require.Equal(t, "1.50", got.LateFee.Decimal.StringFixed(2))

	holds, err := repo.CountActiveHolds(ctx, titleUid)
	require.NoError(t, err)
	require.Equal(t, 0, holds)
}
