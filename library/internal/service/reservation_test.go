package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/Astemirdum/library-lending/library/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReservations_Transitions(t *testing.T) {
	t.Parallel()
	type step func(ctx context.Context, r *service.Reservations, uid string) error

	approve := func(ctx context.Context, r *service.Reservations, uid string) error {
		_, err := r.Approve(ctx, uid)
		return err
	}
	decline := func(ctx context.Context, r *service.Reservations, uid string) error {
		_, err := r.Decline(ctx, uid, "")
		return err
	}
	convert := func(ctx context.Context, r *service.Reservations, uid string) error {
		_, err := r.MarkConverted(ctx, uid)
		return err
	}

	tests := []struct {
		name      string
		steps     []step
		lapse     bool
		wantErr   error
		status    model.ReservationStatus
		available int
	}{
		{name: "approve", steps: []step{approve}, status: model.ReservationApproved, available: 1},
		{name: "decline pending", steps: []step{decline}, status: model.ReservationDeclined, available: 2},
		{name: "decline approved releases", steps: []step{approve, decline}, status: model.ReservationDeclined, available: 2},
		{name: "convert keeps hold", steps: []step{approve, convert}, status: model.ReservationConverted, available: 1},
		{name: "convert twice", steps: []step{approve, convert, convert}, wantErr: errs.ErrAlreadyConverted, status: model.ReservationConverted, available: 1},
		{name: "convert pending", steps: []step{convert}, wantErr: errs.ErrInvalidTransition, status: model.ReservationPending, available: 2},
		{name: "approve twice", steps: []step{approve, approve}, wantErr: errs.ErrInvalidTransition, status: model.ReservationApproved, available: 1},
		{name: "decline converted", steps: []step{approve, convert, decline}, wantErr: errs.ErrInvalidTransition, status: model.ReservationConverted, available: 1},
		{name: "convert lapsed", steps: []step{approve, convert}, lapse: true, wantErr: errs.ErrInvalidTransition, status: model.ReservationApproved, available: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			clock := clockwork.NewFakeClockAt(start)
			l := ledger.NewMemory(clock, zap.NewNop())
			_, err := l.UpsertTitle(ctx, model.Title{TitleUid: "t1", TotalCopies: 2})
			require.NoError(t, err)
			repo := repository.NewMemory()
			r := service.NewReservations(repo, l, clock, zap.NewNop())

			rsv, err := r.Create(ctx, "alice", "t1", start, start.AddDate(0, 0, 3))
			require.NoError(t, err)

			for i, s := range tt.steps {
				last := i == len(tt.steps)-1
				if last && tt.lapse {
					clock.Advance(4 * 24 * time.Hour)
				}
				err = s(ctx, r, rsv.ReservationUid)
				if !last {
					require.NoError(t, err)
				}
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := repo.GetReservation(ctx, rsv.ReservationUid)
			require.NoError(t, err)
			require.Equal(t, tt.status, got.Status)

			title, err := l.Title(ctx, "t1")
			require.NoError(t, err)
			require.Equal(t, tt.available, title.AvailableCopies)
		})
	}
}

func TestReservations_ExpireIfPast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	l := ledger.NewMemory(clock, zap.NewNop())
	_, err := l.UpsertTitle(ctx, model.Title{TitleUid: "t1", TotalCopies: 1})
	require.NoError(t, err)
	r := service.NewReservations(repository.NewMemory(), l, clock, zap.NewNop())

	pending, err := r.Create(ctx, "bob", "t1", start, start.Add(time.Hour))
	require.NoError(t, err)
	_, expired, err := r.ExpireIfPast(ctx, pending.ReservationUid, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, expired)

	rsv, err := r.Create(ctx, "alice", "t1", start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = r.Approve(ctx, rsv.ReservationUid)
	require.NoError(t, err)

	_, expired, err = r.ExpireIfPast(ctx, rsv.ReservationUid, start.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, expired, "expiration date equal to now is not past")

	got, expired, err := r.ExpireIfPast(ctx, rsv.ReservationUid, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, expired)
	require.Equal(t, model.ReservationExpired, got.Status)

	got, expired, err = r.ExpireIfPast(ctx, rsv.ReservationUid, start.Add(3*time.Hour))
	require.NoError(t, err)
	require.False(t, expired)
	require.Equal(t, model.ReservationExpired, got.Status)

	title, err := l.Title(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 1, title.AvailableCopies)
}

// stuckLedger refuses every release.
type stuckLedger struct {
	*ledger.Memory
}

func (stuckLedger) Release(_ context.Context, titleUid string) error {
	return errors.Wrapf(errs.ErrLedgerInvariant, "title %s", titleUid)
}

func TestReservations_FailedReleaseRestoresStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	mem := ledger.NewMemory(clock, zap.NewNop())
	_, err := mem.UpsertTitle(ctx, model.Title{TitleUid: "t1", TotalCopies: 2})
	require.NoError(t, err)
	repo := repository.NewMemory()
	r := service.NewReservations(repo, stuckLedger{mem}, clock, zap.NewNop())

	declined, err := r.Create(ctx, "alice", "t1", start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = r.Approve(ctx, declined.ReservationUid)
	require.NoError(t, err)
	_, err = r.Decline(ctx, declined.ReservationUid, "damaged")
	require.ErrorIs(t, err, errs.ErrLedgerInvariant)

	expiring, err := r.Create(ctx, "bob", "t1", start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = r.Approve(ctx, expiring.ReservationUid)
	require.NoError(t, err)
	_, expired, err := r.ExpireIfPast(ctx, expiring.ReservationUid, start.Add(2*time.Hour))
	require.ErrorIs(t, err, errs.ErrLedgerInvariant)
	require.False(t, expired)

	for _, uid := range []string{declined.ReservationUid, expiring.ReservationUid} {
		got, err := repo.GetReservation(ctx, uid)
		require.NoError(t, err)
		require.Equal(t, model.ReservationApproved, got.Status)
		require.NotNil(t, got.HoldUid)
		require.Empty(t, got.DeclineReason)
	}
	holds, err := repo.CountActiveHolds(ctx, "t1")
	require.NoError(t, err)
	title, err := mem.Title(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, title.TotalCopies-holds, title.AvailableCopies)
}

func TestLoans_FailedReleaseRestoresLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(start)
	mem := ledger.NewMemory(clock, zap.NewNop())
	_, err := mem.UpsertTitle(ctx, model.Title{TitleUid: "t1", TotalCopies: 1})
	require.NoError(t, err)
	repo := repository.NewMemory()
	l := stuckLedger{mem}
	loans := service.NewLoans(repo, l, service.NewReservations(repo, l, clock, zap.NewNop()),
		defaultPolicy().Fine, defaultPolicy().Loan, clock, zap.NewNop())

	loan, err := loans.IssueDirect(ctx, "bob", "t1", 0)
	require.NoError(t, err)
	clock.Advance(20 * 24 * time.Hour)

	_, err = loans.Return(ctx, loan.LoanUid, nil)
	require.ErrorIs(t, err, errs.ErrLedgerInvariant)

	got, err := repo.GetLoan(ctx, loan.LoanUid)
	require.NoError(t, err)
	require.Equal(t, model.LoanBorrowed, got.Status)
	require.Nil(t, got.ReturnedAt)
	require.False(t, got.LateFee.Valid)
}
