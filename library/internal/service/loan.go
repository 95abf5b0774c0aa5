package service

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/fine"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

// Loans enacts the borrow transaction state machine.
type Loans struct {
	repo         repository.Repository
	ledger       ledger.Ledger
	reservations *Reservations
	fines        fine.Policy
	policy       model.LoanPolicy
	clock        clockwork.Clock
	log          *zap.Logger
}

func NewLoans(
	repo repository.Repository,
	l ledger.Ledger,
	reservations *Reservations,
	fines fine.Policy,
	policy model.LoanPolicy,
	clock clockwork.Clock,
	log *zap.Logger,
) *Loans {
	return &Loans{
		repo:         repo,
		ledger:       l,
		reservations: reservations,
		fines:        fines,
		policy:       policy,
		clock:        clock,
		log:          log.Named("loans"),
	}
}

// IssueDirect lends a copy over the counter. durationDays <= 0 uses the policy duration.
func (l *Loans) IssueDirect(ctx context.Context, patron, titleUid string, durationDays int) (model.Loan, error) {
	if patron == "" {
		return model.Loan{}, errors.Wrap(errs.ErrValidation, "patron is required")
	}
	if titleUid == "" {
		return model.Loan{}, errors.Wrap(errs.ErrValidation, "titleUid is required")
	}
	if durationDays <= 0 {
		durationDays = l.policy.DurationDays
	}
	hold, err := l.ledger.TryHold(ctx, titleUid)
	if err != nil {
		return model.Loan{}, err
	}
	now := l.clock.Now()
	loan, err := l.repo.CreateLoan(ctx, model.Loan{
		LoanUid:    uuid.NewString(),
		TitleUid:   titleUid,
		Patron:     patron,
		HoldUid:    hold.HoldUid,
		BorrowedAt: now,
		DueDate:    now.Add(time.Duration(durationDays) * day),
		Status:     model.LoanBorrowed,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Loan{}, releaseAfter(ctx, l.ledger, l.log, titleUid, err)
	}
	return loan, nil
}

// IssueFromReservation turns an approved reservation into a loan. The
// reservation's hold moves to the loan, so the counter does not change.
func (l *Loans) IssueFromReservation(ctx context.Context, reservationUid string) (model.Loan, model.Reservation, error) {
	rsv, err := l.reservations.MarkConverted(ctx, reservationUid)
	if err != nil {
		return model.Loan{}, rsv, err
	}
	holdUid := ""
	if rsv.HoldUid != nil {
		holdUid = *rsv.HoldUid
	}
	now := l.clock.Now()
	loan, err := l.repo.CreateLoan(ctx, model.Loan{
		LoanUid:        uuid.NewString(),
		TitleUid:       rsv.TitleUid,
		Patron:         rsv.Patron,
		ReservationUid: &rsv.ReservationUid,
		HoldUid:        holdUid,
		BorrowedAt:     now,
		DueDate:        now.Add(time.Duration(l.policy.DurationDays) * day),
		Status:         model.LoanBorrowed,
		UpdatedAt:      now,
	})
	if err != nil {
		// a transactional store rolls the conversion back by itself
		if revertErr := l.reservations.revertConversion(ctx, rsv); revertErr != nil {
			l.log.Warn("revert conversion", zap.String("reservation_uid", reservationUid), zap.Error(revertErr))
		}
		return model.Loan{}, rsv, err
	}
	return loan, rsv, nil
}

// Extend pushes the due date out. extraDays <= 0 uses the policy extension.
// An overdue loan whose new due date is in the future is borrowed again.
func (l *Loans) Extend(ctx context.Context, loanUid string, extraDays int) (model.Loan, error) {
	loan, err := l.repo.GetLoan(ctx, loanUid)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.Status == model.LoanReturned {
		return loan, errors.Wrapf(errs.ErrAlreadyReturned, "loan %s", loanUid)
	}
	if l.policy.MaxExtensions > 0 && loan.Extensions >= l.policy.MaxExtensions {
		return loan, errors.Wrapf(errs.ErrExtensionLimit, "loan %s extended %d times", loanUid, loan.Extensions)
	}
	if extraDays <= 0 {
		extraDays = l.policy.ExtensionDays
	}
	now := l.clock.Now()
	from := loan.Status
	loan.DueDate = loan.DueDate.Add(time.Duration(extraDays) * day)
	loan.Extensions++
	loan.UpdatedAt = now
	if from == model.LoanOverdue && loan.DueDate.After(now) {
		if err = checkLoan(loan, model.LoanBorrowed); err != nil {
			return loan, err
		}
		loan.Status = model.LoanBorrowed
	}
	if err = l.repo.UpdateLoan(ctx, loan, from); err != nil {
		return loan, err
	}
	return loan, nil
}

// Return closes the loan, charges the late fee and gives the copy back.
// A nil returnedAt means now.
func (l *Loans) Return(ctx context.Context, loanUid string, returnedAt *time.Time) (model.Loan, error) {
	loan, err := l.repo.GetLoan(ctx, loanUid)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.Status == model.LoanReturned {
		return loan, errors.Wrapf(errs.ErrAlreadyReturned, "loan %s", loanUid)
	}
	if err = checkLoan(loan, model.LoanReturned); err != nil {
		return loan, err
	}
	at := l.clock.Now()
	if returnedAt != nil {
		at = *returnedAt
	}
	if at.Before(loan.BorrowedAt) {
		return loan, errors.Wrap(errs.ErrValidation, "returnedAt is before borrowedAt")
	}
	prev := loan
	loan.Status = model.LoanReturned
	loan.ReturnedAt = &at
	loan.LateFee = decimal.NewNullDecimal(fine.ComputeLateFee(loan.DueDate, at, l.fines))
	loan.UpdatedAt = l.clock.Now()
	if err = l.repo.UpdateLoan(ctx, loan, prev.Status); err != nil {
		if errors.Is(err, repository.ErrStale) {
			if cur, getErr := l.repo.GetLoan(ctx, loanUid); getErr == nil && cur.Status == model.LoanReturned {
				return cur, errors.Wrapf(errs.ErrAlreadyReturned, "loan %s", loanUid)
			}
		}
		return loan, err
	}
	if err = l.ledger.Release(ctx, loan.TitleUid); err != nil {
		if restoreErr := l.repo.UpdateLoan(ctx, prev, model.LoanReturned); restoreErr != nil {
			l.log.Warn("restore loan", zap.String("loan_uid", loanUid),
				zap.NamedError("cause", err), zap.Error(restoreErr))
		}
		return prev, err
	}
	return loan, nil
}

// MarkOverdue flips a borrowed loan past its due date to overdue. It reports
// false when the loan is not borrowed, not yet due, or was changed concurrently.
func (l *Loans) MarkOverdue(ctx context.Context, loanUid string, now time.Time) (model.Loan, bool, error) {
	loan, err := l.repo.GetLoan(ctx, loanUid)
	if err != nil {
		return model.Loan{}, false, err
	}
	if loan.Status != model.LoanBorrowed || !loan.DueDate.Before(now) {
		return loan, false, nil
	}
	loan.Status = model.LoanOverdue
	loan.UpdatedAt = now
	if err = l.repo.UpdateLoan(ctx, loan, model.LoanBorrowed); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return loan, false, nil
		}
		return loan, false, err
	}
	return loan, true, nil
}

// SweepOverdue marks every borrowed loan due before now as overdue. Each
// flip commits on its own; running it twice flips nothing the second time.
func (l *Loans) SweepOverdue(ctx context.Context, now time.Time) ([]model.Loan, error) {
	candidates, err := l.repo.ListLoans(ctx, model.LoanFilter{
		Statuses:  []model.LoanStatus{model.LoanBorrowed},
		DueBefore: &now,
	})
	if err != nil {
		return nil, err
	}
	flipped := make([]model.Loan, 0, len(candidates))
	var errSum error
	for _, c := range candidates {
		var (
			loan model.Loan
			ok   bool
		)
		err := l.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
			loan, ok, err = l.MarkOverdue(ctx, c.LoanUid, now)
			return err
		})
		if err != nil {
			errSum = multierr.Append(errSum, errors.Wrapf(err, "loan %s", c.LoanUid))
			continue
		}
		if ok {
			flipped = append(flipped, loan)
		}
	}
	return flipped, errSum
}

// AccruedFee is the fee the loan would carry if it were returned at at.
func (l *Loans) AccruedFee(loan model.Loan, at time.Time) decimal.Decimal {
	if loan.Status == model.LoanReturned && loan.LateFee.Valid {
		return loan.LateFee.Decimal
	}
	return fine.ComputeLateFee(loan.DueDate, at, l.fines)
}

func checkLoan(loan model.Loan, to model.LoanStatus) error {
	if !loan.Status.CanTransitionTo(to) {
		return &errs.TransitionError{
			Entity: model.EntityLoan,
			ID:     loan.LoanUid,
			From:   string(loan.Status),
			To:     string(to),
		}
	}
	return nil
}
