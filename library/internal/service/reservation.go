package service

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Reservations enacts the reservation state machine. Every status change is a
// compare-and-set on the stored status; the ledger is touched only on
// approve (hold) and on decline or expiry of an approved reservation (release).
type Reservations struct {
	repo   repository.Repository
	ledger ledger.Ledger
	clock  clockwork.Clock
	log    *zap.Logger
}

func NewReservations(repo repository.Repository, l ledger.Ledger, clock clockwork.Clock, log *zap.Logger) *Reservations {
	return &Reservations{
		repo:   repo,
		ledger: l,
		clock:  clock,
		log:    log.Named("reservations"),
	}
}

func (r *Reservations) Create(ctx context.Context, patron, titleUid string, requestedDate, expirationDate time.Time) (model.Reservation, error) {
	if patron == "" {
		return model.Reservation{}, errors.Wrap(errs.ErrValidation, "patron is required")
	}
	if titleUid == "" {
		return model.Reservation{}, errors.Wrap(errs.ErrValidation, "titleUid is required")
	}
	if expirationDate.Before(requestedDate) {
		return model.Reservation{}, errors.Wrap(errs.ErrValidation, "expirationDate is before requestedDate")
	}
	if _, err := r.ledger.Title(ctx, titleUid); err != nil {
		return model.Reservation{}, err
	}
	now := r.clock.Now()
	return r.repo.CreateReservation(ctx, model.Reservation{
		ReservationUid: uuid.NewString(),
		TitleUid:       titleUid,
		Patron:         patron,
		ReservedAt:     now,
		RequestedDate:  requestedDate,
		ExpirationDate: expirationDate,
		Status:         model.ReservationPending,
		UpdatedAt:      now,
	})
}

// Approve takes a copy for a pending reservation. When the title is out of
// copies the reservation stays pending and can be approved again later.
func (r *Reservations) Approve(ctx context.Context, reservationUid string) (model.Reservation, error) {
	rsv, err := r.repo.GetReservation(ctx, reservationUid)
	if err != nil {
		return model.Reservation{}, err
	}
	if err = checkReservation(rsv, model.ReservationApproved); err != nil {
		return rsv, err
	}
	hold, err := r.ledger.TryHold(ctx, rsv.TitleUid)
	if err != nil {
		return rsv, err
	}
	from := rsv.Status
	rsv.Status = model.ReservationApproved
	rsv.HoldUid = &hold.HoldUid
	rsv.UpdatedAt = r.clock.Now()
	if err = r.repo.UpdateReservation(ctx, rsv, from); err != nil {
		return rsv, r.releaseAfter(ctx, rsv.TitleUid, err)
	}
	return rsv, nil
}

func (r *Reservations) Decline(ctx context.Context, reservationUid, reason string) (model.Reservation, error) {
	rsv, err := r.repo.GetReservation(ctx, reservationUid)
	if err != nil {
		return model.Reservation{}, err
	}
	if err = checkReservation(rsv, model.ReservationDeclined); err != nil {
		return rsv, err
	}
	prev := rsv
	rsv.Status = model.ReservationDeclined
	rsv.DeclineReason = reason
	rsv.UpdatedAt = r.clock.Now()
	if err = r.repo.UpdateReservation(ctx, rsv, prev.Status); err != nil {
		return rsv, err
	}
	if prev.Status.HoldsCopy() {
		if err = r.ledger.Release(ctx, rsv.TitleUid); err != nil {
			return prev, r.restore(ctx, prev, rsv.Status, err)
		}
	}
	return rsv, nil
}

// ExpireIfPast expires an approved reservation whose expiration date is
// before now and gives its copy back. Anything else is left untouched and
// reported with expired == false.
func (r *Reservations) ExpireIfPast(ctx context.Context, reservationUid string, now time.Time) (rsv model.Reservation, expired bool, err error) {
	rsv, err = r.repo.GetReservation(ctx, reservationUid)
	if err != nil {
		return model.Reservation{}, false, err
	}
	if rsv.Status != model.ReservationApproved || !rsv.ExpirationDate.Before(now) {
		return rsv, false, nil
	}
	prev := rsv
	rsv.Status = model.ReservationExpired
	rsv.UpdatedAt = now
	if err = r.repo.UpdateReservation(ctx, rsv, model.ReservationApproved); err != nil {
		if errors.Is(err, repository.ErrStale) {
			cur, getErr := r.repo.GetReservation(ctx, reservationUid)
			return cur, false, getErr
		}
		return rsv, false, err
	}
	if err = r.ledger.Release(ctx, rsv.TitleUid); err != nil {
		return prev, false, r.restore(ctx, prev, rsv.Status, err)
	}
	return rsv, true, nil
}

// MarkConverted hands an approved reservation's hold over to a loan. The
// hold is not released. A reservation past its expiration date is refused.
func (r *Reservations) MarkConverted(ctx context.Context, reservationUid string) (model.Reservation, error) {
	rsv, err := r.repo.GetReservation(ctx, reservationUid)
	if err != nil {
		return model.Reservation{}, err
	}
	if err = checkReservation(rsv, model.ReservationConverted); err != nil {
		return rsv, err
	}
	now := r.clock.Now()
	if rsv.ExpirationDate.Before(now) {
		return rsv, errors.Wrapf(&errs.TransitionError{
			Entity: model.EntityReservation,
			ID:     rsv.ReservationUid,
			From:   string(rsv.Status),
			To:     string(model.ReservationConverted),
		}, "expired at %s", rsv.ExpirationDate.Format(time.RFC3339))
	}
	rsv.Status = model.ReservationConverted
	rsv.UpdatedAt = now
	if err = r.repo.UpdateReservation(ctx, rsv, model.ReservationApproved); err != nil {
		if errors.Is(err, repository.ErrStale) {
			if cur, getErr := r.repo.GetReservation(ctx, reservationUid); getErr == nil &&
				cur.Status == model.ReservationConverted {
				return cur, errors.Wrapf(errs.ErrAlreadyConverted, "reservation %s", reservationUid)
			}
		}
		return rsv, err
	}
	return rsv, nil
}

// revertConversion undoes MarkConverted when the loan could not be stored.
func (r *Reservations) revertConversion(ctx context.Context, rsv model.Reservation) error {
	rsv.Status = model.ReservationApproved
	rsv.UpdatedAt = r.clock.Now()
	return r.repo.UpdateReservation(ctx, rsv, model.ReservationConverted)
}

// restore puts prev back after its status moved to cur but the copy could not
// be released. A transactional store rolls back without it.
func (r *Reservations) restore(ctx context.Context, prev model.Reservation, cur model.ReservationStatus, cause error) error {
	if err := r.repo.UpdateReservation(ctx, prev, cur); err != nil {
		r.log.Warn("restore reservation", zap.String("reservation_uid", prev.ReservationUid),
			zap.String("status", string(prev.Status)), zap.NamedError("cause", cause), zap.Error(err))
	}
	return cause
}

// releaseAfter gives back a copy taken before a failed store write.
func (r *Reservations) releaseAfter(ctx context.Context, titleUid string, cause error) error {
	return releaseAfter(ctx, r.ledger, r.log, titleUid, cause)
}

func releaseAfter(ctx context.Context, l ledger.Ledger, log *zap.Logger, titleUid string, cause error) error {
	if err := l.Release(ctx, titleUid); err != nil {
		log.Error("release after failed write", zap.String("title_uid", titleUid),
			zap.NamedError("cause", cause), zap.Error(err))
		return multierr.Append(cause, err)
	}
	return cause
}

func checkReservation(rsv model.Reservation, to model.ReservationStatus) error {
	if to == model.ReservationConverted && rsv.Status == model.ReservationConverted {
		return errors.Wrapf(errs.ErrAlreadyConverted, "reservation %s", rsv.ReservationUid)
	}
	if !rsv.Status.CanTransitionTo(to) {
		return &errs.TransitionError{
			Entity: model.EntityReservation,
			ID:     rsv.ReservationUid,
			From:   string(rsv.Status),
			To:     string(to),
		}
	}
	return nil
}
