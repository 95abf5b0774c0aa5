// Package service is the lending orchestrator. It runs each state machine
// call inside one store transaction and emits notifications and audit
// records once the transaction has committed.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/events"
	"github.com/Astemirdum/library-lending/library/internal/fine"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msgCannotApprove = "this reservation can no longer be approved"
	msgCannotDecline = "this reservation can no longer be declined"
	msgCannotConvert = "this reservation cannot be converted to a loan"
	msgCannotExtend  = "this loan can no longer be extended"
	msgCannotReturn  = "this loan cannot be returned"
)

type Policy struct {
	Fine fine.Policy
	Loan model.LoanPolicy
}

type Service struct {
	repo         repository.Repository
	ledger       ledger.Ledger
	reservations *Reservations
	loans        *Loans
	notifier     events.Notifier
	auditor      events.Auditor
	clock        clockwork.Clock
	log          *zap.Logger
}

func NewService(
	repo repository.Repository,
	l ledger.Ledger,
	notifier events.Notifier,
	auditor events.Auditor,
	policy Policy,
	clock clockwork.Clock,
	log *zap.Logger,
) *Service {
	rsv := NewReservations(repo, l, clock, log)
	return &Service{
		repo:         repo,
		ledger:       l,
		reservations: rsv,
		loans:        NewLoans(repo, l, rsv, policy.Fine, policy.Loan, clock, log),
		notifier:     notifier,
		auditor:      auditor,
		clock:        clock,
		log:          log.Named("service"),
	}
}

func (s *Service) RequestReservation(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (model.Reservation, error) {
	var rsv model.Reservation
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		rsv, err = s.reservations.Create(ctx, actor.Name, req.TitleUid, req.RequestedDate.Time, req.ExpirationDate.EndOfDay())
		return err
	})
	if err != nil {
		return model.Reservation{}, s.fail("RequestReservation", err, "")
	}
	s.audit(ctx, actor, "reservation.request", model.EntityReservation, rsv.ReservationUid, "title "+rsv.TitleUid)
	return rsv, nil
}

func (s *Service) ApproveReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Reservation, error) {
	var rsv model.Reservation
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		rsv, err = s.reservations.Approve(ctx, reservationUid)
		return err
	})
	if err != nil {
		return model.Reservation{}, s.fail("ApproveReservation", err, msgCannotApprove)
	}
	s.audit(ctx, actor, "reservation.approve", model.EntityReservation, rsv.ReservationUid, "")
	s.notify(ctx, model.NotificationReservationApproved, rsv.Patron, rsv.TitleUid, map[string]any{
		"reservationUid": rsv.ReservationUid,
		"expirationDate": rsv.ExpirationDate,
	})
	return rsv, nil
}

func (s *Service) DeclineReservation(ctx context.Context, actor model.Actor, reservationUid, reason string) (model.Reservation, error) {
	var rsv model.Reservation
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		rsv, err = s.reservations.Decline(ctx, reservationUid, reason)
		return err
	})
	if err != nil {
		return model.Reservation{}, s.fail("DeclineReservation", err, msgCannotDecline)
	}
	s.audit(ctx, actor, "reservation.decline", model.EntityReservation, rsv.ReservationUid, reason)
	s.notify(ctx, model.NotificationReservationDeclined, rsv.Patron, rsv.TitleUid, map[string]any{
		"reservationUid": rsv.ReservationUid,
		"reason":         reason,
	})
	return rsv, nil
}

// ConvertApprovedReservation lends the copy held by an approved reservation.
// A reservation found past its expiration date is expired first, its copy goes
// back to the shelf and the conversion is refused.
func (s *Service) ConvertApprovedReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Loan, error) {
	var (
		lapsed  model.Reservation
		expired bool
	)
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		lapsed, expired, err = s.reservations.ExpireIfPast(ctx, reservationUid, s.clock.Now())
		return err
	})
	if err != nil {
		return model.Loan{}, s.fail("ConvertApprovedReservation", err, msgCannotConvert)
	}
	if expired {
		s.reportExpired(ctx, lapsed)
		return model.Loan{}, s.fail("ConvertApprovedReservation", &errs.TransitionError{
			Entity: model.EntityReservation,
			ID:     reservationUid,
			From:   string(lapsed.Status),
			To:     string(model.ReservationConverted),
		}, msgCannotConvert)
	}

	var loan model.Loan
	err = s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		loan, _, err = s.loans.IssueFromReservation(ctx, reservationUid)
		return err
	})
	if err != nil {
		return model.Loan{}, s.fail("ConvertApprovedReservation", err, msgCannotConvert)
	}
	s.audit(ctx, actor, "reservation.convert", model.EntityReservation, reservationUid, "loan "+loan.LoanUid)
	s.audit(ctx, actor, "loan.issue", model.EntityLoan, loan.LoanUid, "from reservation "+reservationUid)
	return loan, nil
}

func (s *Service) IssueDirectLoan(ctx context.Context, actor model.Actor, req model.IssueLoanRequest) (model.Loan, error) {
	var loan model.Loan
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		loan, err = s.loans.IssueDirect(ctx, req.Patron, req.TitleUid, req.DurationDays)
		return err
	})
	if err != nil {
		return model.Loan{}, s.fail("IssueDirectLoan", err, "")
	}
	s.audit(ctx, actor, "loan.issue", model.EntityLoan, loan.LoanUid, "direct, title "+loan.TitleUid)
	return loan, nil
}

func (s *Service) ExtendLoan(ctx context.Context, actor model.Actor, loanUid string, extraDays int) (model.Loan, error) {
	var loan model.Loan
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		loan, err = s.loans.Extend(ctx, loanUid, extraDays)
		return err
	})
	if err != nil {
		return model.Loan{}, s.fail("ExtendLoan", err, msgCannotExtend)
	}
	s.audit(ctx, actor, "loan.extend", model.EntityLoan, loan.LoanUid, "due "+loan.DueDate.Format(time.RFC3339))
	return loan, nil
}

func (s *Service) ReturnLoan(ctx context.Context, actor model.Actor, loanUid string, returnedAt *time.Time) (model.Loan, error) {
	var loan model.Loan
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		loan, err = s.loans.Return(ctx, loanUid, returnedAt)
		return err
	})
	if err != nil {
		return model.Loan{}, s.fail("ReturnLoan", err, msgCannotReturn)
	}
	fee := loan.LateFee.Decimal.StringFixed(2)
	s.audit(ctx, actor, "loan.return", model.EntityLoan, loan.LoanUid, "late fee "+fee)
	s.notify(ctx, model.NotificationLoanReturned, loan.Patron, loan.TitleUid, map[string]any{
		"loanUid": loan.LoanUid,
		"lateFee": fee,
	})
	return loan, nil
}

// RunMaintenanceSweep expires approved reservations and marks loans overdue
// as of now. Expiry and overdue passes run concurrently; a failure on one
// record does not stop the others.
func (s *Service) RunMaintenanceSweep(ctx context.Context, now time.Time) (model.SweepReport, error) {
	report := model.SweepReport{Now: now}
	var (
		expired []model.Reservation
		overdue []model.Loan
		rsvErr  error
		loanErr error
	)
	// The group only joins the two passes. Each pass runs to completion and
	// keeps its own error, which are combined below.
	var g errgroup.Group
	g.Go(func() error {
		expired, rsvErr = s.expireReservations(ctx, now)
		return nil
	})
	g.Go(func() error {
		overdue, loanErr = s.loans.SweepOverdue(ctx, now)
		return nil
	})
	_ = g.Wait()

	report.Expired = make([]string, 0, len(expired))
	for _, rsv := range expired {
		report.Expired = append(report.Expired, rsv.ReservationUid)
		s.reportExpired(ctx, rsv)
	}
	report.Overdue = make([]string, 0, len(overdue))
	for _, loan := range overdue {
		report.Overdue = append(report.Overdue, loan.LoanUid)
		s.audit(ctx, model.SystemActor, "loan.overdue", model.EntityLoan, loan.LoanUid, "")
		s.notify(ctx, model.NotificationLoanOverdue, loan.Patron, loan.TitleUid, map[string]any{
			"loanUid": loan.LoanUid,
			"dueDate": loan.DueDate,
		})
	}

	if err := multierr.Append(rsvErr, loanErr); err != nil {
		s.log.Error("maintenance sweep", zap.Time("now", now), zap.Error(err))
		return report, s.fail("RunMaintenanceSweep", err, "")
	}
	s.log.Info("maintenance sweep",
		zap.Time("now", now),
		zap.Int("expired", len(report.Expired)),
		zap.Int("overdue", len(report.Overdue)))
	return report, nil
}

func (s *Service) reportExpired(ctx context.Context, rsv model.Reservation) {
	s.audit(ctx, model.SystemActor, "reservation.expire", model.EntityReservation, rsv.ReservationUid, "")
	s.notify(ctx, model.NotificationReservationExpired, rsv.Patron, rsv.TitleUid, map[string]any{
		"reservationUid": rsv.ReservationUid,
	})
}

func (s *Service) expireReservations(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	candidates, err := s.repo.ListReservations(ctx, model.ReservationFilter{
		Statuses:      []model.ReservationStatus{model.ReservationApproved},
		ExpiresBefore: &now,
	})
	if err != nil {
		return nil, err
	}
	expired := make([]model.Reservation, 0, len(candidates))
	var errSum error
	for _, c := range candidates {
		var (
			rsv model.Reservation
			ok  bool
		)
		err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
			rsv, ok, err = s.reservations.ExpireIfPast(ctx, c.ReservationUid, now)
			return err
		})
		if err != nil {
			errSum = multierr.Append(errSum, fmt.Errorf("reservation %s: %w", c.ReservationUid, err))
			continue
		}
		if ok {
			expired = append(expired, rsv)
		}
	}
	return expired, errSum
}

func (s *Service) GetReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Reservation, error) {
	rsv, err := s.repo.GetReservation(ctx, reservationUid)
	if err == nil && !canSee(actor, rsv.Patron) {
		err = errs.ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, s.fail("GetReservation", err, "")
	}
	return rsv, nil
}

// ListReservations narrows a patron's query to their own reservations.
func (s *Service) ListReservations(ctx context.Context, actor model.Actor, filter model.ReservationFilter) ([]model.Reservation, error) {
	if actor.Role == model.RolePatron {
		filter.Patron = actor.Name
	}
	items, err := s.repo.ListReservations(ctx, filter)
	if err != nil {
		return nil, s.fail("ListReservations", err, "")
	}
	return items, nil
}

func (s *Service) GetLoan(ctx context.Context, actor model.Actor, loanUid string) (model.Loan, error) {
	loan, err := s.repo.GetLoan(ctx, loanUid)
	if err == nil && !canSee(actor, loan.Patron) {
		err = errs.ErrNotFound
	}
	if err != nil {
		return model.Loan{}, s.fail("GetLoan", err, "")
	}
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context, actor model.Actor, filter model.LoanFilter) ([]model.Loan, error) {
	if actor.Role == model.RolePatron {
		filter.Patron = actor.Name
	}
	items, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		return nil, s.fail("ListLoans", err, "")
	}
	return items, nil
}

// AccruedFee is the late fee the loan carries now, or its final fee once returned.
func (s *Service) AccruedFee(ctx context.Context, actor model.Actor, loanUid string) (decimal.Decimal, error) {
	loan, err := s.GetLoan(ctx, actor, loanUid)
	if err != nil {
		return decimal.Zero, err
	}
	return s.loans.AccruedFee(loan, s.clock.Now()), nil
}

func (s *Service) GetTitle(ctx context.Context, titleUid string) (model.Title, error) {
	title, err := s.ledger.Title(ctx, titleUid)
	if err != nil {
		return model.Title{}, s.fail("GetTitle", err, "")
	}
	return title, nil
}

// UpsertTitle applies a catalog change to the title's copy count.
func (s *Service) UpsertTitle(ctx context.Context, actor model.Actor, title model.Title) (model.Title, error) {
	var out model.Title
	err := s.repo.WithinTx(ctx, func(ctx context.Context) (err error) {
		out, err = s.ledger.UpsertTitle(ctx, title)
		return err
	})
	if err != nil {
		return model.Title{}, s.fail("UpsertTitle", err, "")
	}
	s.audit(ctx, actor, "title.upsert", model.EntityTitle, out.TitleUid,
		fmt.Sprintf("total %d available %d", out.TotalCopies, out.AvailableCopies))
	return out, nil
}

// CheckInvariant compares a title's counter with the holds recorded against it.
func (s *Service) CheckInvariant(ctx context.Context, titleUid string) error {
	title, err := s.ledger.Title(ctx, titleUid)
	if err != nil {
		return s.fail("CheckInvariant", err, "")
	}
	holds, err := s.repo.CountActiveHolds(ctx, titleUid)
	if err != nil {
		return s.fail("CheckInvariant", err, "")
	}
	if title.AvailableCopies < 0 || title.AvailableCopies != title.TotalCopies-holds {
		err = fmt.Errorf("title %s: available %d, total %d, active holds %d: %w",
			titleUid, title.AvailableCopies, title.TotalCopies, holds, errs.ErrLedgerInvariant)
		return s.fail("CheckInvariant", err, "")
	}
	return nil
}

func (s *Service) fail(op string, err error, transitionMsg string) error {
	if errs.IsInvariant(err) {
		s.log.Error("ledger invariant violated", zap.String("op", op), zap.Error(err))
	}
	return errs.Outcome(err, transitionMsg)
}

func (s *Service) audit(ctx context.Context, actor model.Actor, action, entityType, entityID, detail string) {
	rec := model.AuditRecord{
		Actor:      actor.Name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		At:         s.clock.Now(),
	}
	if err := s.auditor.Audit(ctx, rec); err != nil {
		s.log.Warn("audit", zap.String("action", action), zap.String("entity_id", entityID), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, typ model.NotificationType, patron, titleUid string, payload map[string]any) {
	n := model.Notification{
		Type:       typ,
		PatronID:   patron,
		TitleID:    titleUid,
		Payload:    payload,
		OccurredAt: s.clock.Now(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notify", zap.String("type", string(typ)), zap.String("patron", patron), zap.Error(err))
	}
}

func canSee(actor model.Actor, patron string) bool {
	return actor.Role != model.RolePatron || actor.Name == patron
}
