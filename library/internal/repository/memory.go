package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/pkg/errors"
)

// Memory keeps records in maps. It has no rollback, so WithinTx only scopes
// the call and callers undo their own partial writes.
type Memory struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
	loans        map[string]model.Loan
}

var _ Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		reservations: make(map[string]model.Reservation),
		loans:        make(map[string]model.Loan),
	}
}

func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *Memory) CreateReservation(_ context.Context, rsv model.Reservation) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[rsv.ReservationUid]; ok {
		return model.Reservation{}, errors.Wrapf(errs.ErrAlreadyExists, "reservation %s", rsv.ReservationUid)
	}
	m.reservations[rsv.ReservationUid] = cloneReservation(rsv)
	return cloneReservation(rsv), nil
}

func (m *Memory) GetReservation(_ context.Context, reservationUid string) (model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rsv, ok := m.reservations[reservationUid]
	if !ok {
		return model.Reservation{}, errors.Wrapf(errs.ErrNotFound, "reservation %s", reservationUid)
	}
	return cloneReservation(rsv), nil
}

func (m *Memory) ListReservations(_ context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]model.Reservation, 0)
	for _, rsv := range m.reservations {
		if filter.Patron != "" && rsv.Patron != filter.Patron {
			continue
		}
		if filter.TitleUid != "" && rsv.TitleUid != filter.TitleUid {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, rsv.Status) {
			continue
		}
		if filter.ExpiresBefore != nil && !rsv.ExpirationDate.Before(*filter.ExpiresBefore) {
			continue
		}
		items = append(items, cloneReservation(rsv))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ReservedAt.Before(items[j].ReservedAt)
	})
	return items, nil
}

func (m *Memory) UpdateReservation(_ context.Context, rsv model.Reservation, from model.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.reservations[rsv.ReservationUid]
	if !ok {
		return errors.Wrapf(errs.ErrNotFound, "reservation %s", rsv.ReservationUid)
	}
	if cur.Status != from {
		return ErrStale
	}
	cur.Status = rsv.Status
	cur.DeclineReason = rsv.DeclineReason
	cur.HoldUid = rsv.HoldUid
	cur.ExpirationDate = rsv.ExpirationDate
	cur.UpdatedAt = rsv.UpdatedAt
	m.reservations[rsv.ReservationUid] = cloneReservation(cur)
	return nil
}

func (m *Memory) CreateLoan(_ context.Context, loan model.Loan) (model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.LoanUid]; ok {
		return model.Loan{}, errors.Wrapf(errs.ErrAlreadyExists, "loan %s", loan.LoanUid)
	}
	m.loans[loan.LoanUid] = cloneLoan(loan)
	return cloneLoan(loan), nil
}

func (m *Memory) GetLoan(_ context.Context, loanUid string) (model.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loan, ok := m.loans[loanUid]
	if !ok {
		return model.Loan{}, errors.Wrapf(errs.ErrNotFound, "loan %s", loanUid)
	}
	return cloneLoan(loan), nil
}

func (m *Memory) ListLoans(_ context.Context, filter model.LoanFilter) ([]model.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]model.Loan, 0)
	for _, loan := range m.loans {
		if filter.Patron != "" && loan.Patron != filter.Patron {
			continue
		}
		if filter.TitleUid != "" && loan.TitleUid != filter.TitleUid {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, loan.Status) {
			continue
		}
		if filter.DueBefore != nil && !loan.DueDate.Before(*filter.DueBefore) {
			continue
		}
		items = append(items, cloneLoan(loan))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].BorrowedAt.Before(items[j].BorrowedAt)
	})
	return items, nil
}

func (m *Memory) UpdateLoan(_ context.Context, loan model.Loan, from model.LoanStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.loans[loan.LoanUid]
	if !ok {
		return errors.Wrapf(errs.ErrNotFound, "loan %s", loan.LoanUid)
	}
	if cur.Status != from {
		return ErrStale
	}
	cur.Status = loan.Status
	cur.DueDate = loan.DueDate
	cur.ReturnedAt = loan.ReturnedAt
	cur.LateFee = loan.LateFee
	cur.Extensions = loan.Extensions
	cur.UpdatedAt = loan.UpdatedAt
	m.loans[loan.LoanUid] = cloneLoan(cur)
	return nil
}

func (m *Memory) CountActiveHolds(_ context.Context, titleUid string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rsv := range m.reservations {
		if rsv.TitleUid == titleUid && rsv.Status.HoldsCopy() {
			count++
		}
	}
	for _, loan := range m.loans {
		if loan.TitleUid == titleUid && loan.Status.HoldsCopy() {
			count++
		}
	}
	return count, nil
}

func containsStatus[S comparable](statuses []S, s S) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func cloneReservation(rsv model.Reservation) model.Reservation {
	if rsv.HoldUid != nil {
		h := *rsv.HoldUid
		rsv.HoldUid = &h
	}
	return rsv
}

func cloneLoan(loan model.Loan) model.Loan {
	if loan.ReservationUid != nil {
		r := *loan.ReservationUid
		loan.ReservationUid = &r
	}
	if loan.ReturnedAt != nil {
		t := *loan.ReturnedAt
		loan.ReturnedAt = &t
	}
	return loan
}
