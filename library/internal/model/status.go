package model

import (
	"encoding/json"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationDeclined  ReservationStatus = "DECLINED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationConverted ReservationStatus = "CONVERTED"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:  {ReservationApproved, ReservationDeclined},
	ReservationApproved: {ReservationConverted, ReservationExpired, ReservationDeclined},
}

func (s ReservationStatus) CanTransitionTo(to ReservationStatus) bool {
	for _, next := range reservationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

// HoldsCopy reports whether a reservation in this status owns a ledger hold.
func (s ReservationStatus) HoldsCopy() bool {
	return s == ReservationApproved
}

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
)

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanBorrowed: {LoanOverdue, LoanReturned},
	// overdue goes back to borrowed only through an extension
	LoanOverdue: {LoanReturned, LoanBorrowed},
}

func (s LoanStatus) CanTransitionTo(to LoanStatus) bool {
	for _, next := range loanTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s LoanStatus) IsTerminal() bool {
	return len(loanTransitions[s]) == 0
}

func (s LoanStatus) HoldsCopy() bool {
	return s == LoanBorrowed || s == LoanOverdue
}

type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

// EndOfDay is the last instant of a date-only value, so an expiration date
// covers the whole day. A value carrying a time of day is returned as is.
func (d Date) EndOfDay() time.Time {
	if !d.Equal(d.Truncate(24 * time.Hour)) {
		return d.Time
	}
	return d.AddDate(0, 0, 1).Add(-time.Microsecond)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}
