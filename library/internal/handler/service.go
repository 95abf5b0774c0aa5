package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/service"
	"github.com/shopspring/decimal"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	RequestReservation(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (model.Reservation, error)
	ApproveReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Reservation, error)
	DeclineReservation(ctx context.Context, actor model.Actor, reservationUid, reason string) (model.Reservation, error)
	ConvertApprovedReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Loan, error)
	GetReservation(ctx context.Context, actor model.Actor, reservationUid string) (model.Reservation, error)
	ListReservations(ctx context.Context, actor model.Actor, filter model.ReservationFilter) ([]model.Reservation, error)

	IssueDirectLoan(ctx context.Context, actor model.Actor, req model.IssueLoanRequest) (model.Loan, error)
	ExtendLoan(ctx context.Context, actor model.Actor, loanUid string, extraDays int) (model.Loan, error)
	ReturnLoan(ctx context.Context, actor model.Actor, loanUid string, returnedAt *time.Time) (model.Loan, error)
	GetLoan(ctx context.Context, actor model.Actor, loanUid string) (model.Loan, error)
	ListLoans(ctx context.Context, actor model.Actor, filter model.LoanFilter) ([]model.Loan, error)
	AccruedFee(ctx context.Context, actor model.Actor, loanUid string) (decimal.Decimal, error)

	GetTitle(ctx context.Context, titleUid string) (model.Title, error)
	UpsertTitle(ctx context.Context, actor model.Actor, title model.Title) (model.Title, error)

	RunMaintenanceSweep(ctx context.Context, now time.Time) (model.SweepReport, error)
}

var _ LendingService = (*service.Service)(nil)
