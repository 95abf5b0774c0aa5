package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RolePatron Role = "PATRON"
	RoleStaff  Role = "STAFF"
	RoleSystem Role = "SYSTEM"
)

// Actor is the already authenticated caller of a lending operation.
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

var SystemActor = Actor{Name: "maintenance-sweep", Role: RoleSystem}

type Title struct {
	TitleUid        string    `json:"titleUid" db:"title_uid" validate:"required"`
	Name            string    `json:"name" db:"name"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies" validate:"gte=0"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// InUse is the number of copies currently committed to holds.
func (t Title) InUse() int {
	return t.TotalCopies - t.AvailableCopies
}

// HoldToken is the receipt for one copy taken from a title's counter.
type HoldToken struct {
	HoldUid  string    `json:"holdUid"`
	TitleUid string    `json:"titleUid"`
	HeldAt   time.Time `json:"heldAt"`
}

type Reservation struct {
	ReservationUid string            `json:"reservationUid" db:"reservation_uid"`
	TitleUid       string            `json:"titleUid" db:"title_uid"`
	Patron         string            `json:"patron" db:"patron"`
	ReservedAt     time.Time         `json:"reservedAt" db:"reserved_at"`
	RequestedDate  time.Time         `json:"requestedDate" db:"requested_date"`
	ExpirationDate time.Time         `json:"expirationDate" db:"expiration_date"`
	Status         ReservationStatus `json:"status" db:"status"`
	DeclineReason  string            `json:"declineReason,omitempty" db:"decline_reason"`
	HoldUid        *string           `json:"holdUid,omitempty" db:"hold_uid"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

type Loan struct {
	LoanUid        string              `json:"loanUid" db:"loan_uid"`
	TitleUid       string              `json:"titleUid" db:"title_uid"`
	Patron         string              `json:"patron" db:"patron"`
	ReservationUid *string             `json:"reservationUid,omitempty" db:"reservation_uid"`
	HoldUid        string              `json:"holdUid" db:"hold_uid"`
	BorrowedAt     time.Time           `json:"borrowedAt" db:"borrowed_at"`
	DueDate        time.Time           `json:"dueDate" db:"due_date"`
	ReturnedAt     *time.Time          `json:"returnedAt,omitempty" db:"returned_at"`
	Status         LoanStatus          `json:"status" db:"status"`
	LateFee        decimal.NullDecimal `json:"lateFee" db:"late_fee"`
	Extensions     int                 `json:"extensions" db:"extensions"`
	UpdatedAt      time.Time           `json:"updatedAt" db:"updated_at"`
}

type LoanPolicy struct {
	DurationDays  int `yaml:"durationDays" envconfig:"LOAN_DURATION_DAYS" default:"14"`
	ExtensionDays int `yaml:"extensionDays" envconfig:"LOAN_EXTENSION_DAYS" default:"7"`
	// MaxExtensions of zero means unlimited.
	MaxExtensions int `yaml:"maxExtensions" envconfig:"LOAN_MAX_EXTENSIONS" default:"0"`
}

type ReservationFilter struct {
	Patron        string
	TitleUid      string
	Statuses      []ReservationStatus
	ExpiresBefore *time.Time
}

type LoanFilter struct {
	Patron    string
	TitleUid  string
	Statuses  []LoanStatus
	DueBefore *time.Time
}

type CreateReservationRequest struct {
	TitleUid       string `json:"titleUid" validate:"required"`
	RequestedDate  Date   `json:"requestedDate" validate:"required"`
	ExpirationDate Date   `json:"expirationDate" validate:"required"`
}

type DeclineReservationRequest struct {
	Reason string `json:"reason" validate:"max=512"`
}

type IssueLoanRequest struct {
	TitleUid     string `json:"titleUid" validate:"required"`
	Patron       string `json:"patron" validate:"required"`
	DurationDays int    `json:"durationDays" validate:"gte=0,lte=365"`
}

type ExtendLoanRequest struct {
	ExtraDays int `json:"extraDays" validate:"gte=0,lte=365"`
}

type ReturnLoanRequest struct {
	ReturnedAt *time.Time `json:"returnedAt"`
}

type UpsertTitleRequest struct {
	Name        string `json:"name"`
	TotalCopies int    `json:"totalCopies" validate:"gte=0"`
}

// TitleMessage is the catalog update published by staff CRUD on library.titles.
type TitleMessage struct {
	TitleUid    string `json:"titleUid"`
	Name        string `json:"name"`
	TotalCopies int    `json:"totalCopies"`
	UpdatedBy   string `json:"updatedBy"`
}

type SweepReport struct {
	Now     time.Time `json:"now"`
	Expired []string  `json:"expired"`
	Overdue []string  `json:"overdue"`
}
