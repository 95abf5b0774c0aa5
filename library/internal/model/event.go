package model

import "time"

type NotificationType string

const (
	NotificationReservationApproved NotificationType = "RESERVATION_APPROVED"
	NotificationReservationDeclined NotificationType = "RESERVATION_DECLINED"
	NotificationReservationExpired  NotificationType = "RESERVATION_EXPIRED"
	NotificationLoanReturned        NotificationType = "LOAN_RETURNED"
	NotificationLoanOverdue         NotificationType = "LOAN_OVERDUE"
)

type Notification struct {
	Type       NotificationType `json:"type"`
	PatronID   string           `json:"patronId"`
	TitleID    string           `json:"titleId"`
	Payload    map[string]any   `json:"payload,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

const (
	EntityReservation = "reservation"
	EntityLoan        = "loan"
	EntityTitle       = "title"
)

type AuditRecord struct {
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}
