package models

import "time"

type MailKind string

const (
	MailConfirmation MailKind = "confirmation"
	MailRecovery     MailKind = "recovery"
)

type MailStatus string

const (
	MailPending MailStatus = "pending"
	MailSent    MailStatus = "sent"
	MailFailed  MailStatus = "failed"
)

// MailCode is an outbox row: a code waiting to be delivered to Email.
type MailCode struct {
	CodeID         string     `db:"code_id"`
	Email          string     `db:"email"`
	Code           string     `db:"code"`
	Kind           MailKind   `db:"kind"`
	ExpirationDate time.Time  `db:"expiration_date"`
	CreatedAt      time.Time  `db:"created_at"`
	Status         MailStatus `db:"status"`
}
