package entity

import "time"

// ResetPasswordToken is a one-time password reset grant. ID is the handle
// shared in the emailed link; ResetToken is the signed token kept server-side.
// Rows are never deleted; Used flips to true exactly once.
type ResetPasswordToken struct {
	ID         string
	UserID     string
	ResetToken string
	Used       bool
	CreatedAt  time.Time
}
