package models

import "time"

// CodeKind is the small integer taxonomy of verification codes. External
// collaborators may add kinds; this core treats the value opaquely.
type CodeKind int

const (
	CodeEmailVerification CodeKind = 1
	CodePasswordReset     CodeKind = 2
	CodeTelegramLink      CodeKind = 3
)

// VerifyCode is a single-use token. Rows are never deleted, only marked
// used; expired unused rows stay in the store.
type VerifyCode struct {
	ID        int64
	UserID    int64
	Code      string
	Kind      CodeKind
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
