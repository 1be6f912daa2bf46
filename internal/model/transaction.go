package model

import "time"

// Transaction types. Session entries carry zero points and only mark
// the start or end of a play session in the history view.
const (
	TxAdd     = "add"
	TxRedeem  = "redeem"
	TxSession = "session"
)

// AutoAccrualDescription tags points awarded by the session timer so
// the history view can tell them apart from manual admin adjustments.
const AutoAccrualDescription = "Auto-earned from 30min session"

// Transaction is one append-only ledger entry stored under
// `transactions/{username}/{id}`. Entries are never updated or
// deleted; history views list them newest-first.
//
// Fields:
//  CustomerUsername – owner of the entry.
//  Points           – amount moved; positive for add/redeem, zero for session markers.
//  Type             – TxAdd, TxRedeem or TxSession.
//  Description      – human-readable reason (auto-accrual tag or admin text).
//  Timestamp        – when the entry was written (UTC).
//  AdminUserID      – set when an administrator performed the adjustment.
type Transaction struct {
	CustomerUsername string    `json:"customerUsername"`
	Points           int       `json:"points"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	Timestamp        time.Time `json:"timestamp"`
	AdminUserID      string    `json:"adminUserId,omitempty"`
}
