// Package queue defines message payloads exchanged over the message broker.
package queue

// PointsTransactionEvent is published after every accepted balance
// adjustment (timer accrual, admin add/redeem, player redemption). It
// carries enough for downstream consumers to audit or notify without
// querying the document store.
type PointsTransactionEvent struct {
	CustomerUsername string `json:"customer_username"`
	Points           int    `json:"points"`
	Type             string `json:"type"` // add | redeem
	Description      string `json:"description"`
	NewBalance       int    `json:"new_balance"`
	AdminUserID      string `json:"admin_user_id,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}
