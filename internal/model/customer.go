package model

import "time"

// Customer represents a registered player as stored under
// `customers/{username}` in the document store. The username doubles
// as the document key and is never changed after registration.
// Points are only mutated through the ledger; the balance is kept
// non-negative by rejecting redemptions that would overdraw it.
//
// Fields:
//  Username  – unique handle chosen at registration (3+ chars, [a-zA-Z0-9_]).
//  Name      – full display name, required.
//  Phone     – contact number, optional.
//  Email     – contact email, optional.
//  Points    – current loyalty balance, never negative.
//  CreatedAt – registration timestamp (UTC).
type Customer struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}
