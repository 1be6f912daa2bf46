// Package repository implements data access over the document store.
// Sentinel errors defined here let handlers map failures onto HTTP
// statuses without inspecting error strings: ErrNotFound becomes 404,
// ErrUsernameExists 409 and ErrInsufficientBalance 422.
package repository

import "errors"

// ErrNotFound is returned when no customer or session exists for the
// requested username.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned by registration when the username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrInsufficientBalance is returned when a redemption would drive a
// customer's points balance negative. The balance is left untouched.
var ErrInsufficientBalance = errors.New("insufficient balance")
