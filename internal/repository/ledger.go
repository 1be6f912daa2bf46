package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/queue"
)

// ErrZeroAdjustment rejects a no-op adjustment before any store call.
var ErrZeroAdjustment = errors.New("adjustment must be non-zero")

// Publisher pushes an audit event after an accepted adjustment.
// Publishing is best-effort: failures are logged and never fail the
// adjustment itself. A nil Publisher disables publishing.
type Publisher interface {
	PublishPointsTransaction(ctx context.Context, ev queue.PointsTransactionEvent) error
}

// LedgerRepo owns the points balance plus its append-only history.
// All balance mutations in the system go through Adjust.
//
// Adjust is a read-modify-write over two separate store calls with no
// optimistic-concurrency check: concurrent adjustments to the same
// customer resolve last-writer-wins and can lose an update. That
// matches the storage contract (no transactions, no CAS) and is
// deliberate; see DESIGN.md.
type LedgerRepo struct {
	Customers *CustomerRepo
	Txs       *TransactionRepo
	Events    Publisher
}

func NewLedgerRepo(c *CustomerRepo, t *TransactionRepo, p Publisher) *LedgerRepo {
	return &LedgerRepo{Customers: c, Txs: t, Events: p}
}

// GetBalance returns the current points balance or ErrNotFound.
func (r *LedgerRepo) GetBalance(ctx context.Context, username string) (int, error) {
	c, err := r.Customers.Get(ctx, username)
	if err != nil {
		return 0, err
	}
	return c.Points, nil
}

// Adjust applies a signed delta to the customer's balance and appends
// one history entry. A negative delta that would overdraw the balance
// is rejected with ErrInsufficientBalance and nothing is written.
// adminID is empty for player-initiated and timer-initiated changes.
// Returns the new balance.
func (r *LedgerRepo) Adjust(ctx context.Context, username string, delta int, description, adminID string) (int, error) {
	if delta == 0 {
		return 0, ErrZeroAdjustment
	}

	c, err := r.Customers.Get(ctx, username)
	if err != nil {
		return 0, err
	}
	newBalance := c.Points + delta
	if newBalance < 0 {
		return c.Points, ErrInsufficientBalance
	}

	c.Points = newBalance
	if err := r.Customers.Save(ctx, c); err != nil {
		return 0, err
	}

	txType := model.TxAdd
	points := delta
	if delta < 0 {
		txType = model.TxRedeem
		points = -delta
	}
	tx := model.Transaction{
		CustomerUsername: username,
		Points:           points,
		Type:             txType,
		Description:      description,
		Timestamp:        time.Now().UTC(),
		AdminUserID:      adminID,
	}
	if err := r.Txs.Append(ctx, tx); err != nil {
		// Balance already written; history is best-effort behind it.
		log.Printf("ledger: append transaction for %s failed: %v", username, err)
	}

	if r.Events != nil {
		ev := queue.PointsTransactionEvent{
			CustomerUsername: username,
			Points:           points,
			Type:             txType,
			Description:      description,
			NewBalance:       newBalance,
			AdminUserID:      adminID,
			OccurredAt:       tx.Timestamp.Format(time.RFC3339),
		}
		if err := r.Events.PublishPointsTransaction(ctx, ev); err != nil {
			log.Printf("ledger: publish event for %s failed: %v", username, err)
		}
	}
	return newBalance, nil
}
