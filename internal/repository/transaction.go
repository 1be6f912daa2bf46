package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/store"
)

// TransactionRepo appends and lists the per-customer history kept
// under `transactions/{username}/{id}`.
type TransactionRepo struct {
	Store store.Store
}

func NewTransactionRepo(s store.Store) *TransactionRepo { return &TransactionRepo{Store: s} }

// Append writes one history entry under a generated id.
func (r *TransactionRepo) Append(ctx context.Context, tx model.Transaction) error {
	_, err := r.Store.Push(ctx, "transactions/"+tx.CustomerUsername, tx)
	return err
}

// ListByCustomer returns a customer's history newest-first. A customer
// with no history yields an empty slice, not an error.
func (r *TransactionRepo) ListByCustomer(ctx context.Context, username string) ([]model.Transaction, error) {
	docs, err := r.Store.GetAll(ctx, "transactions/"+username)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(docs))
	for _, body := range docs {
		var tx model.Transaction
		if err := json.Unmarshal(body, &tx); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
