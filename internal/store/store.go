// Package store abstracts the document tree that holds all persistent
// state. Documents live at slash-separated paths (`customers/{username}`,
// `activeSessions/{username}`) and append-only collections hold child
// documents under generated ids (`transactions/{username}/{id}`,
// `errorLogs/{id}`). The interface is intentionally primitive: read one,
// read all, write, append, delete. There are no transactions and no
// compare-and-swap; callers that read-modify-write race under last
// writer wins, which is the documented behavior of the ledger.
//
// A driver is selected once at startup (redis, mysql or memory) and
// injected everywhere; no code re-checks the driver per call.
package store

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by Get when nothing exists at the path.
var ErrNoDocument = errors.New("document not found")

// Store is the capability interface over the remote document tree.
// Get and GetAll return raw JSON document bodies; repositories own
// the unmarshalling. Push appends a document to a collection under a
// generated id and returns that id. Delete is idempotent: removing a
// missing path is not an error.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	GetAll(ctx context.Context, collection string) (map[string][]byte, error)
	Set(ctx context.Context, path string, doc any) error
	Push(ctx context.Context, collection string, doc any) (string, error)
	Delete(ctx context.Context, path string) error
}
