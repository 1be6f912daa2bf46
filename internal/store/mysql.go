package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// MySQLStore persists the document tree in a single `documents` table
// keyed by path, with the parent collection denormalized into its own
// indexed column. It is an alternate driver for deployments that
// already run MySQL and do not want a Redis dependency.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore binds the store to an open database handle and
// ensures the documents table exists.
func NewMySQLStore(ctx context.Context, db *sql.DB) (*MySQLStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			path       VARCHAR(512) PRIMARY KEY,
			collection VARCHAR(512) NOT NULL,
			doc        JSON NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_documents_collection (collection)
		)`)
	if err != nil {
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE path=? LIMIT 1", path).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *MySQLStore) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	collection = strings.TrimSuffix(collection, "/")
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, doc FROM documents WHERE collection=?", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var path string
		var body []byte
		if err := rows.Scan(&path, &body); err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(path, collection+"/")] = body
	}
	return out, rows.Err()
}

func (s *MySQLStore) Set(ctx context.Context, path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	collection := ""
	if col, _, ok := splitPath(path); ok {
		collection = col
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (path, collection, doc) VALUES (?,?,?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
		path, collection, body)
	return err
}

func (s *MySQLStore) Push(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, strings.TrimSuffix(collection, "/")+"/"+id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MySQLStore) Delete(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path=?", path)
	return err
}
