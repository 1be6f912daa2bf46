package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aghpoints/loyalty-server/internal/model"
	"github.com/aghpoints/loyalty-server/internal/store"
)

// usernameRe mirrors the registration form: letters, digits and
// underscores only. Length is checked separately for a clearer error.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ErrInvalidUsername is returned when the username fails the length or
// character checks. ErrNameRequired when the display name is blank.
var (
	ErrInvalidUsername = errors.New("username must be at least 3 characters of letters, numbers and underscores")
	ErrNameRequired    = errors.New("name is required")
)

// CustomerRepo reads and writes `customers/{username}` documents.
type CustomerRepo struct {
	Store store.Store
}

func NewCustomerRepo(s store.Store) *CustomerRepo { return &CustomerRepo{Store: s} }

func customerPath(username string) string { return "customers/" + username }

// ValidateUsername applies the registration rules without touching the
// store: minimum three characters, `[a-zA-Z0-9_]` only.
func ValidateUsername(username string) error {
	if len(username) < 3 || !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// Create registers a new customer with zero points. It rejects invalid
// usernames, blank names and usernames that are already taken. The
// existence check and the write are two separate store calls; two
// racing registrations for the same username resolve last-writer-wins.
func (r *CustomerRepo) Create(ctx context.Context, username, name, phone, email string) (model.Customer, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if err := ValidateUsername(username); err != nil {
		return model.Customer{}, err
	}
	if name == "" {
		return model.Customer{}, ErrNameRequired
	}

	if _, err := r.Get(ctx, username); err == nil {
		return model.Customer{}, ErrUsernameExists
	} else if !errors.Is(err, ErrNotFound) {
		return model.Customer{}, err
	}

	c := model.Customer{
		Username:  username,
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
		Points:    0,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Store.Set(ctx, customerPath(username), c); err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// Get fetches one customer or ErrNotFound.
func (r *CustomerRepo) Get(ctx context.Context, username string) (model.Customer, error) {
	body, err := r.Store.Get(ctx, customerPath(strings.TrimSpace(username)))
	if errors.Is(err, store.ErrNoDocument) {
		return model.Customer{}, ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	var c model.Customer
	if err := json.Unmarshal(body, &c); err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// Save overwrites the customer document. Used by the ledger after
// computing a new balance.
func (r *CustomerRepo) Save(ctx context.Context, c model.Customer) error {
	return r.Store.Set(ctx, customerPath(c.Username), c)
}

// All returns every registered customer sorted by username.
func (r *CustomerRepo) All(ctx context.Context) ([]model.Customer, error) {
	docs, err := r.Store.GetAll(ctx, "customers")
	if err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(docs))
	for _, body := range docs {
		var c model.Customer
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Search filters customers by a case-insensitive substring match on
// name, username, phone or email, the same fields the admin search box
// covers. An empty term returns everyone.
func (r *CustomerRepo) Search(ctx context.Context, term string) ([]model.Customer, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all, nil
	}
	out := make([]model.Customer, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Username), term) ||
			strings.Contains(strings.ToLower(c.Phone), term) ||
			strings.Contains(strings.ToLower(c.Email), term) {
			out = append(out, c)
		}
	}
	return out, nil
}
