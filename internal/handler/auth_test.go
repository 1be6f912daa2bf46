package handler

import (
	"net/http"
	"testing"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodPost, "/v1/auth/register",
		`{"username":"alice","name":"Alice","phone":"555-0100"}`, "", e.auth.Register, nil)
	wantStatus(t, rec, http.StatusCreated)

	var resp struct {
		Customer customerPart `json:"customer"`
	}
	decode(t, rec, &resp)
	if resp.Customer.Username != "alice" || resp.Customer.Points != 0 {
		t.Errorf("created customer = %+v, want alice with 0 points", resp.Customer)
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"username too short", `{"username":"ab","name":"Al"}`, http.StatusBadRequest},
		{"username bad chars", `{"username":"al ice","name":"Alice"}`, http.StatusBadRequest},
		{"name missing", `{"username":"alice"}`, http.StatusBadRequest},
		{"not json", `points please`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.request(t, http.MethodPost, "/v1/auth/register", tc.body, "", e.auth.Register, nil)
			wantStatus(t, rec, tc.want)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 0)

	rec := e.request(t, http.MethodPost, "/v1/auth/register",
		`{"username":"alice","name":"Another Alice"}`, "", e.auth.Register, nil)
	wantStatus(t, rec, http.StatusConflict)
}

func TestPlayerLogin(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "alice", 7)

	rec := e.request(t, http.MethodPost, "/v1/auth/login",
		`{"username":"alice"}`, "", e.auth.PlayerLogin, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp authResp
	decode(t, rec, &resp)
	if resp.Access.Token == "" {
		t.Error("login response has no token")
	}
	if resp.Customer.Points != 7 {
		t.Errorf("login points = %d, want 7", resp.Customer.Points)
	}
}

func TestPlayerLogin_UnknownUsername(t *testing.T) {
	e := newEnv(t)
	rec := e.request(t, http.MethodPost, "/v1/auth/login",
		`{"username":"ghost"}`, "", e.auth.PlayerLogin, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestAdminLogin(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodPost, "/v1/auth/admin",
		`{"password":"`+testAdminPassword+`"}`, "", e.auth.AdminLogin, nil)
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		Access tokenPart `json:"access"`
	}
	decode(t, rec, &resp)
	if resp.Access.Token == "" {
		t.Error("admin login response has no token")
	}

	rec = e.request(t, http.MethodPost, "/v1/auth/admin",
		`{"password":"wrong"}`, "", e.auth.AdminLogin, nil)
	wantStatus(t, rec, http.StatusUnauthorized)
}
