package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// fakeSession records what the flows did to the session.
type fakeSession struct {
	record   *domain.Session
	remember bool
	replaced int
	mirrored int
	cleared  int
	pending  *domain.PendingSetup
}

func (f *fakeSession) AccessToken() string {
	if f.record == nil {
		return ""
	}
	return f.record.AccessToken
}

func (f *fakeSession) Session() (domain.Session, bool) {
	if f.record == nil {
		return domain.Session{}, false
	}
	return *f.record, true
}

func (f *fakeSession) Replace(sess domain.Session, remember bool) {
	f.record = &sess
	f.remember = remember
	f.replaced++
}

func (f *fakeSession) Mirror(sess domain.Session) {
	f.record = &sess
	f.mirrored++
}

func (f *fakeSession) Clear() {
	f.record = nil
	f.cleared++
}

func (f *fakeSession) Pending() (domain.PendingSetup, bool) {
	if f.pending == nil {
		return domain.PendingSetup{}, false
	}
	return *f.pending, f.pending.Valid()
}

func (f *fakeSession) StorePending(p domain.PendingSetup) { f.pending = &p }

func (f *fakeSession) ClearPending() { f.pending = nil }

func retailerSession() *fakeSession {
	return &fakeSession{record: &domain.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Role:         domain.RoleRetailer,
		Email:        "a@b.com",
		Name:         "Asha",
	}}
}

func newAPI(t *testing.T, handler http.HandlerFunc) *apiclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL, Timeout: time.Second}, nil, nil, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func envelope(data any) map[string]any {
	return map[string]any{"success": true, "statusCode": 200, "message": "ok", "data": data}
}

func authTokens(accountType string) map[string]any {
	return map[string]any{
		"access":  "new-access",
		"refresh": "new-refresh",
		"user":    map[string]any{"id": "u1", "email": "a@b.com", "name": "Asha", "account_type": accountType},
	}
}
