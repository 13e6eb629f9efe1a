package batchhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"paybatch/internal/auth"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/directory"
	"paybatch/internal/transport/http/api"
	"paybatch/internal/transport/http/middleware"
)

type fakeStore struct {
	employees []directory.Employee
	clients   []directory.Client
	bank      *directory.Bank
	company   *directory.Company
	checks    []batch.Check
	lookedUp  []string
	written   int
	failAt    int // fail the write once this many checks are stored; -1 never
}

func newFakeStore(bank *directory.Bank, employees ...directory.Employee) *fakeStore {
	return &fakeStore{
		employees: employees,
		clients: []directory.Client{
			{ID: "client-a", Name: "Acme", Active: true, WeekStart: directory.WeekStartMonday, Frequency: "weekly"},
		},
		bank:   bank,
		failAt: -1,
	}
}

func (f *fakeStore) GetEmployees(ctx context.Context, companyID string) ([]directory.Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) GetClients(ctx context.Context) ([]directory.Client, error) {
	return f.clients, nil
}

func (f *fakeStore) GetBank(ctx context.Context, companyID string) (*directory.Bank, error) {
	return f.bank, nil
}

func (f *fakeStore) WriteCheck(ctx context.Context, check batch.Check) (string, error) {
	if f.failAt >= 0 && f.written >= f.failAt {
		return "", errors.New("sink unavailable")
	}
	f.written++
	return fmt.Sprintf("chk-%d", f.written), nil
}

func (f *fakeStore) SetBankCounter(ctx context.Context, bankID string, next int) error {
	f.bank.NextCheckNumber = next
	return nil
}

func (f *fakeStore) ListChecks(ctx context.Context, companyID, weekKey string) ([]batch.Check, error) {
	return f.checks, nil
}

func (f *fakeStore) GetCompany(ctx context.Context, id string) (*directory.Company, error) {
	f.lookedUp = append(f.lookedUp, id)
	return f.company, nil
}

func hourlyEmployee(id, name, rate string) directory.Employee {
	return directory.Employee{ID: id, Name: name, Active: true, PayType: directory.PayTypeHourly, PayRate: decimal.RequireFromString(rate)}
}

func hourlyEntry(hours string) batch.Entry {
	return batch.Entry{Selected: true, Legacy: batch.PayInput{Hours: decimal.RequireFromString(hours)}}
}

// postCommit drives handleCommit through the auth middleware with an admin
// bearer token, the way the route is mounted.
func postCommit(t *testing.T, store batch.StoreAPI, snap batch.Snapshot) *httptest.ResponseRecorder {
	t.Helper()

	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	body, err := json.Marshal(commitRequest{CompanyID: "co-1", Snapshot: snap, CheckDate: "2025-03-14"})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	h := &Handler{committer: batch.NewCommitter(store)}
	handler := middleware.Auth(secret)(http.HandlerFunc(h.handleCommit))

	req := httptest.NewRequest(http.MethodPost, "/batch/commit", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var envelope api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestHandleCommitCreatesChecks(t *testing.T) {
	store := newFakeStore(&directory.Bank{ID: "bank-1", CompanyID: "co-1", NextCheckNumber: 100},
		hourlyEmployee("e1", "Ann Kim", "10"),
		hourlyEmployee("e2", "Bob Lee", "12"),
	)

	snap := batch.Snapshot{Tabs: []batch.Tab{{ClientID: "client-a", Entries: map[string]batch.Entry{
		"e1": hourlyEntry("10"),
		"e2": hourlyEntry("8"),
	}}}}

	rec := postCommit(t, store, snap)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if !envelope.Success {
		t.Fatalf("expected success envelope: %+v", envelope)
	}
	if store.written != 2 || store.bank.NextCheckNumber != 102 {
		t.Fatalf("expected 2 checks and counter 102, got %d / %d", store.written, store.bank.NextCheckNumber)
	}
}

func TestHandleCommitEmptyBatch(t *testing.T) {
	store := newFakeStore(&directory.Bank{ID: "bank-1", CompanyID: "co-1", NextCheckNumber: 100},
		hourlyEmployee("e1", "Ann Kim", "10"),
	)

	snap := batch.Snapshot{Tabs: []batch.Tab{{ClientID: "client-a", Entries: map[string]batch.Entry{
		"e1": {Selected: true}, // no pay facts, zero total
	}}}}

	rec := postCommit(t, store, snap)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "empty_batch" {
		t.Fatalf("unexpected error: %+v", envelope.Error)
	}
}

func TestHandleCommitNoBankConfigured(t *testing.T) {
	store := newFakeStore(nil, hourlyEmployee("e1", "Ann Kim", "10"))

	snap := batch.Snapshot{Tabs: []batch.Tab{{ClientID: "client-a", Entries: map[string]batch.Entry{
		"e1": hourlyEntry("10"),
	}}}}

	rec := postCommit(t, store, snap)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "no_bank" {
		t.Fatalf("unexpected error: %+v", envelope.Error)
	}
}

func TestHandleCommitPartialWrite(t *testing.T) {
	store := newFakeStore(&directory.Bank{ID: "bank-1", CompanyID: "co-1", NextCheckNumber: 100},
		hourlyEmployee("e1", "Ann Kim", "10"),
		hourlyEmployee("e2", "Bob Lee", "10"),
		hourlyEmployee("e3", "Cyd Poe", "10"),
		hourlyEmployee("e4", "Dee Sun", "10"),
		hourlyEmployee("e5", "Eve Tan", "10"),
	)
	store.failAt = 3

	entries := map[string]batch.Entry{}
	for _, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		entries[id] = hourlyEntry("10")
	}
	snap := batch.Snapshot{Tabs: []batch.Tab{{ClientID: "client-a", Entries: entries}}}

	rec := postCommit(t, store, snap)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "partial_write" {
		t.Fatalf("unexpected error: %+v", envelope.Error)
	}
	if !strings.Contains(envelope.Error.Message, "3 checks were written") {
		t.Fatalf("message must carry the written count, got %q", envelope.Error.Message)
	}
	if store.bank.NextCheckNumber != 100 {
		t.Fatalf("counter drifted to %d", store.bank.NextCheckNumber)
	}
}

func TestHandleRegisterLooksUpCompanyName(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	store := newFakeStore(&directory.Bank{ID: "bank-1", CompanyID: "co-1", NextCheckNumber: 100})
	store.company = &directory.Company{ID: "co-1", Name: "Harborview Care"}
	store.checks = []batch.Check{
		{Number: 100, EmployeeName: "Ann Kim", Date: "2025-03-14", Amount: decimal.RequireFromString("100")},
	}

	h := &Handler{checks: store, companies: store}
	handler := middleware.Auth(secret)(http.HandlerFunc(h.handleRegister))

	req := httptest.NewRequest(http.MethodGet, "/batch/register.pdf?companyId=co-1&week=2025-03-09", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if len(store.lookedUp) != 1 || store.lookedUp[0] != "co-1" {
		t.Fatalf("expected one company lookup for co-1, got %v", store.lookedUp)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response is not a PDF")
	}
}

func TestHandleCommitForbiddenCompany(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: "operator", CompanyIDs: []string{"co-other"}}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	body, err := json.Marshal(commitRequest{CompanyID: "co-1", Snapshot: batch.Snapshot{}})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	store := newFakeStore(&directory.Bank{ID: "bank-1", CompanyID: "co-1", NextCheckNumber: 100})
	h := &Handler{committer: batch.NewCommitter(store)}
	handler := middleware.Auth(secret)(http.HandlerFunc(h.handleCommit))

	req := httptest.NewRequest(http.MethodPost, "/batch/commit", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}
