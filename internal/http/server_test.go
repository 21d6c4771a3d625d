package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notas/internal/auth"
	"notas/internal/core"
	"notas/internal/storage"
)

const testSecret = "test-secret"

// fakeStore keeps everything in memory and mimics the repository's
// ownership scoping and sentinel errors.
type fakeStore struct {
	users   map[string]storage.User
	records map[int64]core.Record
	nextID  int64
	lists   int // ListRecords call count, for cache assertions
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]storage.User),
		records: make(map[int64]core.Record),
		nextID:  1,
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	if _, exists := f.users[username]; exists {
		return 0, storage.ErrDuplicateUser
	}
	id := f.nextID
	f.nextID++
	f.users[username] = storage.User{ID: id, Username: username, PasswordHash: passwordHash}
	return id, nil
}

func (f *fakeStore) UserByUsername(ctx context.Context, username string) (storage.User, error) {
	u, exists := f.users[username]
	if !exists {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) ListRecords(ctx context.Context, userID int64) ([]core.Record, error) {
	f.lists++
	out := []core.Record{}
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	rec.ID = f.nextID
	f.nextID++
	f.records[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, rec core.Record) error {
	existing, exists := f.records[rec.ID]
	if !exists || existing.UserID != rec.UserID {
		return storage.ErrNotFound
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id, userID int64) (core.Record, error) {
	existing, exists := f.records[id]
	if !exists || existing.UserID != userID {
		return core.Record{}, storage.ErrNotFound
	}
	delete(f.records, id)
	return existing, nil
}

func newTestServer(store Store) *Server {
	return NewServer(":0", store, nil, testSecret, time.Hour)
}

func bearerFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, "user", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doJSON(srv, http.MethodPost, "/api/register", "", `{"username":"maria","password":"s3cret"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["token"] == "" {
		t.Fatalf("register response missing token: %s", rr.Body.String())
	}

	// Duplicate username.
	rr = doJSON(srv, http.MethodPost, "/api/register", "", `{"username":"maria","password":"other"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status=%d", rr.Code)
	}

	// Missing fields.
	rr = doJSON(srv, http.MethodPost, "/api/register", "", `{"username":"","password":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty register status=%d", rr.Code)
	}

	rr = doJSON(srv, http.MethodPost, "/api/login", "", `{"username":"maria","password":"s3cret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Wrong password and unknown user answer identically.
	rr = doJSON(srv, http.MethodPost, "/api/login", "", `{"username":"maria","password":"wrong"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad password status=%d", rr.Code)
	}
	rr = doJSON(srv, http.MethodPost, "/api/login", "", `{"username":"nobody","password":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown user status=%d", rr.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doJSON(srv, http.MethodGet, "/api/notas", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status=%d", rr.Code)
	}

	rr = doJSON(srv, http.MethodGet, "/api/notas", "Bearer garbage", "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("invalid token status=%d", rr.Code)
	}

	expired, err := auth.GenerateToken(1, "user", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	rr = doJSON(srv, http.MethodGet, "/api/notas", "Bearer "+expired, "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expired token status=%d", rr.Code)
	}
}

func TestUnconfiguredSecretIsServerError(t *testing.T) {
	srv := NewServer(":0", newFakeStore(), nil, "", time.Hour)

	rr := doJSON(srv, http.MethodPost, "/api/register", "", `{"username":"a","password":"b"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("register without secret status=%d", rr.Code)
	}

	rr = doJSON(srv, http.MethodGet, "/api/notas", "Bearer whatever", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("authed call without secret status=%d", rr.Code)
	}
}

func TestRecordLifecycle(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)
	owner := bearerFor(t, 1)

	rr := doJSON(srv, http.MethodPost, "/api/notas", owner,
		`{"data":"2025-01-05","empresa":"Acme","numero":"10","valor":100.50,"observacoes":"jan"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]int64
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil || created["id"] == 0 {
		t.Fatalf("create response missing id: %s", rr.Body.String())
	}
	id := created["id"]

	rr = doJSON(srv, http.MethodGet, "/api/notas", owner, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if len(listed) != 1 || listed[0].Amount.Cents != 10050 {
		t.Fatalf("unexpected list: %+v", listed)
	}

	// Validation failures are 400.
	rr = doJSON(srv, http.MethodPost, "/api/notas", owner,
		`{"data":"not-a-date","empresa":"Acme","numero":"10","valor":1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date status=%d", rr.Code)
	}
	rr = doJSON(srv, http.MethodPost, "/api/notas", owner,
		`{"data":"2025-01-05","empresa":"Acme","numero":"10","valor":-5}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative amount status=%d", rr.Code)
	}

	// Update by the owner.
	rr = doJSON(srv, http.MethodPut, "/api/notas/1", owner,
		`{"data":"2025-01-06","empresa":"Acme Ltda","numero":"10b","valor":99,"observacoes":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if store.records[id].Company != "Acme Ltda" {
		t.Fatalf("update not applied: %+v", store.records[id])
	}

	// Delete answers 200 even when nothing matched.
	rr = doJSON(srv, http.MethodDelete, "/api/notas/999", owner, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete missing status=%d", rr.Code)
	}
	rr = doJSON(srv, http.MethodDelete, "/api/notas/1", owner, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if len(store.records) != 0 {
		t.Fatalf("record not deleted: %+v", store.records)
	}
}

func TestUpdateNotOwnedIs404AndUnchanged(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	store.records[7] = core.Record{
		ID: 7, UserID: 1, Date: "2025-01-05", Company: "Acme", Number: "10",
	}

	intruder := bearerFor(t, 2)
	rr := doJSON(srv, http.MethodPut, "/api/notas/7", intruder,
		`{"data":"2025-06-01","empresa":"Hijack","numero":"99","valor":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign update status=%d", rr.Code)
	}
	if store.records[7].Company != "Acme" {
		t.Fatalf("foreign update mutated the record: %+v", store.records[7])
	}
}

func TestListCacheInvalidatedOnMutation(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)
	owner := bearerFor(t, 1)

	doJSON(srv, http.MethodGet, "/api/notas", owner, "")
	doJSON(srv, http.MethodGet, "/api/notas", owner, "")
	if store.lists != 1 {
		t.Fatalf("expected second list to hit cache, store saw %d calls", store.lists)
	}

	rr := doJSON(srv, http.MethodPost, "/api/notas", owner,
		`{"data":"2025-01-05","empresa":"Acme","numero":"10","valor":1}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(srv, http.MethodGet, "/api/notas", owner, "")
	var listed []core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if store.lists != 2 || len(listed) != 1 {
		t.Fatalf("cache not invalidated: calls=%d listed=%d", store.lists, len(listed))
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(newFakeStore())
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}
