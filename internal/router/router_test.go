// End-to-end tests for the card API: full HTTP round trips through the
// Basic-auth gate, the audit middleware, the handlers and a real (in-memory)
// database, in the style of the seeded demo deployment.
package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ferrara94/CashCard-Microservice/internal/auth"
	"github.com/ferrara94/CashCard-Microservice/internal/config"
	"github.com/ferrara94/CashCard-Microservice/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.CashCard{}, &models.AccessLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cards := []models.CashCard{
		{ID: 99, Amount: 123.45, Owner: "felix"},
		{ID: 100, Amount: 1.00, Owner: "felix"},
		{ID: 101, Amount: 150.00, Owner: "felix"},
		{ID: 102, Amount: 200.00, Owner: "kumar2"},
	}
	if err := db.Create(&cards).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	users := []config.UserConfig{
		{Username: "felix", Password: "abc123", Role: auth.RoleCardOwner},
		{Username: "kumar2", Password: "xyz789", Role: auth.RoleCardOwner},
		{Username: "user-owns-no-cards", Password: "qrs456", Role: "NON-OWNER"},
	}
	credentials, err := auth.NewStore(users, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.App.PageSize = 20

	srv := httptest.NewServer(SetupRouter(cfg, db, credentials, nil))
	t.Cleanup(srv.Close)
	return srv, db
}

// do sends one request with optional Basic credentials and JSON body and
// checks the status code.
func do(t *testing.T, srv *httptest.Server, method, path, user, pass string, body any, wantCode int) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reqBody = &buf
	}
	req, err := http.NewRequest(method, srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != wantCode {
		t.Fatalf("%s %s: status = %d, want %d", method, path, resp.StatusCode, wantCode)
	}
	return resp
}

type cardJSON struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
}

func decodeCard(t *testing.T, resp *http.Response) cardJSON {
	t.Helper()
	var card cardJSON
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	return card
}

func TestAuthGate(t *testing.T) {
	srv, _ := newTestServer(t)

	// no credentials
	resp := do(t, srv, http.MethodGet, "/cashcards/99", "", "", nil, http.StatusUnauthorized)
	if got := resp.Header.Get("WWW-Authenticate"); !strings.HasPrefix(got, "Basic") {
		t.Errorf("WWW-Authenticate = %q, want Basic challenge", got)
	}

	// wrong password
	do(t, srv, http.MethodGet, "/cashcards/99", "felix", "nope", nil, http.StatusUnauthorized)

	// unknown user
	do(t, srv, http.MethodGet, "/cashcards/99", "ghost", "abc123", nil, http.StatusUnauthorized)

	// valid credentials, missing role
	do(t, srv, http.MethodGet, "/cashcards/99", "user-owns-no-cards", "qrs456", nil, http.StatusForbidden)
}

func TestGetCard(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards/99", "felix", "abc123", nil, http.StatusOK)
	card := decodeCard(t, resp)
	if card.ID != 99 || card.Amount != 123.45 {
		t.Errorf("card = %+v, want id 99 amount 123.45", card)
	}
}

func TestGetCardNeverLeaksOwnership(t *testing.T) {
	srv, _ := newTestServer(t)

	// kumar2's card and a nonexistent card answer identically to felix
	do(t, srv, http.MethodGet, "/cashcards/102", "felix", "abc123", nil, http.StatusNotFound)
	do(t, srv, http.MethodGet, "/cashcards/9999", "felix", "abc123", nil, http.StatusNotFound)
}

func TestOwnerNeverSerialized(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards/99", "felix", "abc123", nil, http.StatusOK)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "owner") || strings.Contains(string(raw), "felix") {
		t.Errorf("owner leaked into response: %s", raw)
	}
}

func TestListDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards", "felix", "abc123", nil, http.StatusOK)
	var cards []cardJSON
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	want := []float64{1.00, 123.45, 150.00}
	if len(cards) != len(want) {
		t.Fatalf("got %d cards, want %d", len(cards), len(want))
	}
	for i, amount := range want {
		if cards[i].Amount != amount {
			t.Errorf("cards[%d].Amount = %v, want %v (default sort is amount ascending)", i, cards[i].Amount, amount)
		}
	}
}

func TestListPagingAndSort(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards?page=0&size=1&sort=amount,desc", "felix", "abc123", nil, http.StatusOK)
	var cards []cardJSON
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(cards) != 1 || cards[0].Amount != 150.00 {
		t.Errorf("got %+v, want one card with amount 150.00", cards)
	}
}

func TestListScopedToCaller(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards", "kumar2", "xyz789", nil, http.StatusOK)
	var cards []cardJSON
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != 102 {
		t.Errorf("kumar2 list = %+v, want only card 102", cards)
	}
}

func TestCreateCard(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/cashcards", "felix", "abc123",
		map[string]any{"id": 250, "amount": 250.00}, http.StatusCreated)

	location := resp.Header.Get("Location")
	if location != "/cashcards/250" {
		t.Errorf("Location = %q, want /cashcards/250", location)
	}

	getResp := do(t, srv, http.MethodGet, location, "felix", "abc123", nil, http.StatusOK)
	card := decodeCard(t, getResp)
	if card.ID != 250 || card.Amount != 250.00 {
		t.Errorf("created card = %+v", card)
	}

	// the new card belongs to felix, not to anyone else
	do(t, srv, http.MethodGet, location, "kumar2", "xyz789", nil, http.StatusNotFound)
}

func TestCreateIgnoresBodyOwner(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/cashcards", "felix", "abc123",
		map[string]any{"id": 251, "amount": 5.00, "owner": "kumar2"}, http.StatusCreated)

	// stamped with the caller's identity regardless of the body
	do(t, srv, http.MethodGet, "/cashcards/251", "felix", "abc123", nil, http.StatusOK)
	do(t, srv, http.MethodGet, "/cashcards/251", "kumar2", "xyz789", nil, http.StatusNotFound)
}

func TestUpdateCard(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPut, "/cashcards/99", "felix", "abc123",
		map[string]any{"amount": 19.99}, http.StatusNoContent)

	resp := do(t, srv, http.MethodGet, "/cashcards/99", "felix", "abc123", nil, http.StatusOK)
	card := decodeCard(t, resp)
	if card.ID != 99 || card.Amount != 19.99 {
		t.Errorf("card after update = %+v, want id 99 amount 19.99", card)
	}
}

func TestUpdateForeignCard(t *testing.T) {
	srv, db := newTestServer(t)

	do(t, srv, http.MethodPut, "/cashcards/102", "felix", "abc123",
		map[string]any{"amount": 0.01}, http.StatusNotFound)
	do(t, srv, http.MethodPut, "/cashcards/9999", "felix", "abc123",
		map[string]any{"amount": 0.01}, http.StatusNotFound)

	// kumar2's row untouched
	var card models.CashCard
	if err := db.First(&card, 102).Error; err != nil {
		t.Fatalf("load card 102: %v", err)
	}
	if card.Amount != 200.00 || card.Owner != "kumar2" {
		t.Errorf("card 102 changed: %+v", card)
	}
}

func TestDeleteCard(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodDelete, "/cashcards/99", "felix", "abc123", nil, http.StatusNoContent)
	do(t, srv, http.MethodGet, "/cashcards/99", "felix", "abc123", nil, http.StatusNotFound)

	// not idempotent in effect, but the repeat answers 404 not 204
	do(t, srv, http.MethodDelete, "/cashcards/99", "felix", "abc123", nil, http.StatusNotFound)
}

func TestDeleteForeignCard(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodDelete, "/cashcards/102", "felix", "abc123", nil, http.StatusNotFound)

	// still retrievable by its owner
	resp := do(t, srv, http.MethodGet, "/cashcards/102", "kumar2", "xyz789", nil, http.StatusOK)
	card := decodeCard(t, resp)
	if card.ID != 102 || card.Amount != 200.00 {
		t.Errorf("card 102 = %+v", card)
	}
}

func TestMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/cashcards", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("felix", "abc123")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAuditTrail(t *testing.T) {
	srv, db := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards/99", "felix", "abc123", nil, http.StatusOK)
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	var entry models.AccessLog
	if err := db.Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("load access log: %v", err)
	}
	if entry.Principal != "felix" || entry.Method != http.MethodGet || entry.Status != http.StatusOK {
		t.Errorf("access log = %+v", entry)
	}
	if entry.Path != "/cashcards/99" {
		t.Errorf("access log path = %q", entry.Path)
	}
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards/export/csv", "felix", "abc123", nil, http.StatusOK)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(raw)
	if !strings.HasPrefix(body, "id,amount") {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, "99,123.45") {
		t.Errorf("missing card 99: %q", body)
	}
	// kumar2's card must not appear in felix's export
	if strings.Contains(body, "102,") {
		t.Errorf("foreign card leaked into export: %q", body)
	}
}

func TestExportXLSX(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/cashcards/export/xlsx", "felix", "abc123", nil, http.StatusOK)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	// xlsx is a zip container
	if len(raw) < 4 || raw[0] != 'P' || raw[1] != 'K' {
		t.Errorf("body does not look like an xlsx workbook (%d bytes)", len(raw))
	}
}
