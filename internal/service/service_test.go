package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/splitvault/backend/internal/auth"
	"github.com/splitvault/backend/internal/config"
	"github.com/splitvault/backend/internal/ledger"
	"github.com/splitvault/backend/internal/oracle"
	"github.com/splitvault/backend/internal/storage"
	"github.com/splitvault/backend/internal/storage/sqlite"
)

func testServerConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		OracleFeed:      "SOL/USD",
		QuoteMaxAge:     time.Minute,
		SlippageBps:     200,
		MaxParticipants: 10,
		FaucetEnabled:   true,
	}
}

// setupTestServer wires the full stack behind an httptest server: sqlite
// store, manual oracle publishing $100.00/token, engine, and router.
func setupTestServer(t *testing.T, cfg config.Config) (*httptest.Server, *oracle.ManualOracle, storage.Store) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	manual := oracle.NewManualOracle()
	manual.Set(cfg.OracleFeed, oracle.Quote{
		Mantissa:   10_000_000_000,
		Exponent:   -8,
		ObservedAt: time.Now(),
	})

	engine := ledger.NewEngine(store, manual, cfg, nil)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	server := httptest.NewServer(NewRouter(
		jwtManager,
		NewAuthService(authenticator, jwtManager, store),
		NewExpenseService(engine),
		NewWalletService(store, cfg.FaucetEnabled),
	))
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return server, manual, store
}

func doRequest(t *testing.T, method, url, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp.StatusCode, data
}

func decodeJSON(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", data, err)
	}
}

type sessionBody struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

type groupBody struct {
	ID               string `json:"id"`
	OrganizerID      string `json:"organizer_id"`
	Title            string `json:"title"`
	TotalCents       int64  `json:"total_cents"`
	ShareCents       int64  `json:"share_cents"`
	ParticipantCount int    `json:"participant_count"`
	PaidCount        int    `json:"paid_count"`
	CustodyUnits     int64  `json:"custody_units"`
	Status           string `json:"status"`
	Participants     []struct {
		PayerID     string `json:"payer_id"`
		AmountUnits int64  `json:"amount_units"`
	} `json:"participants"`
}

type quoteBody struct {
	PriceCentsPerToken int64 `json:"price_cents_per_token"`
	ExpectedUnits      int64 `json:"expected_units"`
	MinUnits           int64 `json:"min_units"`
	MaxUnits           int64 `json:"max_units"`
}

type walletBody struct {
	AccountID    string `json:"account_id"`
	BalanceUnits int64  `json:"balance_units"`
}

func registerUser(t *testing.T, baseURL, email, name string) (token, userID string) {
	t.Helper()
	status, data := doRequest(t, http.MethodPost, baseURL+"/v1/auth/register", "", map[string]any{
		"email":        email,
		"display_name": name,
		"password":     "correct-horse-battery",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, status, data)
	}
	var session sessionBody
	decodeJSON(t, data, &session)
	return session.Token, session.User.ID
}

func fundWallet(t *testing.T, baseURL, token string, units int64) {
	t.Helper()
	status, data := doRequest(t, http.MethodPost, baseURL+"/v1/faucet", token, map[string]any{
		"amount_units": units,
	})
	if status != http.StatusOK {
		t.Fatalf("faucet: expected 200, got %d: %s", status, data)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	server, _, _ := setupTestServer(t, testServerConfig())

	token, userID := registerUser(t, server.URL, "alice@example.com", "Alice")
	if token == "" || userID == "" {
		t.Fatal("expected non-empty token and user ID")
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/auth/register", "", map[string]any{
			"email":        "alice@example.com",
			"display_name": "Other Alice",
			"password":     "correct-horse-battery",
		})
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/auth/register", "", map[string]any{
			"email":        "bob@example.com",
			"display_name": "Bob",
			"password":     "short",
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("login returns a session", func(t *testing.T) {
		status, data := doRequest(t, http.MethodPost, server.URL+"/v1/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "correct-horse-battery",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, data)
		}
		var session sessionBody
		decodeJSON(t, data, &session)
		if session.User.ID != userID {
			t.Errorf("expected user %s, got %s", userID, session.User.ID)
		}
		if session.Token == "" {
			t.Error("expected non-empty token")
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password!",
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})
}

func TestWallet(t *testing.T) {
	server, _, _ := setupTestServer(t, testServerConfig())
	token, userID := registerUser(t, server.URL, "carol@example.com", "Carol")

	t.Run("requires auth", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodGet, server.URL+"/v1/wallet", "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("new wallet is empty", func(t *testing.T) {
		status, data := doRequest(t, http.MethodGet, server.URL+"/v1/wallet", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, data)
		}
		var wallet walletBody
		decodeJSON(t, data, &wallet)
		if wallet.AccountID != userID || wallet.BalanceUnits != 0 {
			t.Errorf("expected empty wallet for %s, got %+v", userID, wallet)
		}
	})

	t.Run("faucet credits the wallet", func(t *testing.T) {
		fundWallet(t, server.URL, token, 1_000_000)

		status, data := doRequest(t, http.MethodGet, server.URL+"/v1/wallet", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		var wallet walletBody
		decodeJSON(t, data, &wallet)
		if wallet.BalanceUnits != 1_000_000 {
			t.Errorf("balance: expected 1000000, got %d", wallet.BalanceUnits)
		}
	})

	t.Run("faucet rejects non-positive amounts", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/faucet", token, map[string]any{
			"amount_units": 0,
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("faucet hidden when disabled", func(t *testing.T) {
		cfg := testServerConfig()
		cfg.FaucetEnabled = false
		disabled, _, _ := setupTestServer(t, cfg)
		other, _ := registerUser(t, disabled.URL, "carol@example.com", "Carol")

		status, _ := doRequest(t, http.MethodPost, disabled.URL+"/v1/faucet", other, map[string]any{
			"amount_units": 100,
		})
		if status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", status)
		}
	})
}

// TestGroupLifecycle drives a group end to end: create, quote, two payments,
// settle, and the conflicts along the way.
func TestGroupLifecycle(t *testing.T) {
	server, _, _ := setupTestServer(t, testServerConfig())

	organizerToken, organizerID := registerUser(t, server.URL, "organizer@example.com", "Organizer")
	payer1Token, payer1ID := registerUser(t, server.URL, "payer1@example.com", "Payer One")
	payer2Token, _ := registerUser(t, server.URL, "payer2@example.com", "Payer Two")
	payer3Token, _ := registerUser(t, server.URL, "payer3@example.com", "Payer Three")
	for _, token := range []string{payer1Token, payer2Token, payer3Token} {
		fundWallet(t, server.URL, token, 100_000_000)
	}

	status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/groups", "", map[string]any{
		"title": "No Auth", "total_cents": 500, "participant_count": 2,
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: expected 401, got %d", status)
	}

	// $5.00 split two ways at $100.00/token: each share is 250 cents,
	// expected payment 25_000_000 base units.
	status, data := doRequest(t, http.MethodPost, server.URL+"/v1/groups", organizerToken, map[string]any{
		"expense_id":        "dinner",
		"title":             "Team Dinner",
		"total_cents":       500,
		"participant_count": 2,
	})
	if status != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", status, data)
	}
	var group groupBody
	decodeJSON(t, data, &group)
	if group.ShareCents != 250 {
		t.Fatalf("share: expected 250, got %d", group.ShareCents)
	}
	if group.OrganizerID != organizerID || group.Status != "open" {
		t.Fatalf("unexpected group: %+v", group)
	}
	groupURL := fmt.Sprintf("%s/v1/groups/%s", server.URL, group.ID)

	t.Run("duplicate expense key conflicts", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/groups", organizerToken, map[string]any{
			"expense_id":        "dinner",
			"title":             "Team Dinner Again",
			"total_cents":       900,
			"participant_count": 3,
		})
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("group is publicly readable", func(t *testing.T) {
		status, data := doRequest(t, http.MethodGet, groupURL, "", nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		var got groupBody
		decodeJSON(t, data, &got)
		if got.Title != "Team Dinner" || got.PaidCount != 0 {
			t.Errorf("unexpected group: %+v", got)
		}
	})

	var quote quoteBody
	t.Run("quote previews the acceptance band", func(t *testing.T) {
		status, data := doRequest(t, http.MethodGet, groupURL+"/quote", "", nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, data)
		}
		decodeJSON(t, data, &quote)
		if quote.PriceCentsPerToken != 10_000 {
			t.Errorf("price: expected 10000, got %d", quote.PriceCentsPerToken)
		}
		if quote.ExpectedUnits != 25_000_000 {
			t.Errorf("expected units: expected 25000000, got %d", quote.ExpectedUnits)
		}
		if quote.MinUnits != 24_500_000 || quote.MaxUnits != 25_500_000 {
			t.Errorf("band: expected [24500000, 25500000], got [%d, %d]", quote.MinUnits, quote.MaxUnits)
		}
	})

	t.Run("payment outside the band rejected", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/payments", payer1Token, map[string]any{
			"amount_units": quote.MaxUnits + 1,
		})
		if status != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", status)
		}
	})

	t.Run("first payment accepted", func(t *testing.T) {
		status, data := doRequest(t, http.MethodPost, groupURL+"/payments", payer1Token, map[string]any{
			"amount_units": quote.ExpectedUnits,
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, data)
		}

		_, data = doRequest(t, http.MethodGet, groupURL, "", nil)
		var got groupBody
		decodeJSON(t, data, &got)
		if got.PaidCount != 1 || got.CustodyUnits != quote.ExpectedUnits {
			t.Errorf("after first payment: %+v", got)
		}
		if len(got.Participants) != 1 || got.Participants[0].PayerID != payer1ID {
			t.Errorf("participants: %+v", got.Participants)
		}
	})

	t.Run("second payment from same payer conflicts", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/payments", payer1Token, map[string]any{
			"amount_units": quote.ExpectedUnits,
		})
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("last slot fills the group", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/payments", payer2Token, map[string]any{
			"amount_units": quote.MinUnits,
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", status)
		}

		_, data := doRequest(t, http.MethodGet, groupURL, "", nil)
		var got groupBody
		decodeJSON(t, data, &got)
		if got.Status != "fully_paid" || got.PaidCount != 2 {
			t.Errorf("after full payment: %+v", got)
		}
	})

	t.Run("full group rejects further payments", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/payments", payer3Token, map[string]any{
			"amount_units": quote.ExpectedUnits,
		})
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("only the organizer settles", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/settle", payer1Token, nil)
		if status != http.StatusForbidden {
			t.Errorf("expected 403, got %d", status)
		}
	})

	wantCustody := quote.ExpectedUnits + quote.MinUnits
	t.Run("settle sweeps custody to the organizer", func(t *testing.T) {
		status, data := doRequest(t, http.MethodPost, groupURL+"/settle", organizerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, data)
		}
		var settled struct {
			WithdrawnUnits int64 `json:"withdrawn_units"`
		}
		decodeJSON(t, data, &settled)
		if settled.WithdrawnUnits != wantCustody {
			t.Errorf("withdrawn: expected %d, got %d", wantCustody, settled.WithdrawnUnits)
		}

		_, data = doRequest(t, http.MethodGet, server.URL+"/v1/wallet", organizerToken, nil)
		var wallet walletBody
		decodeJSON(t, data, &wallet)
		if wallet.BalanceUnits != wantCustody {
			t.Errorf("organizer wallet: expected %d, got %d", wantCustody, wallet.BalanceUnits)
		}
	})

	t.Run("second settle conflicts", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/settle", organizerToken, nil)
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
	})

	t.Run("settled group shows final state", func(t *testing.T) {
		_, data := doRequest(t, http.MethodGet, groupURL, "", nil)
		var got groupBody
		decodeJSON(t, data, &got)
		if got.Status != "settled" || got.CustodyUnits != 0 {
			t.Errorf("after settle: %+v", got)
		}
	})
}

func TestGroupValidation(t *testing.T) {
	server, _, _ := setupTestServer(t, testServerConfig())
	token, _ := registerUser(t, server.URL, "organizer@example.com", "Organizer")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty title", map[string]any{"title": "", "total_cents": 500, "participant_count": 2}},
		{"zero amount", map[string]any{"title": "Dinner", "total_cents": 0, "participant_count": 2}},
		{"single participant", map[string]any{"title": "Dinner", "total_cents": 500, "participant_count": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/groups", token, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}

	t.Run("unknown group is 404", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodGet, server.URL+"/v1/groups/missing", "", nil)
		if status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", status)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, server.URL+"/v1/groups", token, map[string]any{
			"title": "Dinner", "total_cents": 500, "participant_count": 2, "surprise": true,
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})
}

func TestStaleQuote(t *testing.T) {
	cfg := testServerConfig()
	server, manual, _ := setupTestServer(t, cfg)

	organizerToken, _ := registerUser(t, server.URL, "organizer@example.com", "Organizer")
	payerToken, _ := registerUser(t, server.URL, "payer@example.com", "Payer")
	fundWallet(t, server.URL, payerToken, 100_000_000)

	status, data := doRequest(t, http.MethodPost, server.URL+"/v1/groups", organizerToken, map[string]any{
		"title": "Stale Test", "total_cents": 500, "participant_count": 2,
	})
	if status != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", status, data)
	}
	var group groupBody
	decodeJSON(t, data, &group)
	groupURL := fmt.Sprintf("%s/v1/groups/%s", server.URL, group.ID)

	manual.Set(cfg.OracleFeed, oracle.Quote{
		Mantissa:   10_000_000_000,
		Exponent:   -8,
		ObservedAt: time.Now().Add(-10 * time.Minute),
	})

	t.Run("quote rejects stale prices", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodGet, groupURL+"/quote", "", nil)
		if status != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", status)
		}
	})

	t.Run("payment rejects stale prices", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, groupURL+"/payments", payerToken, map[string]any{
			"amount_units": 25_000_000,
		})
		if status != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", status)
		}
	})
}
