package service

import (
	"log/slog"
	"net/http"

	"github.com/splitvault/backend/internal/middleware"
	"github.com/splitvault/backend/internal/storage"
)

// WalletService serves wallet balance reads and, when enabled, the dev
// faucet. Real deployments fund wallets out of band; the faucet stands in
// for that during development and testing.
type WalletService struct {
	store         storage.Store
	faucetEnabled bool
}

// NewWalletService creates a new WalletService.
func NewWalletService(store storage.Store, faucetEnabled bool) *WalletService {
	return &WalletService{store: store, faucetEnabled: faucetEnabled}
}

type walletResponse struct {
	AccountID    string `json:"account_id"`
	BalanceUnits int64  `json:"balance_units"`
}

type faucetRequest struct {
	AmountUnits int64 `json:"amount_units"`
}

// GetWallet handles GET /v1/wallet: the caller's balance.
func (s *WalletService) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	account, err := s.store.GetAccount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{
		AccountID:    account.ID,
		BalanceUnits: account.BalanceUnits,
	})
}

// Faucet handles POST /v1/faucet: credits the caller's wallet. Returns 404
// unless FAUCET_ENABLED is set.
func (s *WalletService) Faucet(w http.ResponseWriter, r *http.Request) {
	if !s.faucetEnabled {
		http.NotFound(w, r)
		return
	}
	userID := middleware.GetUserID(r.Context())

	var req faucetRequest
	if err := readJSON(r, &req); err != nil || req.AmountUnits <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount_units must be positive"})
		return
	}

	if err := s.store.Deposit(r.Context(), userID, req.AmountUnits); err != nil {
		slog.Error("Faucet deposit failed", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}

	account, err := s.store.GetAccount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Faucet credited wallet", "user_id", userID, "amount_units", req.AmountUnits)
	writeJSON(w, http.StatusOK, walletResponse{
		AccountID:    account.ID,
		BalanceUnits: account.BalanceUnits,
	})
}
