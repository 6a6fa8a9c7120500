package service

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitvault/backend/internal/ledger"
	"github.com/splitvault/backend/internal/middleware"
	"github.com/splitvault/backend/internal/models"
)

// ExpenseService serves the expense group surface: create, read, quote,
// join-and-pay, settle.
type ExpenseService struct {
	engine *ledger.Engine
}

// NewExpenseService creates a new ExpenseService backed by the given engine.
func NewExpenseService(engine *ledger.Engine) *ExpenseService {
	return &ExpenseService{engine: engine}
}

type createGroupRequest struct {
	ExpenseID        string `json:"expense_id,omitempty"`
	Title            string `json:"title"`
	TotalCents       int64  `json:"total_cents"`
	ParticipantCount int    `json:"participant_count"`
}

type groupResponse struct {
	ID               string `json:"id"`
	ExpenseID        string `json:"expense_id"`
	OrganizerID      string `json:"organizer_id"`
	Title            string `json:"title"`
	TotalCents       int64  `json:"total_cents"`
	ShareCents       int64  `json:"share_cents"`
	ParticipantCount int    `json:"participant_count"`
	PaidCount        int    `json:"paid_count"`
	CustodyUnits     int64  `json:"custody_units"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"created_at"`
}

type participantResponse struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id"`
	AmountUnits int64  `json:"amount_units"`
	PaidAt      int64  `json:"paid_at"`
}

type quoteResponse struct {
	PriceCentsPerToken int64 `json:"price_cents_per_token"`
	ExpectedUnits      int64 `json:"expected_units"`
	MinUnits           int64 `json:"min_units"`
	MaxUnits           int64 `json:"max_units"`
}

type payRequest struct {
	AmountUnits int64 `json:"amount_units"`
}

type settleResponse struct {
	WithdrawnUnits int64 `json:"withdrawn_units"`
}

func toGroupResponse(g *models.ExpenseGroup) groupResponse {
	return groupResponse{
		ID:               g.ID,
		ExpenseID:        g.ExpenseID,
		OrganizerID:      g.OrganizerID,
		Title:            g.Title,
		TotalCents:       g.TotalCents,
		ShareCents:       g.ShareCents,
		ParticipantCount: g.ParticipantCount,
		PaidCount:        g.PaidCount,
		CustodyUnits:     g.CustodyUnits,
		Status:           g.Status().String(),
		CreatedAt:        g.CreatedAt,
	}
}

// CreateGroup handles POST /v1/groups.
func (s *ExpenseService) CreateGroup(w http.ResponseWriter, r *http.Request) {
	organizerID := middleware.GetUserID(r.Context())

	var req createGroupRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	slog.Info("CreateGroup request received",
		"organizer_id", organizerID,
		"title", req.Title,
		"total_cents", req.TotalCents,
		"participants", req.ParticipantCount,
	)

	group, err := s.engine.CreateGroup(r.Context(), organizerID, req.ExpenseID, req.Title, req.TotalCents, req.ParticipantCount)
	if err != nil {
		slog.Error("CreateGroup failed", "organizer_id", organizerID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// GetGroup handles GET /v1/groups/{groupID}. The response embeds the
// participant list; groups are readable by anyone who knows the ID.
func (s *ExpenseService) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	group, err := s.engine.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	participants, err := s.engine.ListParticipants(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		groupResponse
		Participants []participantResponse `json:"participants"`
	}{
		groupResponse: toGroupResponse(group),
		Participants:  make([]participantResponse, 0, len(participants)),
	}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, participantResponse{
			ID:          p.ID,
			GroupID:     p.GroupID,
			PayerID:     p.PayerID,
			AmountUnits: p.AmountUnits,
			PaidAt:      p.PaidAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Quote handles GET /v1/groups/{groupID}/quote: the expected payment amount
// and acceptance band at the current oracle price, for clients to fill in
// before submitting.
func (s *ExpenseService) Quote(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	quote, err := s.engine.Quote(r.Context(), groupID)
	if err != nil {
		slog.Warn("Quote failed", "group_id", groupID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		PriceCentsPerToken: quote.PriceCentsPerToken,
		ExpectedUnits:      quote.ExpectedUnits,
		MinUnits:           quote.MinUnits,
		MaxUnits:           quote.MaxUnits,
	})
}

// JoinAndPay handles POST /v1/groups/{groupID}/payments.
func (s *ExpenseService) JoinAndPay(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	payerID := middleware.GetUserID(r.Context())

	var req payRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	slog.Info("JoinAndPay request received",
		"group_id", groupID,
		"payer_id", payerID,
		"amount_units", req.AmountUnits,
	)

	participant, err := s.engine.JoinAndPay(r.Context(), groupID, payerID, req.AmountUnits)
	if err != nil {
		slog.Warn("JoinAndPay failed", "group_id", groupID, "payer_id", payerID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, participantResponse{
		ID:          participant.ID,
		GroupID:     participant.GroupID,
		PayerID:     participant.PayerID,
		AmountUnits: participant.AmountUnits,
		PaidAt:      participant.PaidAt,
	})
}

// Settle handles POST /v1/groups/{groupID}/settle.
func (s *ExpenseService) Settle(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	callerID := middleware.GetUserID(r.Context())

	slog.Info("Settle request received", "group_id", groupID, "caller_id", callerID)

	withdrawn, err := s.engine.Settle(r.Context(), groupID, callerID)
	if err != nil {
		slog.Warn("Settle failed", "group_id", groupID, "caller_id", callerID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settleResponse{WithdrawnUnits: withdrawn})
}
