// Package ledger implements the escrow state machine for shared-expense
// settlement: group creation, oracle-priced join-and-pay, and one-shot
// settlement. The storage substrate executes each transition atomically; the
// engine owns the business rules around it.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitvault/backend/internal/config"
	"github.com/splitvault/backend/internal/metrics"
	"github.com/splitvault/backend/internal/models"
	"github.com/splitvault/backend/internal/oracle"
	"github.com/splitvault/backend/internal/pricing"
	"github.com/splitvault/backend/internal/storage"
)

// PaymentQuote is the expected payment amount and acceptance band for a
// group's share at the current oracle price. Clients use it to fill in the
// amount they submit; the engine re-derives it at submission time.
type PaymentQuote struct {
	PriceCentsPerToken int64
	ExpectedUnits      int64
	MinUnits           int64
	MaxUnits           int64
}

// Engine wires the escrow business logic with the storage substrate and the
// price oracle.
type Engine struct {
	store   storage.Store
	oracle  oracle.PriceOracle
	metrics *metrics.Metrics

	feed               string
	quoteMaxAge        time.Duration
	slippageBps        int64
	maxParticipants    int
	requireFullPayment bool

	nowFn func() time.Time
}

// NewEngine creates an engine bound to the given store and oracle, applying
// the policy knobs from cfg. metrics may be nil.
func NewEngine(store storage.Store, po oracle.PriceOracle, cfg config.Config, m *metrics.Metrics) *Engine {
	return &Engine{
		store:              store,
		oracle:             po,
		metrics:            m,
		feed:               cfg.OracleFeed,
		quoteMaxAge:        cfg.QuoteMaxAge,
		slippageBps:        cfg.SlippageBps,
		maxParticipants:    cfg.MaxParticipants,
		requireFullPayment: cfg.RequireFullPayment,
		nowFn:              time.Now,
	}
}

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = time.Now
		return
	}
	e.nowFn = now
}

// CreateGroup validates the inputs, computes the per-participant share, and
// allocates the group with an empty custody account. The expense ID is
// generated when the caller supplies none; a duplicate (organizer, expense
// id) pair fails with ErrGroupExists.
func (e *Engine) CreateGroup(ctx context.Context, organizerID, expenseID, title string, totalCents int64, participantCount int) (*models.ExpenseGroup, error) {
	if err := validateCreate(title, totalCents, participantCount, e.maxParticipants); err != nil {
		return nil, err
	}
	if expenseID == "" {
		expenseID = uuid.New().String()
	}

	group := &models.ExpenseGroup{
		ID:               GroupKey(organizerID, expenseID),
		ExpenseID:        expenseID,
		OrganizerID:      organizerID,
		Title:            title,
		TotalCents:       totalCents,
		ShareCents:       shareOf(totalCents, participantCount),
		ParticipantCount: participantCount,
		CreatedAt:        e.nowFn().Unix(),
	}

	if err := e.store.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, storage.ErrGroupExists) {
			return nil, ErrGroupExists
		}
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.GroupsCreated.Inc()
	}
	slog.Info("Expense group created",
		"group_id", group.ID,
		"organizer_id", organizerID,
		"total_cents", totalCents,
		"share_cents", group.ShareCents,
		"participants", participantCount,
	)
	return group, nil
}

// GetGroup returns the group by ID.
func (e *Engine) GetGroup(ctx context.Context, groupID string) (*models.ExpenseGroup, error) {
	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// ListParticipants returns the group's accepted payments, oldest first.
func (e *Engine) ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error) {
	if _, err := e.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return e.store.ListParticipants(ctx, groupID)
}

// Quote fetches a fresh oracle quote and converts the group's share into the
// expected payment amount with its acceptance band.
func (e *Engine) Quote(ctx context.Context, groupID string) (*PaymentQuote, error) {
	group, err := e.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return e.quoteShare(ctx, group.ShareCents)
}

func (e *Engine) quoteShare(ctx context.Context, shareCents int64) (*PaymentQuote, error) {
	raw, err := e.oracle.GetQuote(ctx, e.feed)
	if err != nil {
		return nil, err
	}
	price, err := oracle.Normalize(raw, e.nowFn(), e.quoteMaxAge)
	if err != nil {
		return nil, err
	}
	expected, err := pricing.ExpectedUnits(shareCents, price)
	if err != nil {
		return nil, err
	}
	lo, hi, err := pricing.Band(expected, e.slippageBps)
	if err != nil {
		return nil, err
	}
	return &PaymentQuote{
		PriceCentsPerToken: price,
		ExpectedUnits:      expected,
		MinUnits:           lo,
		MaxUnits:           hi,
	}, nil
}

// JoinAndPay accepts a payment for the group: the submitted amount must fall
// inside the acceptance band at the current oracle price, the payer must not
// have paid before, and the group must still have an open slot. On success
// the participant record, the paid-count increment, and the wallet-to-custody
// transfer have all committed; on any failure none of them have.
func (e *Engine) JoinAndPay(ctx context.Context, groupID, payerID string, amountUnits int64) (*models.Participant, error) {
	group, err := e.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Settled {
		return nil, e.rejectPayment(ErrAlreadySettled)
	}
	if group.PaidCount >= group.ParticipantCount {
		return nil, e.rejectPayment(ErrGroupFull)
	}

	quote, err := e.quoteShare(ctx, group.ShareCents)
	if err != nil {
		return nil, e.rejectPayment(err)
	}
	if amountUnits < quote.MinUnits || amountUnits > quote.MaxUnits {
		slog.Warn("Payment outside acceptance band",
			"group_id", groupID,
			"payer_id", payerID,
			"amount_units", amountUnits,
			"min_units", quote.MinUnits,
			"max_units", quote.MaxUnits,
		)
		return nil, e.rejectPayment(ErrInvalidPaymentAmount)
	}

	participant := &models.Participant{
		ID:          ParticipantKey(groupID, payerID),
		GroupID:     groupID,
		PayerID:     payerID,
		AmountUnits: amountUnits,
		PaidAt:      e.nowFn().Unix(),
	}

	if err := e.store.AddParticipant(ctx, participant); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateParticipant):
			return nil, e.rejectPayment(ErrDuplicateParticipant)
		case errors.Is(err, storage.ErrAlreadySettled):
			return nil, e.rejectPayment(ErrAlreadySettled)
		case errors.Is(err, storage.ErrGroupFull):
			return nil, e.rejectPayment(ErrGroupFull)
		case errors.Is(err, storage.ErrInsufficientFunds):
			return nil, e.rejectPayment(ErrInsufficientFunds)
		case errors.Is(err, storage.ErrGroupNotFound):
			return nil, e.rejectPayment(ErrGroupNotFound)
		default:
			return nil, err
		}
	}

	if e.metrics != nil {
		e.metrics.PaymentsAccepted.Inc()
	}
	slog.Info("Payment accepted",
		"group_id", groupID,
		"payer_id", payerID,
		"amount_units", amountUnits,
		"price_cents", quote.PriceCentsPerToken,
	)
	return participant, nil
}

// Settle sweeps the group's custody balance to the organizer, exactly once.
// Only the organizer may call it; with the strict policy enabled it also
// requires every slot to be paid. Partial settlement is allowed otherwise -
// whatever custody holds is withdrawn and the group closes to payment.
func (e *Engine) Settle(ctx context.Context, groupID, callerID string) (int64, error) {
	group, err := e.GetGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if group.OrganizerID != callerID {
		return 0, ErrUnauthorized
	}
	if group.Settled {
		return 0, ErrAlreadySettled
	}
	if e.requireFullPayment && group.PaidCount < group.ParticipantCount {
		return 0, ErrNotFullyPaid
	}

	withdrawn, err := e.store.SettleGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadySettled) {
			return 0, ErrAlreadySettled
		}
		return 0, err
	}

	if e.metrics != nil {
		e.metrics.SettlementsCompleted.Inc()
		e.metrics.UnitsWithdrawn.Add(float64(withdrawn))
	}
	slog.Info("Group settled",
		"group_id", groupID,
		"organizer_id", callerID,
		"withdrawn_units", withdrawn,
	)
	return withdrawn, nil
}

func (e *Engine) rejectPayment(err error) error {
	if e.metrics != nil {
		e.metrics.PaymentsRejected.WithLabelValues(rejectReason(err)).Inc()
	}
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadySettled):
		return "settled"
	case errors.Is(err, ErrGroupFull):
		return "full"
	case errors.Is(err, ErrDuplicateParticipant):
		return "duplicate"
	case errors.Is(err, ErrInvalidPaymentAmount):
		return "band"
	case errors.Is(err, ErrInsufficientFunds):
		return "funds"
	case errors.Is(err, oracle.ErrStalePrice):
		return "stale_price"
	case errors.Is(err, oracle.ErrInvalidPrice):
		return "invalid_price"
	default:
		return "other"
	}
}
