package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitvault/backend/internal/auth"
	"github.com/splitvault/backend/internal/config"
	"github.com/splitvault/backend/internal/ledger"
	"github.com/splitvault/backend/internal/metrics"
	"github.com/splitvault/backend/internal/oracle"
	"github.com/splitvault/backend/internal/service"
	"github.com/splitvault/backend/internal/storage/sqlite"
	"github.com/splitvault/backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.FromEnv()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var priceOracle oracle.PriceOracle
	if cfg.OracleURL != "" {
		priceOracle = oracle.NewHTTPOracle(nil, cfg.OracleURL, cfg.OracleAPIKey)
		slog.Info("Price oracle configured", "endpoint", cfg.OracleURL, "feed", cfg.OracleFeed)
	} else {
		// Development fallback: a fixed $100.00/token quote refreshed on
		// read so it never goes stale.
		manual := oracle.NewManualOracle()
		priceOracle = refreshingOracle{manual: manual, feed: cfg.OracleFeed}
		slog.Warn("No ORACLE_URL set, using built-in manual oracle", "feed", cfg.OracleFeed)
	}

	m := metrics.New()
	engine := ledger.NewEngine(store, priceOracle, cfg, m)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	router := service.NewRouter(
		jwtManager,
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewExpenseService(engine),
		service.NewWalletService(store, cfg.FaucetEnabled),
	)

	// h2c allows HTTP/2 without TLS for clients that want it.
	handler := h2c.NewHandler(router, &http2.Server{})

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// refreshingOracle wraps the manual oracle with a quote stamped at read time.
type refreshingOracle struct {
	manual *oracle.ManualOracle
	feed   string
}

func (o refreshingOracle) GetQuote(ctx context.Context, feed string) (oracle.Quote, error) {
	o.manual.Set(o.feed, oracle.Quote{
		Mantissa:   10_000_000_000,
		Exponent:   -8,
		ObservedAt: time.Now(),
	})
	return o.manual.GetQuote(ctx, feed)
}
