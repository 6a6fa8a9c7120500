package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitvault/backend/internal/auth"
	"github.com/splitvault/backend/internal/middleware"
)

// NewRouter assembles the HTTP surface. Auth endpoints are public; everything
// that acts as a caller identity requires a valid token. Group reads and
// quotes are public - a group is not exclusively readable by its organizer.
func NewRouter(
	jwtManager *auth.JWTManager,
	authSvc *AuthService,
	expenseSvc *ExpenseService,
	walletSvc *WalletService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authSvc.Register)
		r.Post("/auth/login", authSvc.Login)

		r.Get("/groups/{groupID}", expenseSvc.GetGroup)
		r.Get("/groups/{groupID}/quote", expenseSvc.Quote)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Post("/groups", expenseSvc.CreateGroup)
			r.Post("/groups/{groupID}/payments", expenseSvc.JoinAndPay)
			r.Post("/groups/{groupID}/settle", expenseSvc.Settle)

			r.Get("/wallet", walletSvc.GetWallet)
			r.Post("/faucet", walletSvc.Faucet)
		})
	})

	return r
}
