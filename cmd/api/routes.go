package main

import (
	"net/http"

	"github.com/rs/zerolog"

	httphandlers "bankapi/internal/interfaces/http"
	"bankapi/internal/shared/config"
	"bankapi/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", httphandlers.HandleRoot)
	mux.HandleFunc("GET /health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("POST /auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", deps.AuthHandler.HandleLogin)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	accounts := deps.AccountHandler

	mux.Handle("POST /account/create", authMiddleware(http.HandlerFunc(accounts.HandleCreateAccount)))
	mux.Handle("POST /account/deposit", authMiddleware(http.HandlerFunc(accounts.HandleDeposit)))
	mux.Handle("POST /account/withdraw", authMiddleware(http.HandlerFunc(accounts.HandleWithdraw)))
	mux.Handle("POST /account/transfer", authMiddleware(http.HandlerFunc(accounts.HandleTransfer)))
	mux.Handle("GET /account/balance/{id}", authMiddleware(http.HandlerFunc(accounts.HandleBalance)))
	mux.Handle("GET /account/transactions/{id}", authMiddleware(http.HandlerFunc(accounts.HandleListTransactions)))
	mux.Handle("GET /account/list", authMiddleware(http.HandlerFunc(accounts.HandleListAccounts)))

	// Apply global middleware, innermost first
	handler := middleware.Metrics(mux)
	handler = middleware.NoStore(handler)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.RequestID(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	return handler
}
