// Package http exposes the REST API: auth, transaction CRUD with
// filtering, pagination and summaries, and profile management. Routing
// uses the stdlib method+pattern mux; the exact summary pattern takes
// precedence over the {id} wildcard.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const authRequestsPerMinute = 20

type Server struct {
	http.Server
	transactions *services.TransactionService
	users        *services.UserService
	tokens       *auth.TokenManager
	rateLimiter  *rateLimiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, transactions *services.TransactionService, users *services.UserService, tokens *auth.TokenManager, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		transactions: transactions,
		users:        users,
		tokens:       tokens,
		rateLimiter:  newRateLimiter(authRequestsPerMinute),
		logger:       logger,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.withRateLimit(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withRateLimit(s.handleLogin))

	mux.HandleFunc("GET /api/dashboard", s.requireAuth(s.handleDashboard))

	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/summary/stats", s.requireAuth(s.handleTransactionSummary))
	mux.HandleFunc("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/user/profile", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("PUT /api/user/profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /api/user/account", s.requireAuth(s.handleDeleteAccount))

	s.Server = http.Server{
		Addr:    addr,
		Handler: log.Middleware(logger)(s.withObservability(mux)),
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
