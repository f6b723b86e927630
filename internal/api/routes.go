package api

import (
	"github.com/gorilla/mux"

	"github.com/MitulMistry/paper-trader/internal/common"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, auth *Auth, log *common.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(log))

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Public routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/register", handler.Register).Methods("POST")
	api.HandleFunc("/login", handler.Login).Methods("POST")
	api.HandleFunc("/quote/{symbol}", handler.GetQuote).Methods("GET")
	api.HandleFunc("/news", handler.GetNews).Methods("GET")

	// Routes requiring an authenticated session
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(auth.RequireUser)
	protected.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")
	protected.HandleFunc("/history", handler.GetHistory).Methods("GET")
	protected.HandleFunc("/buy", handler.Buy).Methods("POST")
	protected.HandleFunc("/sell", handler.Sell).Methods("POST")
	protected.HandleFunc("/cash", handler.AddCash).Methods("POST")
	protected.HandleFunc("/reset", handler.ResetAccount).Methods("POST")
	protected.HandleFunc("/account", handler.DeleteAccount).Methods("DELETE")

	return r
}
