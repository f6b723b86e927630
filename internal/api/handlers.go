package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MitulMistry/paper-trader/internal/common"
	"github.com/MitulMistry/paper-trader/internal/database"
	"github.com/MitulMistry/paper-trader/internal/ledger"
	"github.com/MitulMistry/paper-trader/internal/models"
	"github.com/MitulMistry/paper-trader/internal/news"
	"github.com/MitulMistry/paper-trader/internal/quotes"
)

// LedgerService is the slice of the ledger engine the handlers invoke.
type LedgerService interface {
	Register(ctx context.Context, in ledger.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Buy(ctx context.Context, userID int, symbol, shares string) (*models.Transaction, error)
	Sell(ctx context.Context, userID int, symbol, shares string) (*models.Transaction, error)
	AddCash(ctx context.Context, userID int, amount string) (*models.User, error)
	ResetAccount(ctx context.Context, userID int, newCash string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int) error
	Portfolio(ctx context.Context, userID int) (*models.Portfolio, error)
	Transactions(ctx context.Context, userID int) ([]*models.Transaction, error)
}

// QuoteService resolves quotes for the public quote endpoint.
type QuoteService interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// NewsService fetches headlines for the public news endpoint.
type NewsService interface {
	GetNews(ctx context.Context, query string, days, count int) ([]*models.Article, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ledger LedgerService
	quotes QuoteService
	news   NewsService
	auth   *Auth
	log    *common.Logger
}

// NewHandler creates a new Handler
func NewHandler(l LedgerService, q QuoteService, n NewsService, auth *Auth, log *common.Logger) *Handler {
	if log == nil {
		log = common.NewLogger("info")
	}
	return &Handler{
		ledger: l,
		quotes: q,
		news:   n,
		auth:   auth,
		log:    log.Component("api"),
	}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in ledger.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.ledger.Register(r.Context(), in)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.ledger.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	token, err := h.auth.SignToken(user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to sign token")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

// GetQuote handles GET /quote/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := h.quotes.Lookup(r.Context(), symbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid symbol")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetNews handles GET /news?q=&days=&count=. A provider failure degrades to
// an empty list rather than an error.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	days := intQueryParam(r, "days", news.DefaultDays)
	count := intQueryParam(r, "count", news.DefaultCount)

	articles, err := h.news.GetNews(r.Context(), query, days, count)
	if err != nil {
		h.log.Warn().Str("query", query).Err(err).Msg("news lookup failed")
		articles = []*models.Article{}
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	respondJSON(w, http.StatusOK, articles)
}

// GetPortfolio handles GET /portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	portfolio, err := h.ledger.Portfolio(r.Context(), userID)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// GetHistory handles GET /history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	transactions, err := h.ledger.Transactions(r.Context(), userID)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}

	respondJSON(w, http.StatusOK, transactions)
}

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares string `json:"shares"`
}

// Buy handles POST /buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.ledger.Buy(r.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, transaction)
}

// Sell handles POST /sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.ledger.Sell(r.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, transaction)
}

// AddCash handles POST /cash
func (h *Handler) AddCash(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.ledger.AddCash(r.Context(), userID, req.Amount)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// ResetAccount handles POST /reset
func (h *Handler) ResetAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	var req struct {
		Cash string `json:"cash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.ledger.ResetAccount(r.Context(), userID, req.Cash)
	if err != nil {
		h.respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /account
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r)

	if err := h.ledger.DeleteAccount(r.Context(), userID); err != nil {
		h.respondLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondLedgerError maps ledger errors onto HTTP statuses.
func (h *Handler) respondLedgerError(w http.ResponseWriter, err error) {
	var vErr *ledger.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, ledger.ErrUnknownSymbol):
		respondError(w, http.StatusBadRequest, ledger.ErrUnknownSymbol.Error())
	case errors.Is(err, ledger.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, ledger.ErrInvalidCredentials.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, quotes.ErrUnavailable):
		respondError(w, http.StatusBadRequest, "invalid symbol")
	default:
		h.log.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func intQueryParam(r *http.Request, name string, defaultValue int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
