package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Service interface {
	RegisterUser(ctx context.Context, username, password string) (model.User, error)
	GetUser(ctx context.Context, userID int64) (model.User, error)

	CreatePortfolio(ctx context.Context, userID int64, name, description string) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)

	AddPosition(ctx context.Context, portfolioID int64, symbol string, shares, price decimal.Decimal) (model.Position, error)
	UpdatePosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (model.Position, error)
	RemovePosition(ctx context.Context, portfolioID int64, symbol string) (bool, error)
	GetHoldings(ctx context.Context, portfolioID int64) ([]model.Holding, error)
	GetUserHoldings(ctx context.Context, userID int64, portfolioID *int64) ([]model.Holding, error)
	GetPortfolioSummary(ctx context.Context, userID int64, portfolioID *int64) (model.PortfolioSummary, error)

	AdjustCash(ctx context.Context, portfolioID int64, amount decimal.Decimal, direction model.CashDirection) (decimal.Decimal, error)

	GetStockBySymbol(ctx context.Context, symbol string) (model.Stock, error)
	GetStocks(ctx context.Context) ([]model.Stock, error)
	SearchStocks(ctx context.Context, query string) ([]quoteModel.TickerRef, error)
	GetMarketOverview(ctx context.Context) ([]model.MarketIndex, error)

	AddToWatchlist(ctx context.Context, userID, portfolioID int64, symbol string) (model.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) (bool, error)
	GetWatchlist(ctx context.Context, userID int64, portfolioID *int64) ([]model.StockWithRecommendation, error)

	GetRecommendations(ctx context.Context) ([]model.Recommendation, error)
	RefreshRecommendations(ctx context.Context) error
	AnalyzeSymbol(ctx context.Context, symbol string) (aiModel.StockAnalysis, error)
	AnalyzeHoldings(ctx context.Context, portfolioID int64) ([]aiModel.StockAnalysis, error)

	Chat(ctx context.Context, userID int64, message string) (string, error)
	ClearChat(ctx context.Context, userID int64) error

	CreatePortfolioReport(ctx context.Context, userID, portfolioID int64) ([]byte, string, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("can't encode response", slog.String("err", err.Error()))
	}
}

// writeError maps service errors onto HTTP statuses.
func (c *Controller) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidPositionInput),
		errors.Is(err, service.ErrInvalidCashAmount),
		errors.Is(err, service.ErrSymbolNotResolvable):
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		c.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (c *Controller) writeBadRequest(w http.ResponseWriter, msg string) {
	c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// userID reads the caller identity from the X-User-ID header.
func (c *Controller) userID(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func (c *Controller) portfolioID(r *http.Request) (int64, bool) {
	portfolioID, err := strconv.ParseInt(chi.URLParam(r, "portfolioID"), 10, 64)
	if err != nil || portfolioID <= 0 {
		return 0, false
	}
	return portfolioID, true
}

// optionalPortfolioID reads the portfolioId query parameter when present.
func (c *Controller) optionalPortfolioID(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("portfolioId")
	if raw == "" {
		return nil, true
	}
	portfolioID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || portfolioID <= 0 {
		return nil, false
	}
	return &portfolioID, true
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Controller) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		c.writeBadRequest(w, "username and password are required")
		return
	}

	user, err := c.service.RegisterUser(r.Context(), req.Username, req.Password)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (c *Controller) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	user, err := c.service.GetUser(r.Context(), userID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (c *Controller) GetMarket(w http.ResponseWriter, r *http.Request) {
	indices, err := c.service.GetMarketOverview(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toMarketIndexResponses(indices))
}

func (c *Controller) GetStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := c.service.GetStocks(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toStockResponses(stocks))
}

func (c *Controller) SearchStocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		c.writeBadRequest(w, "q query parameter is required")
		return
	}

	refs, err := c.service.SearchStocks(r.Context(), query)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, refs)
}

func (c *Controller) GetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := c.service.GetStockBySymbol(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toStockResponse(stock))
}

func (c *Controller) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		c.writeBadRequest(w, "name is required")
		return
	}

	portfolio, err := c.service.CreatePortfolio(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, toPortfolioResponse(portfolio))
}

func (c *Controller) GetPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	portfolios, err := c.service.GetPortfolios(r.Context(), userID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toPortfolioResponses(portfolios))
}

func (c *Controller) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	portfolio, err := c.service.GetPortfolio(r.Context(), portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	holdings, err := c.service.GetHoldings(r.Context(), portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"portfolio": toPortfolioResponse(portfolio),
		"holdings":  toHoldingResponses(holdings),
	})
}

// GetHoldings serves the valued positions of one portfolio, defaulting to
// the user's default portfolio when no portfolioId is given.
func (c *Controller) GetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	portfolioID, ok := c.optionalPortfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolioId")
		return
	}

	holdings, err := c.service.GetUserHoldings(r.Context(), userID, portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toHoldingResponses(holdings))
}

func (c *Controller) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	portfolioID, ok := c.optionalPortfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolioId")
		return
	}

	summary, err := c.service.GetPortfolioSummary(r.Context(), userID, portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (c *Controller) AddPosition(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		c.writeBadRequest(w, "symbol, shares and price are required")
		return
	}

	position, err := c.service.AddPosition(r.Context(), portfolioID, req.Symbol, req.Shares, req.Price)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, toPositionResponse(position))
}

func (c *Controller) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeBadRequest(w, "shares and price are required")
		return
	}

	position, err := c.service.UpdatePosition(r.Context(), portfolioID, chi.URLParam(r, "symbol"), req.Shares, req.Price)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toPositionResponse(position))
}

func (c *Controller) RemovePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	removed, err := c.service.RemovePosition(r.Context(), portfolioID, chi.URLParam(r, "symbol"))
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (c *Controller) AdjustCash(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	var req cashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeBadRequest(w, "amount and direction are required")
		return
	}

	direction := model.CashDirection(req.Direction)
	if direction != model.CashDeposit && direction != model.CashWithdraw {
		c.writeBadRequest(w, "direction must be deposit or withdraw")
		return
	}

	balance, err := c.service.AdjustCash(r.Context(), portfolioID, req.Amount, direction)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, cashResponse{CashBalance: balance})
}

func (c *Controller) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	portfolioID, ok := c.optionalPortfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolioId")
		return
	}

	stocks, err := c.service.GetWatchlist(r.Context(), userID, portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toWatchlistStockResponses(stocks))
}

func (c *Controller) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" || req.PortfolioID <= 0 {
		c.writeBadRequest(w, "portfolioId and symbol are required")
		return
	}

	item, err := c.service.AddToWatchlist(r.Context(), userID, req.PortfolioID, req.Symbol)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]any{
		"watchlistId": item.WatchlistID,
		"symbol":      item.Symbol,
	})
}

func (c *Controller) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	removed, err := c.service.RemoveFromWatchlist(r.Context(), userID, chi.URLParam(r, "symbol"))
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (c *Controller) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := c.service.GetRecommendations(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toRecommendationResponses(recs))
}

func (c *Controller) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	// the sweep calls the advisor once per symbol, detach it from the request
	go func() {
		ctx := utils.CtxWithRqID(context.Background(), utils.GetRequestIDFromCtx(r.Context()))
		if err := c.service.RefreshRecommendations(ctx); err != nil {
			slog.Error("recommendation refresh failed", slog.String("err", err.Error()))
		}
	}()

	c.writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func (c *Controller) AnalyzeStock(w http.ResponseWriter, r *http.Request) {
	analysis, err := c.service.AnalyzeSymbol(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, analysis)
}

func (c *Controller) AnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	analyses, err := c.service.AnalyzeHoldings(r.Context(), portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, analyses)
}

func (c *Controller) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		c.writeBadRequest(w, "message is required")
		return
	}

	reply, err := c.service.Chat(r.Context(), userID, req.Message)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (c *Controller) ClearChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	if err := c.service.ClearChat(r.Context(), userID); err != nil {
		c.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) GetPortfolioReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.userID(r)
	if !ok {
		c.writeBadRequest(w, "X-User-ID header is required")
		return
	}

	portfolioID, ok := c.portfolioID(r)
	if !ok {
		c.writeBadRequest(w, "invalid portfolio id")
		return
	}

	file, filename, err := c.service.CreatePortfolioReport(r.Context(), userID, portfolioID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file); err != nil {
		slog.Error("can't write report", slog.String("err", err.Error()))
	}
}
