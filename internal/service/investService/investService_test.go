package investService

import (
	"context"
	"testing"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type positionKey struct {
	portfolioID int64
	symbol      string
}

type fakeRepo struct {
	users      map[int64]model.User
	portfolios map[int64]model.Portfolio
	positions  map[positionKey]model.Position
	stocks     map[string]model.Stock
	watchlist  map[string]model.WatchlistItem
	recs       []model.Recommendation
	indices    map[string]model.MarketIndex
	nextID     int64
	inserted   int
	updated    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      map[int64]model.User{},
		portfolios: map[int64]model.Portfolio{},
		positions:  map[positionKey]model.Position{},
		stocks:     map[string]model.Stock{},
		watchlist:  map[string]model.WatchlistItem{},
		indices:    map[string]model.MarketIndex{},
	}
}

func (r *fakeRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

func (r *fakeRepo) InsertUser(ctx context.Context, username, password string) (int64, error) {
	for _, u := range r.users {
		if u.Username == username {
			return 0, repository.ErrAlreadyExists
		}
	}
	id := r.id()
	r.users[id] = model.User{UserID: id, Username: username}
	return id, nil
}

func (r *fakeRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) CreatePortfolio(ctx context.Context, userID int64, name, description string, cashBalance decimal.Decimal, isDefault bool) (model.Portfolio, error) {
	p := model.Portfolio{
		PortfolioID: r.id(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CashBalance: cashBalance,
		IsDefault:   isDefault,
	}
	r.portfolios[p.PortfolioID] = p
	return p, nil
}

func (r *fakeRepo) GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	p, ok := r.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error) {
	var res []model.Portfolio
	for _, p := range r.portfolios {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetDefaultPortfolio(ctx context.Context, userID int64) (model.Portfolio, error) {
	for _, p := range r.portfolios {
		if p.UserID == userID && p.IsDefault {
			return p, nil
		}
	}
	return model.Portfolio{}, repository.ErrNotFound
}

func (r *fakeRepo) GetPortfolioForUpdate(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	return r.GetPortfolio(ctx, portfolioID)
}

func (r *fakeRepo) UpdatePortfolioCashBalance(ctx context.Context, portfolioID int64, newBalance decimal.Decimal) error {
	p, ok := r.portfolios[portfolioID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CashBalance = newBalance
	r.portfolios[portfolioID] = p
	return nil
}

func (r *fakeRepo) GetPositionForUpdate(ctx context.Context, portfolioID int64, symbol string) (model.Position, error) {
	p, ok := r.positions[positionKey{portfolioID, symbol}]
	if !ok {
		return model.Position{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) InsertPosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (model.Position, error) {
	key := positionKey{portfolioID, symbol}
	if _, ok := r.positions[key]; ok {
		return model.Position{}, repository.ErrAlreadyExists
	}
	p := model.Position{PositionID: r.id(), PortfolioID: portfolioID, Symbol: symbol, Shares: shares, AvgPrice: avgPrice}
	r.positions[key] = p
	r.inserted++
	return p, nil
}

func (r *fakeRepo) UpdatePosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (model.Position, error) {
	key := positionKey{portfolioID, symbol}
	p, ok := r.positions[key]
	if !ok {
		return model.Position{}, repository.ErrNotFound
	}
	p.Shares = shares
	p.AvgPrice = avgPrice
	r.positions[key] = p
	r.updated++
	return p, nil
}

func (r *fakeRepo) DeletePosition(ctx context.Context, portfolioID int64, symbol string) (bool, error) {
	key := positionKey{portfolioID, symbol}
	if _, ok := r.positions[key]; !ok {
		return false, nil
	}
	delete(r.positions, key)
	return true, nil
}

func (r *fakeRepo) GetPositionsByPortfolio(ctx context.Context, portfolioID int64) ([]model.Position, error) {
	var res []model.Position
	for key, p := range r.positions {
		if key.portfolioID == portfolioID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetPositionsByUser(ctx context.Context, userID int64) ([]model.Position, error) {
	var res []model.Position
	for _, p := range r.positions {
		portfolio, ok := r.portfolios[p.PortfolioID]
		if ok && portfolio.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetStock(ctx context.Context, symbol string) (model.Stock, error) {
	s, ok := r.stocks[symbol]
	if !ok {
		return model.Stock{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeRepo) UpsertStock(ctx context.Context, stock model.Stock) (model.Stock, error) {
	r.stocks[stock.Symbol] = stock
	return stock, nil
}

func (r *fakeRepo) GetStocks(ctx context.Context) ([]model.Stock, error) {
	var res []model.Stock
	for _, s := range r.stocks {
		res = append(res, s)
	}
	return res, nil
}

func (r *fakeRepo) GetStocksBySymbols(ctx context.Context, symbols []string) (map[string]model.Stock, error) {
	res := map[string]model.Stock{}
	for _, symbol := range symbols {
		if s, ok := r.stocks[symbol]; ok {
			res[symbol] = s
		}
	}
	return res, nil
}

func (r *fakeRepo) InsertWatchlistItem(ctx context.Context, userID, portfolioID int64, symbol string) (model.WatchlistItem, error) {
	if _, ok := r.watchlist[symbol]; ok {
		return model.WatchlistItem{}, repository.ErrAlreadyExists
	}
	item := model.WatchlistItem{WatchlistID: r.id(), UserID: userID, PortfolioID: portfolioID, Symbol: symbol}
	r.watchlist[symbol] = item
	return item, nil
}

func (r *fakeRepo) DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) (bool, error) {
	if _, ok := r.watchlist[symbol]; !ok {
		return false, nil
	}
	delete(r.watchlist, symbol)
	return true, nil
}

func (r *fakeRepo) GetWatchlistStocks(ctx context.Context, userID int64, portfolioID *int64) ([]model.Stock, error) {
	var res []model.Stock
	for symbol := range r.watchlist {
		if s, ok := r.stocks[symbol]; ok {
			res = append(res, s)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetWatchedSymbols(ctx context.Context) ([]string, error) {
	var res []string
	for symbol := range r.watchlist {
		res = append(res, symbol)
	}
	return res, nil
}

func (r *fakeRepo) GetHeldSymbols(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var res []string
	for key := range r.positions {
		if !seen[key.symbol] {
			seen[key.symbol] = true
			res = append(res, key.symbol)
		}
	}
	return res, nil
}

func (r *fakeRepo) InsertRecommendation(ctx context.Context, rec model.Recommendation) (model.Recommendation, error) {
	rec.RecommendationID = r.id()
	r.recs = append(r.recs, rec)
	return rec, nil
}

func (r *fakeRepo) GetActiveRecommendations(ctx context.Context) ([]model.Recommendation, error) {
	var res []model.Recommendation
	for _, rec := range r.recs {
		if rec.IsActive {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetActiveRecommendationBySymbol(ctx context.Context, symbol string) (model.Recommendation, error) {
	for i := len(r.recs) - 1; i >= 0; i-- {
		if r.recs[i].Symbol == symbol && r.recs[i].IsActive {
			return r.recs[i], nil
		}
	}
	return model.Recommendation{}, repository.ErrNotFound
}

func (r *fakeRepo) DeactivateRecommendations(ctx context.Context) error {
	for i := range r.recs {
		r.recs[i].IsActive = false
	}
	return nil
}

func (r *fakeRepo) UpsertMarketIndex(ctx context.Context, index model.MarketIndex) error {
	r.indices[index.Symbol] = index
	return nil
}

func (r *fakeRepo) GetMarketIndices(ctx context.Context) ([]model.MarketIndex, error) {
	var res []model.MarketIndex
	for _, index := range r.indices {
		res = append(res, index)
	}
	return res, nil
}

type fakeCache struct{}

func (c *fakeCache) SetQuotes(ctx context.Context, quotes []quoteModel.Quote) error {
	return nil
}

func (c *fakeCache) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	return quoteModel.Quote{}, externalApi.ErrNotFound
}

type fakeSession struct {
	sessions map[int64]model.ChatSession
}

func (s *fakeSession) GetChatSession(ctx context.Context, userID int64) (model.ChatSession, error) {
	sess, ok := s.sessions[userID]
	if !ok {
		return model.ChatSession{}, repository.ErrNotFound
	}
	return sess, nil
}

func (s *fakeSession) SetChatSession(ctx context.Context, userID int64, session model.ChatSession) error {
	s.sessions[userID] = session
	return nil
}

func (s *fakeSession) ClearChatSession(ctx context.Context, userID int64) error {
	delete(s.sessions, userID)
	return nil
}

type fakePriceApi struct {
	quotes map[string]quoteModel.Quote
}

func (a *fakePriceApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	q, ok := a.quotes[symbol]
	if !ok {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}
	return q, nil
}

func (a *fakePriceApi) GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error) {
	res := map[string]quoteModel.Quote{}
	for _, symbol := range symbols {
		if q, ok := a.quotes[symbol]; ok {
			res[symbol] = q
		}
	}
	return res, nil
}

func (a *fakePriceApi) SearchTickers(ctx context.Context, query string) ([]quoteModel.TickerRef, error) {
	return nil, nil
}

type fakeAiApi struct {
	analysis aiModel.StockAnalysis
	reply    string
}

func (a *fakeAiApi) AnalyzeStock(ctx context.Context, symbol string, price string, recContext string) (aiModel.StockAnalysis, error) {
	res := a.analysis
	res.Symbol = symbol
	return res, nil
}

func (a *fakeAiApi) AnalyzePortfolio(ctx context.Context, holdings []aiModel.HoldingBrief) ([]aiModel.StockAnalysis, error) {
	var res []aiModel.StockAnalysis
	for _, h := range holdings {
		analysis := a.analysis
		analysis.Symbol = h.Symbol
		res = append(res, analysis)
	}
	return res, nil
}

func (a *fakeAiApi) Chat(ctx context.Context, messages []model.ChatMessage, portfolioContext string) (string, error) {
	return a.reply, nil
}

type fakeReportGen struct{}

func (g *fakeReportGen) CreatePortfolioReport(ctx context.Context, portfolio model.Portfolio, holdings []model.Holding, summary model.PortfolioSummary) ([]byte, string, error) {
	return []byte("report"), "report.xlsx", nil
}

func newTestService(repo *fakeRepo, priceApi *fakePriceApi) *InvestService {
	cfg := &config.Config{ChatHistoryLimit: 10}
	return New(
		cfg,
		repo,
		&fakeCache{},
		&fakeSession{sessions: map[int64]model.ChatSession{}},
		priceApi,
		&fakeAiApi{analysis: aiModel.StockAnalysis{Action: "BUY", Confidence: "HIGH", Reason: "test"}, reply: "hello"},
		&fakeReportGen{},
	)
}

func quote(symbol, price string) quoteModel.Quote {
	return quoteModel.Quote{Symbol: symbol, Price: decimal.RequireFromString(price)}
}

func TestAddPositionCreatesAndMerges(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"AAPL": quote("AAPL", "150")}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)

	first, err := srv.AddPosition(ctx, portfolio.PortfolioID, "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, first.Shares.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.AvgPrice.Equal(decimal.NewFromInt(100)))

	merged, err := srv.AddPosition(ctx, portfolio.PortfolioID, "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.True(t, merged.Shares.Equal(decimal.NewFromInt(20)), "shares = %s", merged.Shares)
	assert.True(t, merged.AvgPrice.Equal(decimal.NewFromInt(150)), "avgPrice = %s", merged.AvgPrice)

	// merged, not duplicated
	assert.Equal(t, 1, repo.inserted)
}

func TestAddPositionNormalizesSymbol(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"AAPL": quote("AAPL", "150")}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)

	pos, err := srv.AddPosition(ctx, portfolio.PortfolioID, "  aapl ", decimal.NewFromInt(1), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", pos.Symbol)
}

func TestAddPositionRejectsNonPositiveInput(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	_, err := srv.AddPosition(ctx, 1, "AAPL", decimal.Zero, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, service.ErrInvalidPositionInput)

	_, err = srv.AddPosition(ctx, 1, "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, service.ErrInvalidPositionInput)

	assert.Empty(t, repo.positions)
}

func TestAddPositionUnknownSymbol(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	_, err := srv.AddPosition(ctx, 1, "NOPE", decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, service.ErrSymbolNotResolvable)
}

func TestUpdatePositionFallsBackToCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"MSFT": quote("MSFT", "180")}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)

	pos, err := srv.UpdatePosition(ctx, portfolio.PortfolioID, "MSFT", decimal.NewFromInt(7), decimal.NewFromInt(170))
	require.NoError(t, err)
	assert.True(t, pos.Shares.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 1, repo.inserted)
	assert.Equal(t, 0, repo.updated)

	// second update hits the existing row
	pos, err = srv.UpdatePosition(ctx, portfolio.PortfolioID, "MSFT", decimal.NewFromInt(3), decimal.NewFromInt(160))
	require.NoError(t, err)
	assert.True(t, pos.Shares.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 1, repo.updated)
}

func TestRemovePositionIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"AAPL": quote("AAPL", "150")}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)

	_, err = srv.AddPosition(ctx, portfolio.PortfolioID, "AAPL", decimal.NewFromInt(1), decimal.NewFromInt(100))
	require.NoError(t, err)

	removed, err := srv.RemovePosition(ctx, portfolio.PortfolioID, "aapl")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = srv.RemovePosition(ctx, portfolio.PortfolioID, "AAPL")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAdjustCash(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.RequireFromString("100"), true)
	require.NoError(t, err)

	balance, err := srv.AdjustCash(ctx, portfolio.PortfolioID, decimal.RequireFromString("50"), model.CashDeposit)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("150")))

	balance, err = srv.AdjustCash(ctx, portfolio.PortfolioID, decimal.RequireFromString("150"), model.CashWithdraw)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestAdjustCashWithdrawGuard(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.RequireFromString("100"), true)
	require.NoError(t, err)

	_, err = srv.AdjustCash(ctx, portfolio.PortfolioID, decimal.RequireFromString("100.01"), model.CashWithdraw)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	// balance untouched
	got, err := repo.GetPortfolio(ctx, portfolio.PortfolioID)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Equal(decimal.RequireFromString("100")))
}

func TestAdjustCashRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	_, err := srv.AdjustCash(ctx, 1, decimal.Zero, model.CashDeposit)
	assert.ErrorIs(t, err, service.ErrInvalidCashAmount)
}

func TestRegisterUserCreatesDefaultPortfolio(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	user, err := srv.RegisterUser(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	portfolio, err := repo.GetDefaultPortfolio(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, portfolio.CashBalance.Equal(decimal.RequireFromString("10000.00")))

	_, err = srv.RegisterUser(ctx, "alice", "secret")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestGetUserHoldingsResolvesDefaultPortfolio(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"AAPL": quote("AAPL", "150")}}
	srv := newTestService(repo, priceApi)

	user, err := srv.RegisterUser(ctx, "alice", "secret")
	require.NoError(t, err)
	defaultPortfolio, err := repo.GetDefaultPortfolio(ctx, user.UserID)
	require.NoError(t, err)
	other, err := repo.CreatePortfolio(ctx, user.UserID, "other", "", decimal.Zero, false)
	require.NoError(t, err)

	_, err = srv.AddPosition(ctx, defaultPortfolio.PortfolioID, "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)

	// no portfolio id given: the default portfolio's holdings come back
	holdings, err := srv.GetUserHoldings(ctx, user.UserID, nil)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].CurrentValue.Equal(decimal.RequireFromString("1500")))

	// an explicit portfolio id wins over the default
	holdings, err = srv.GetUserHoldings(ctx, user.UserID, &other.PortfolioID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestGetUserHoldingsNoDefaultPortfolio(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	_, err := srv.GetUserHoldings(ctx, 42, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetPortfolioSummaryFallbackBuyingPower(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	summary, err := srv.GetPortfolioSummary(ctx, 1, nil)
	require.NoError(t, err)
	assert.True(t, summary.BuyingPower.Equal(decimal.RequireFromString("10000.00")))
}

func TestRefreshRecommendationsSweep(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{
		"AAPL":  quote("AAPL", "150"),
		"GOOGL": quote("GOOGL", "2800"),
		"MSFT":  quote("MSFT", "180"),
	}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)
	_, err = srv.AddPosition(ctx, portfolio.PortfolioID, "MSFT", decimal.NewFromInt(1), decimal.NewFromInt(100))
	require.NoError(t, err)

	// a stale recommendation must be retired by the sweep
	_, err = repo.InsertRecommendation(ctx, model.Recommendation{Symbol: "OLD", Action: model.ActionBuy, Confidence: model.ConfidenceLow, Type: model.RecTypeDiscovery, IsActive: true})
	require.NoError(t, err)

	err = srv.RefreshRecommendations(ctx)
	require.NoError(t, err)

	recs, err := repo.GetActiveRecommendations(ctx)
	require.NoError(t, err)

	byType := map[string]model.RecType{}
	for _, rec := range recs {
		assert.NotEqual(t, "OLD", rec.Symbol)
		byType[rec.Symbol] = rec.Type
	}

	// held symbol outranks discovery
	assert.Equal(t, model.RecTypePortfolio, byType["MSFT"])
	assert.Equal(t, model.RecTypeDiscovery, byType["AAPL"])
	assert.Equal(t, model.RecTypeDiscovery, byType["GOOGL"])
}

func TestAnalyzeHoldings(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	priceApi := &fakePriceApi{quotes: map[string]quoteModel.Quote{"AAPL": quote("AAPL", "150")}}
	srv := newTestService(repo, priceApi)

	portfolio, err := repo.CreatePortfolio(ctx, 1, "test", "", decimal.Zero, true)
	require.NoError(t, err)
	_, err = srv.AddPosition(ctx, portfolio.PortfolioID, "AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)

	analyses, err := srv.AnalyzeHoldings(ctx, portfolio.PortfolioID)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, "AAPL", analyses[0].Symbol)
	assert.Equal(t, "BUY", analyses[0].Action)
}

func TestChatKeepsHistory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	srv := newTestService(repo, &fakePriceApi{quotes: map[string]quoteModel.Quote{}})

	reply, err := srv.Chat(ctx, 1, "should I buy AAPL?")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	sess := srv.session.(*fakeSession).sessions[1]
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, model.ChatRoleUser, sess.Messages[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, sess.Messages[1].Role)
}
