package investService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error

	InsertUser(ctx context.Context, username, password string) (userID int64, err error)
	GetUser(ctx context.Context, userID int64) (model.User, error)

	CreatePortfolio(ctx context.Context, userID int64, name, description string, cashBalance decimal.Decimal, isDefault bool) (model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error)
	GetDefaultPortfolio(ctx context.Context, userID int64) (model.Portfolio, error)
	GetPortfolioForUpdate(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	UpdatePortfolioCashBalance(ctx context.Context, portfolioID int64, newBalance decimal.Decimal) error

	GetPositionForUpdate(ctx context.Context, portfolioID int64, symbol string) (model.Position, error)
	InsertPosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (model.Position, error)
	UpdatePosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (model.Position, error)
	DeletePosition(ctx context.Context, portfolioID int64, symbol string) (bool, error)
	GetPositionsByPortfolio(ctx context.Context, portfolioID int64) ([]model.Position, error)
	GetPositionsByUser(ctx context.Context, userID int64) ([]model.Position, error)

	GetStock(ctx context.Context, symbol string) (model.Stock, error)
	UpsertStock(ctx context.Context, stock model.Stock) (model.Stock, error)
	GetStocks(ctx context.Context) ([]model.Stock, error)
	GetStocksBySymbols(ctx context.Context, symbols []string) (map[string]model.Stock, error)

	InsertWatchlistItem(ctx context.Context, userID, portfolioID int64, symbol string) (model.WatchlistItem, error)
	DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) (bool, error)
	GetWatchlistStocks(ctx context.Context, userID int64, portfolioID *int64) ([]model.Stock, error)
	GetWatchedSymbols(ctx context.Context) ([]string, error)
	GetHeldSymbols(ctx context.Context) ([]string, error)

	InsertRecommendation(ctx context.Context, rec model.Recommendation) (model.Recommendation, error)
	GetActiveRecommendations(ctx context.Context) ([]model.Recommendation, error)
	GetActiveRecommendationBySymbol(ctx context.Context, symbol string) (model.Recommendation, error)
	DeactivateRecommendations(ctx context.Context) error

	UpsertMarketIndex(ctx context.Context, index model.MarketIndex) error
	GetMarketIndices(ctx context.Context) ([]model.MarketIndex, error)
}

type Cache interface {
	SetQuotes(ctx context.Context, quotes []quoteModel.Quote) error
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
}

type Session interface {
	GetChatSession(ctx context.Context, userID int64) (model.ChatSession, error)
	SetChatSession(ctx context.Context, userID int64, session model.ChatSession) error
	ClearChatSession(ctx context.Context, userID int64) error
}

type PriceApi interface {
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error)
	SearchTickers(ctx context.Context, query string) ([]quoteModel.TickerRef, error)
}

type AiApi interface {
	AnalyzeStock(ctx context.Context, symbol string, price string, recContext string) (aiModel.StockAnalysis, error)
	AnalyzePortfolio(ctx context.Context, holdings []aiModel.HoldingBrief) ([]aiModel.StockAnalysis, error)
	Chat(ctx context.Context, messages []model.ChatMessage, portfolioContext string) (string, error)
}

type ReportGenerator interface {
	CreatePortfolioReport(ctx context.Context, portfolio model.Portfolio, holdings []model.Holding, summary model.PortfolioSummary) (file []byte, filename string, err error)
}

type InvestService struct {
	cfg       *config.Config
	repo      Repository
	cache     Cache
	session   Session
	priceApi  PriceApi
	aiApi     AiApi
	reportGen ReportGenerator
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	session Session,
	priceApi PriceApi,
	aiApi AiApi,
	reportGen ReportGenerator,
) *InvestService {
	return &InvestService{
		cfg:       cfg,
		repo:      repo,
		cache:     cache,
		session:   session,
		priceApi:  priceApi,
		aiApi:     aiApi,
		reportGen: reportGen,
	}
}

// defaultCashBalance seeds every new default portfolio and stands in for
// buying power when no portfolio context is given.
var defaultCashBalance = decimal.RequireFromString("10000.00")

// RegisterUser creates the user and their default portfolio in one
// transaction.
func (s *InvestService) RegisterUser(ctx context.Context, username, password string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RegisterUser"

	slog.Debug("RegisterUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("RegisterUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err := s.repo.InsertUser(ctx, username, password)
		if err != nil {
			return err
		}

		_, err = s.repo.CreatePortfolio(ctx, userID, "My Portfolio", "", defaultCashBalance, true)
		if err != nil {
			return err
		}

		user, err = s.repo.GetUser(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.User{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo in RegisterUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	return user, nil
}

func (s *InvestService) GetUser(ctx context.Context, userID int64) (model.User, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetUser"

	slog.Debug("GetUser start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	return user, nil
}

func (s *InvestService) CreatePortfolio(ctx context.Context, userID int64, name, description string) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("name", name))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	portfolio, err := s.repo.CreatePortfolio(ctx, userID, name, description, defaultCashBalance, false)
	if err != nil {
		slog.Error("got error from repo.CreatePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	return portfolio, nil
}

func (s *InvestService) GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetPortfolios"

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPortfolios finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	portfolios, err := s.repo.GetPortfolios(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return portfolios, nil
}

func (s *InvestService) GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Portfolio{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	return portfolio, nil
}
