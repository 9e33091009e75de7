package investService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/shopspring/decimal"
)

// discoverySymbols feed the sweep with a couple of ideas outside the user's
// own book.
var discoverySymbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "NVDA", "AMZN"}

const discoveryLimit = 2

func (s *InvestService) GetRecommendations(ctx context.Context) ([]model.Recommendation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetRecommendations"

	slog.Debug("GetRecommendations start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetRecommendations finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	recs, err := s.repo.GetActiveRecommendations(ctx)
	if err != nil {
		slog.Error("got error from repo.GetActiveRecommendations", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return recs, nil
}

// RefreshRecommendations runs the sweep: every active recommendation is
// deactivated, then watched symbols, held symbols and a small discovery set
// are re-annotated. A symbol held anywhere is analyzed as a portfolio
// holding even when it is also watched. Per-symbol failures skip the symbol.
func (s *InvestService) RefreshRecommendations(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RefreshRecommendations"

	slog.Debug("RefreshRecommendations start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshRecommendations finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.DeactivateRecommendations(ctx)
	if err != nil {
		slog.Error("got error from repo.DeactivateRecommendations", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	held, err := s.repo.GetHeldSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetHeldSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	watched, err := s.repo.GetWatchedSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetWatchedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	types := make(map[string]model.RecType)
	for _, symbol := range discoverySymbols[:discoveryLimit] {
		types[symbol] = model.RecTypeDiscovery
	}
	for _, symbol := range watched {
		types[symbol] = model.RecTypeWatchlist
	}
	for _, symbol := range held {
		types[symbol] = model.RecTypePortfolio
	}

	annotated := 0
	for symbol, recType := range types {
		if err := s.annotateSymbol(ctx, symbol, recType); err != nil {
			slog.Warn("skipping symbol in recommendation sweep", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
			continue
		}
		annotated++
	}

	slog.Info("recommendation sweep done", slog.String("rqID", rqID), slog.String("op", op), slog.Int("symbols", len(types)), slog.Int("annotated", annotated))

	return nil
}

func (s *InvestService) annotateSymbol(ctx context.Context, symbol string, recType model.RecType) error {
	stock, err := s.resolveStock(ctx, symbol)
	if err != nil {
		return err
	}

	analysis, err := s.aiApi.AnalyzeStock(ctx, stock.Symbol, stock.Price.StringFixed(2), recContextFor(recType))
	if err != nil {
		return err
	}

	_, err = s.repo.InsertRecommendation(ctx, recommendationFromAnalysis(analysis, stock.Symbol, recType))
	return err
}

func recContextFor(recType model.RecType) string {
	switch recType {
	case model.RecTypePortfolio:
		return "The user already holds this stock, advise on keeping, adding or reducing."
	case model.RecTypeWatchlist:
		return "The user is watching this stock but does not hold it."
	default:
		return "The user does not follow this stock yet, judge it as a fresh idea."
	}
}

// recommendationFromAnalysis maps the advisor's free-form verdict onto the
// stored enums, defaulting anything unexpected to HOLD/MEDIUM.
func recommendationFromAnalysis(analysis aiModel.StockAnalysis, symbol string, recType model.RecType) model.Recommendation {
	rec := model.Recommendation{
		Symbol:     symbol,
		Action:     model.ActionHold,
		Confidence: model.ConfidenceMedium,
		Reason:     analysis.Reason,
		Type:       recType,
		IsActive:   true,
	}

	switch model.RecAction(strings.ToUpper(analysis.Action)) {
	case model.ActionBuy, model.ActionSell, model.ActionHold, model.ActionReduce:
		rec.Action = model.RecAction(strings.ToUpper(analysis.Action))
	}

	switch model.RecConfidence(strings.ToUpper(analysis.Confidence)) {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
		rec.Confidence = model.RecConfidence(strings.ToUpper(analysis.Confidence))
	}

	if analysis.TargetPrice != nil {
		target := decimal.NewFromFloat(*analysis.TargetPrice)
		rec.TargetPrice = &target
	}

	if analysis.Allocation != nil {
		allocation := decimal.NewFromFloat(*analysis.Allocation)
		rec.Allocation = &allocation
	}

	return rec
}

// AnalyzeSymbol runs an on-demand advisor verdict without persisting it.
func (s *InvestService) AnalyzeSymbol(ctx context.Context, symbol string) (analysis aiModel.StockAnalysis, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.AnalyzeSymbol"

	slog.Debug("AnalyzeSymbol start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AnalyzeSymbol finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	stock, err := s.resolveStock(ctx, symbol)
	if err != nil {
		return aiModel.StockAnalysis{}, err
	}

	analysis, err = s.aiApi.AnalyzeStock(ctx, stock.Symbol, stock.Price.StringFixed(2), "The user asked for an on-demand analysis.")
	if err != nil {
		slog.Error("got error from aiApi.AnalyzeStock", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return aiModel.StockAnalysis{}, err
	}

	return analysis, nil
}

// AnalyzeHoldings asks the advisor to review a whole portfolio at once and
// returns per-symbol rebalancing verdicts without persisting them.
func (s *InvestService) AnalyzeHoldings(ctx context.Context, portfolioID int64) (analyses []aiModel.StockAnalysis, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.AnalyzeHoldings"

	slog.Debug("AnalyzeHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("AnalyzeHoldings finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	holdings, err := s.GetHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	briefs := make([]aiModel.HoldingBrief, 0, len(holdings))
	for _, holding := range holdings {
		briefs = append(briefs, aiModel.HoldingBrief{
			Symbol:          holding.Symbol,
			Shares:          holding.Shares.String(),
			AvgPrice:        holding.AvgPrice.StringFixed(2),
			CurrentPrice:    holding.Stock.Price.StringFixed(2),
			GainLossPercent: holding.GainLossPercent.StringFixed(2),
			PortfolioWeight: holding.PortfolioPercent.StringFixed(2),
		})
	}

	analyses, err = s.aiApi.AnalyzePortfolio(ctx, briefs)
	if err != nil {
		slog.Error("got error from aiApi.AnalyzePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return analyses, nil
}

// Chat runs one advisor conversation turn for a user, keeping the history in
// the session store.
func (s *InvestService) Chat(ctx context.Context, userID int64, message string) (reply string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.Chat"

	slog.Debug("Chat start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("Chat finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	chatSession, err := s.session.GetChatSession(ctx, userID)
	if err != nil {
		// a missing or broken session just starts a fresh one
		chatSession = model.ChatSession{}
	}

	chatSession.Messages = append(chatSession.Messages, model.ChatMessage{Role: model.ChatRoleUser, Content: message})
	if limit := s.cfg.ChatHistoryLimit; len(chatSession.Messages) > limit {
		chatSession.Messages = chatSession.Messages[len(chatSession.Messages)-limit:]
	}

	reply, err = s.aiApi.Chat(ctx, chatSession.Messages, s.portfolioContext(ctx, userID))
	if err != nil {
		slog.Error("got error from aiApi.Chat", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	chatSession.Messages = append(chatSession.Messages, model.ChatMessage{Role: model.ChatRoleAssistant, Content: reply})
	if err := s.session.SetChatSession(ctx, userID, chatSession); err != nil {
		slog.Warn("can't persist chat session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return reply, nil
}

func (s *InvestService) ClearChat(ctx context.Context, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.ClearChat"

	slog.Debug("ClearChat start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ClearChat finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	return s.session.ClearChatSession(ctx, userID)
}

// portfolioContext renders the user's whole book for the advisor prompt.
// Best effort, an empty string just means the advisor answers generically.
func (s *InvestService) portfolioContext(ctx context.Context, userID int64) string {
	summary, err := s.GetPortfolioSummary(ctx, userID, nil)
	if err != nil {
		return ""
	}

	positions, err := s.repo.GetPositionsByUser(ctx, userID)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "total value $%s, total gain $%s (%s%%), buying power $%s\n",
		summary.TotalValue.StringFixed(2),
		summary.TotalGain.StringFixed(2),
		summary.TotalGainPercent.StringFixed(2),
		summary.BuyingPower.StringFixed(2),
	)
	for _, position := range positions {
		fmt.Fprintf(&sb, "%s: %s shares at avg $%s\n", position.Symbol, position.Shares.String(), position.AvgPrice.StringFixed(2))
	}

	return sb.String()
}
