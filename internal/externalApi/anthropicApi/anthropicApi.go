package anthropicApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const advisorSystemPrompt = "You are a pragmatic investment advisor. " +
	"You give direct, specific guidance on US equities based on the data you are shown. " +
	"You never promise returns and you keep answers short."

type AnthropicApi struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func New(cfg *config.Config) *AnthropicApi {
	client := anthropic.NewClient(option.WithAPIKey(cfg.API.Anthropic.ApiKey))
	return &AnthropicApi{
		client:    client,
		model:     anthropic.Model(cfg.API.Anthropic.Model),
		maxTokens: int64(cfg.API.Anthropic.MaxTokens),
	}
}

// AnalyzeStock asks the advisor for a verdict on one symbol. recContext is
// extra prompt material the caller wants considered, e.g. the user already
// holds the stock.
func (a *AnthropicApi) AnalyzeStock(ctx context.Context, symbol string, price string, recContext string) (aiModel.StockAnalysis, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start AnthropicApi.AnalyzeStock request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	prompt := fmt.Sprintf(
		"Analyze %s trading at $%s. %s\n"+
			"Respond with a single JSON object and nothing else:\n"+
			`{"symbol": "%s", "action": "BUY|SELL|HOLD|REDUCE", "confidence": "HIGH|MEDIUM|LOW", "reason": "one sentence", "targetPrice": number or null, "allocation": percent number or null}`,
		symbol, price, recContext, symbol,
	)

	text, err := a.complete(ctx, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
	if err != nil {
		slog.Error("AnalyzeStock completion failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return aiModel.StockAnalysis{}, err
	}

	analysis := aiModel.StockAnalysis{}
	err = json.Unmarshal([]byte(extractJson(text)), &analysis)
	if err != nil {
		slog.Error(
			"can't unmarshall completion into aiModel.StockAnalysis",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("completion", text),
		)
		return aiModel.StockAnalysis{}, errors.New("can't parse analysis")
	}

	if analysis.Symbol == "" {
		analysis.Symbol = symbol
	}

	slog.Debug("AnthropicApi.AnalyzeStock request complete", slog.String("rqID", rqID))

	return analysis, nil
}

// AnalyzePortfolio asks the advisor to review all holdings at once and
// returns one verdict per symbol.
func (a *AnthropicApi) AnalyzePortfolio(ctx context.Context, holdings []aiModel.HoldingBrief) ([]aiModel.StockAnalysis, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start AnthropicApi.AnalyzePortfolio request", slog.String("rqID", rqID), slog.Int("holdings", len(holdings)))

	holdingsJson, err := json.Marshal(holdings)
	if err != nil {
		slog.Error("can't marshall holdings in AnalyzePortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, errors.New("can't marshall holdings")
	}

	prompt := fmt.Sprintf(
		"Review this portfolio and give a verdict per holding:\n%s\n"+
			"Respond with a single JSON array and nothing else, one object per holding:\n"+
			`[{"symbol": "...", "action": "BUY|SELL|HOLD|REDUCE", "confidence": "HIGH|MEDIUM|LOW", "reason": "one sentence", "targetPrice": number or null, "allocation": percent number or null}]`,
		string(holdingsJson),
	)

	text, err := a.complete(ctx, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
	if err != nil {
		slog.Error("AnalyzePortfolio completion failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	var analyses []aiModel.StockAnalysis
	err = json.Unmarshal([]byte(extractJson(text)), &analyses)
	if err != nil {
		slog.Error(
			"can't unmarshall completion into []aiModel.StockAnalysis",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("completion", text),
		)
		return nil, errors.New("can't parse analyses")
	}

	slog.Debug("AnthropicApi.AnalyzePortfolio request complete", slog.String("rqID", rqID))

	return analyses, nil
}

// Chat runs one advisor turn over the session history. portfolioContext is
// prepended to the system prompt so the advisor sees the user's real numbers.
func (a *AnthropicApi) Chat(ctx context.Context, messages []model.ChatMessage, portfolioContext string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start AnthropicApi.Chat request", slog.String("rqID", rqID), slog.Int("messages", len(messages)))

	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.ChatRoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	system := advisorSystemPrompt
	if portfolioContext != "" {
		system = system + "\n\nCurrent portfolio:\n" + portfolioContext
	}

	text, err := a.completeWithSystem(ctx, params, system)
	if err != nil {
		slog.Error("Chat completion failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("AnthropicApi.Chat request complete", slog.String("rqID", rqID))

	return text, nil
}

func (a *AnthropicApi) complete(ctx context.Context, messages []anthropic.MessageParam) (string, error) {
	return a.completeWithSystem(ctx, messages, advisorSystemPrompt)
}

func (a *AnthropicApi) completeWithSystem(ctx context.Context, messages []anthropic.MessageParam, system string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  messages,
		System:    []anthropic.TextBlockParam{{Text: system}},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", errors.New("empty completion")
	}

	return sb.String(), nil
}

// extractJson strips markdown fences the model sometimes wraps around its
// JSON output.
func extractJson(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}
