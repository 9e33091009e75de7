package polygonApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type PolygonApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *PolygonApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Polygon.Url).
		SetQueryParam("apiKey", cfg.API.Polygon.ApiKey)
	return &PolygonApi{client: client}
}

func (a *PolygonApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/stocks/v1/snapshot/%s", symbol)

	slog.Debug("start PolygonApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing PolygonApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error(
			"unexpected status from PolygonApi",
			slog.String("rqID", rqID),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", string(resp.Body())),
		)
		return quoteModel.Quote{}, fmt.Errorf("polygon responded with status %d", resp.StatusCode())
	}

	rawSnapshot := quoteModel.RawSnapshot{}
	err = json.Unmarshal(resp.Body(), &rawSnapshot)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawSnapshot", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, err
	}

	quote, err := a.parseRawSnapshot(rawSnapshot)
	if err != nil {
		if !errors.Is(err, externalApi.ErrNotFound) {
			slog.Error("can't parse raw snapshot", slog.String("err", err.Error()), slog.String("rqID", rqID))
		}
		return quoteModel.Quote{}, err
	}

	slog.Debug("PolygonApi.GetQuote request complete", slog.String("rqID", rqID))

	return quote, nil
}

// GetQuotes fans out one snapshot request per symbol and returns whatever
// succeeded. Symbols the source does not know are silently absent from the
// result map; only transport-level failures are logged.
func (a *PolygonApi) GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start PolygonApi.GetQuotes requests", slog.String("rqID", rqID), slog.Int("symbols", len(symbols)))

	var mu sync.Mutex
	var wg sync.WaitGroup
	quotes := make(map[string]quoteModel.Quote, len(symbols))

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			quote, err := a.GetQuote(ctx, symbol)
			if err != nil {
				return
			}

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()

	slog.Debug("PolygonApi.GetQuotes requests complete", slog.String("rqID", rqID), slog.Int("received", len(quotes)))

	return quotes, nil
}

func (a *PolygonApi) SearchTickers(ctx context.Context, query string) ([]quoteModel.TickerRef, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v3/reference/tickers"
	params := map[string]string{
		"search": query,
		"market": "stocks",
		"active": "true",
		"limit":  "10",
	}

	slog.Debug("start PolygonApi.SearchTickers request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing PolygonApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error(
			"unexpected status from PolygonApi",
			slog.String("rqID", rqID),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", string(resp.Body())),
		)
		return nil, fmt.Errorf("polygon responded with status %d", resp.StatusCode())
	}

	rawSearch := quoteModel.RawTickerSearch{}
	err = json.Unmarshal(resp.Body(), &rawSearch)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawTickerSearch", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	refs := make([]quoteModel.TickerRef, 0, len(rawSearch.Results))
	for _, raw := range rawSearch.Results {
		refs = append(refs, quoteModel.TickerRef{Symbol: raw.Ticker, Name: raw.Name})
	}

	slog.Debug("PolygonApi.SearchTickers request complete", slog.String("rqID", rqID))

	return refs, nil
}

func (a *PolygonApi) parseRawSnapshot(rawSnapshot quoteModel.RawSnapshot) (quoteModel.Quote, error) {
	if rawSnapshot.Results == nil {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	raw := rawSnapshot.Results
	if raw.Day == nil {
		return quoteModel.Quote{}, errors.New("snapshot has no day aggregates")
	}

	price := raw.Day.Close
	if raw.LastQuote != nil && raw.LastQuote.Last > 0 {
		price = raw.LastQuote.Last
	}

	quote := quoteModel.Quote{
		Symbol:        raw.Ticker,
		Price:         decimal.NewFromFloat(price),
		Change:        decimal.NewFromFloat(raw.Day.Change),
		ChangePercent: decimal.NewFromFloat(raw.Day.ChangePercent),
		Volume:        raw.Day.Volume,
	}

	if raw.MarketCap != nil {
		marketCap := decimal.NewFromFloat(*raw.MarketCap)
		quote.MarketCap = &marketCap
	}

	if raw.PERatio != nil {
		pe := decimal.NewFromFloat(*raw.PERatio)
		quote.PE = &pe
	}

	return quote, nil
}
