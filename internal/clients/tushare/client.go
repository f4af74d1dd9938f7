// Package tushare provides a client for the Tushare Pro API
package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

const (
	DefaultBaseURL   = "https://api.tushare.pro"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

const (
	dailyFields      = "ts_code,trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount"
	stockBasicFields = "ts_code,symbol,name,area,industry"
	hkBasicFields    = "ts_code,name,fullname,enname"
)

// Client implements the MarketDataClient interface against Tushare Pro.
// All data APIs share a single POST endpoint; the api_name field selects
// the dataset and the response comes back columnar (fields + item rows).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Tushare client
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	APIName    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tushare API error: %s (code: %d, status: %d, api: %s)", e.Message, e.Code, e.StatusCode, e.APIName)
}

type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type apiResponse struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	Data apiData `json:"data"`
}

type apiData struct {
	Fields []string `json:"fields"`
	Items  [][]any  `json:"items"`
}

// call performs one rate-limited POST against the shared endpoint.
func (c *Client) call(ctx context.Context, apiName string, params map[string]string, fields string) (*apiData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(apiRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("api", apiName).Msg("Tushare API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(msg),
			APIName:    apiName,
		}
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if decoded.Code != 0 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       decoded.Code,
			Message:    decoded.Msg,
			APIName:    apiName,
		}
	}

	return &decoded.Data, nil
}

// fieldIndex maps column names to their position in each item row.
func fieldIndex(fields []string) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}
	return idx
}

func cellString(row []any, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[i])
}

// cellFloat tolerates numbers, numeric strings, and nulls. Provider rows
// occasionally carry "N/A" or empty strings; those become 0.
func cellFloat(row []any, idx map[string]int, field string) float64 {
	i, ok := idx[field]
	if !ok || i >= len(row) || row[i] == nil {
		return 0
	}
	switch v := row[i].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// eod fetches daily bars from the given dataset.
func (c *Client) eod(ctx context.Context, apiName, tsCode, startDate, endDate string) ([]models.DailyBar, error) {
	params := map[string]string{
		"ts_code":    tsCode,
		"start_date": startDate,
		"end_date":   endDate,
	}

	data, err := c.call(ctx, apiName, params, dailyFields)
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	bars := make([]models.DailyBar, 0, len(data.Items))
	for _, row := range data.Items {
		bars = append(bars, models.DailyBar{
			TsCode:    cellString(row, idx, "ts_code"),
			TradeDate: cellString(row, idx, "trade_date"),
			Open:      cellFloat(row, idx, "open"),
			High:      cellFloat(row, idx, "high"),
			Low:       cellFloat(row, idx, "low"),
			Close:     cellFloat(row, idx, "close"),
			PreClose:  cellFloat(row, idx, "pre_close"),
			Change:    cellFloat(row, idx, "change"),
			PctChg:    cellFloat(row, idx, "pct_chg"),
			Vol:       cellFloat(row, idx, "vol"),
			Amount:    cellFloat(row, idx, "amount"),
		})
	}

	return bars, nil
}

// Daily retrieves daily bars for a mainland-listed instrument.
func (c *Client) Daily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error) {
	return c.eod(ctx, "daily", tsCode, startDate, endDate)
}

// HKDaily retrieves daily bars for a Hong Kong instrument.
func (c *Client) HKDaily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error) {
	return c.eod(ctx, "hk_daily", tsCode, startDate, endDate)
}

// StockBasic lists basic info for all listed mainland instruments.
func (c *Client) StockBasic(ctx context.Context) ([]models.SymbolInfo, error) {
	params := map[string]string{
		"exchange":    "",
		"list_status": "L",
	}

	data, err := c.call(ctx, "stock_basic", params, stockBasicFields)
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	symbols := make([]models.SymbolInfo, 0, len(data.Items))
	for _, row := range data.Items {
		symbols = append(symbols, models.SymbolInfo{
			TsCode:   cellString(row, idx, "ts_code"),
			Symbol:   cellString(row, idx, "symbol"),
			Name:     cellString(row, idx, "name"),
			Area:     cellString(row, idx, "area"),
			Industry: cellString(row, idx, "industry"),
			Market:   models.MarketCN,
		})
	}

	c.logger.Debug().Int("symbols", len(symbols)).Msg("Tushare stock_basic returned symbols")

	return symbols, nil
}

// HKBasic lists basic info for all Hong Kong instruments. The hk_basic
// dataset has no symbol/area/industry columns, so those are normalized
// to match the mainland listing shape.
func (c *Client) HKBasic(ctx context.Context) ([]models.SymbolInfo, error) {
	data, err := c.call(ctx, "hk_basic", nil, hkBasicFields)
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	symbols := make([]models.SymbolInfo, 0, len(data.Items))
	for _, row := range data.Items {
		tsCode := cellString(row, idx, "ts_code")
		symbols = append(symbols, models.SymbolInfo{
			TsCode:   tsCode,
			Symbol:   strings.TrimSuffix(tsCode, ".HK"),
			Name:     cellString(row, idx, "name"),
			Area:     "香港",
			Industry: "港股",
			Market:   models.MarketHK,
		})
	}

	c.logger.Debug().Int("symbols", len(symbols)).Msg("Tushare hk_basic returned symbols")

	return symbols, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
