package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tradebot/internal/config"
	"tradebot/internal/market"
)

// Client is the HTTP brokerage gateway. Broker responses are loosely typed
// JSON, so fields are picked out with gjson rather than mirrored into full
// response structs.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

func NewClient(cfg config.GatewayConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("gateway.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse gateway.base_url: %w", err)
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		token:      strings.TrimSpace(cfg.Token),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/quotes/"+url.PathEscape(symbol), nil)
	if err != nil {
		return 0, err
	}
	price := gjson.GetBytes(body, "last")
	if !price.Exists() || price.Float() <= 0 {
		return 0, fmt.Errorf("broker returned no price for %s", symbol)
	}
	return price.Float(), nil
}

func (c *Client) AvailableBalance(ctx context.Context) (float64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/account/balance", nil)
	if err != nil {
		return 0, err
	}
	avail := gjson.GetBytes(body, "available")
	if !avail.Exists() {
		return 0, fmt.Errorf("broker balance response missing 'available'")
	}
	return avail.Float(), nil
}

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	payload := map[string]interface{}{
		"symbol":   req.Symbol,
		"side":     strings.ToUpper(req.Side),
		"quantity": req.Quantity,
		"price":    req.Price,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return nil, err
	}
	res := &OrderResult{
		OrderID: gjson.GetBytes(body, "orderId").String(),
		Reason:  gjson.GetBytes(body, "message").String(),
	}
	return res, nil
}

func (c *Client) OperationHistory(ctx context.Context, symbol string) ([]Operation, error) {
	path := "/operations?symbol=" + url.QueryEscape(symbol)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var ops []Operation
	for _, item := range gjson.ParseBytes(body).Array() {
		op := Operation{
			OrderID:  item.Get("orderId").String(),
			Symbol:   item.Get("symbol").String(),
			Side:     strings.ToUpper(item.Get("side").String()),
			Quantity: int(item.Get("quantity").Int()),
			Price:    item.Get("price").Float(),
		}
		if ts := item.Get("timestamp").String(); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				op.Timestamp = parsed
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (c *Client) Holdings(ctx context.Context) ([]Holding, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/account/portfolio", nil)
	if err != nil {
		return nil, err
	}
	var out []Holding
	for _, item := range gjson.GetBytes(body, "holdings").Array() {
		out = append(out, Holding{
			Symbol:   item.Get("symbol").String(),
			Quantity: int(item.Get("quantity").Int()),
			AvgPrice: item.Get("avgPrice").Float(),
		})
	}
	return out, nil
}

func (c *Client) Tradeable(ctx context.Context, symbol string) (bool, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/instruments/"+url.PathEscape(symbol), nil)
	if err != nil {
		return false, err
	}
	status := gjson.GetBytes(body, "status").String()
	return strings.EqualFold(status, "active"), nil
}

// History implements market.HistorySource against the broker's daily-candle
// endpoint.
func (c *Client) History(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	path := fmt.Sprintf("/history/%s?days=%d", url.PathEscape(symbol), days)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items := gjson.GetBytes(body, "candles").Array()
	candles := make([]market.Candle, 0, len(items))
	for _, item := range items {
		candle := market.Candle{
			Open:   item.Get("open").Float(),
			High:   item.Get("high").Float(),
			Low:    item.Get("low").Float(),
			Close:  item.Get("close").Float(),
			Volume: item.Get("volume").Float(),
		}
		if ts := item.Get("date").String(); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				candle.OpenTime = parsed
				candle.CloseTime = parsed.Add(24 * time.Hour)
			}
		}
		candles = append(candles, candle)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("broker returned no candles for %s", symbol)
	}
	return candles, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil || c.baseURL == nil {
		return nil, fmt.Errorf("gateway client not initialized")
	}
	endpoint, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint %s: %w", path, err)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call broker: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read broker response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("broker error (%s): %s", resp.Status, msg)
	}
	return data, nil
}
