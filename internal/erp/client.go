// internal/erp/client.go
package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-assistant/internal/common/config"
	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/models"
)

// Client fetches same-day sales from the live ERP feed. The feed is
// best effort: any failure degrades to a zero figure so the chat never
// hangs or errors on a live query.
type Client struct {
	cfg        config.ERPConfig
	httpClient *http.Client
	clock      models.Clock
	logger     logger.Logger
}

type feedResponse struct {
	Data []feedRow `json:"data"`
}

type feedRow struct {
	Period     string          `json:"period"`
	TotalSales json.RawMessage `json:"total_sales"`
}

func NewClient(cfg config.ERPConfig, clock models.Clock, log logger.Logger) *Client {
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		clock:      clock,
		logger:     log,
	}
}

// TodaySales returns the live figure for the current day. The all
// branches form sums one call per known branch.
func (c *Client) TodaySales(ctx context.Context, branch *models.BranchRef) decimal.Decimal {
	if branch != nil && branch.All {
		total := decimal.Zero
		for _, b := range c.cfg.Branches {
			total = total.Add(c.fetchBranch(ctx, b))
		}
		return total
	}
	brID := 1
	if branch != nil {
		brID = branch.ID
	}
	return c.fetchBranch(ctx, brID)
}

func (c *Client) fetchBranch(ctx context.Context, brID int) decimal.Decimal {
	form := url.Values{
		"db":    {c.cfg.DatabaseID},
		"br_id": {strconv.Itoa(brID)},
		"year":  {strconv.Itoa(c.clock().Year())},
		"range": {"30"},
		"type":  {"daily"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return decimal.Zero
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.cfg.ForwardedFor != "" {
		req.Header.Set("X-Forwarded-For", c.cfg.ForwardedFor)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("erp").Inc()
		c.logger.Warn("erp feed unreachable", map[string]interface{}{
			"branch": brID,
			"error":  stderrors.NewERPTimeoutError(err).Error(),
		})
		return decimal.Zero
	}
	defer resp.Body.Close()

	var payload feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ExternalCallFailures.WithLabelValues("erp").Inc()
		c.logger.Warn("erp feed returned malformed body", map[string]interface{}{
			"branch": brID,
			"error":  err.Error(),
		})
		return decimal.Zero
	}

	today := c.clock().Format("2006-01-02")
	for _, row := range payload.Data {
		if row.Period == today {
			return parseAmount(row.TotalSales)
		}
	}
	// Today absent from the feed means no sales recorded yet.
	return decimal.Zero
}

// parseAmount tolerates the feed sending amounts as numbers or strings.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	s := strings.Trim(string(raw), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
