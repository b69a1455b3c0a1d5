package sepay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/domain/payment"
)

// dateLayout is the timestamp format the ledger API emits.
const dateLayout = "2006-01-02 15:04:05"

// Client queries the SePay transaction ledger. It implements payment.Gateway.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a ledger client. Credentials are per-landlord and arrive
// with each call, not at construction.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "sepay").Logger(),
	}
}

type listResponse struct {
	Status       int               `json:"status"`
	Error        *string           `json:"error"`
	Transactions []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	ID              string `json:"id"`
	AmountIn        string `json:"amount_in"`
	Content         string `json:"transaction_content"`
	TransactionDate string `json:"transaction_date"`
}

// ListRecentTransactions fetches the most recent incoming transfers for the
// account. Entries with an unparsable amount are skipped with a warning
// rather than failing the whole page.
func (c *Client) ListRecentTransactions(ctx context.Context, creds payment.Credentials, limit int) ([]payment.Transaction, error) {
	q := url.Values{}
	q.Set("account_number", creds.AccountNumber)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/transactions/list?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ledger returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ledger response: %w", err)
	}
	if out.Status != 200 {
		msg := "unknown error"
		if out.Error != nil {
			msg = *out.Error
		}
		return nil, fmt.Errorf("ledger rejected query (status %d): %s", out.Status, msg)
	}

	txs := make([]payment.Transaction, 0, len(out.Transactions))
	for _, t := range out.Transactions {
		amount, err := decimal.NewFromString(t.AmountIn)
		if err != nil {
			c.logger.Warn().Str("transaction_id", t.ID).Str("amount_in", t.AmountIn).Msg("skipping transaction with bad amount")
			continue
		}
		date, err := time.Parse(dateLayout, t.TransactionDate)
		if err != nil {
			date = time.Time{}
		}
		txs = append(txs, payment.Transaction{
			ID:      t.ID,
			Amount:  amount,
			Content: t.Content,
			Date:    date,
		})
	}
	return txs, nil
}
