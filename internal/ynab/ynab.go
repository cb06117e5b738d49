// Package ynab creates tracking transactions against the YNAB REST API.
//
// Amounts are posted in milliunits of the primary currency. Only the
// transaction-create endpoint is used, so the adapter talks to the REST
// surface directly with a bounded-timeout client.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.ynab.com/v1"

// Transaction is one tracking entry to create.
type Transaction struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	PayeeName string `json:"payee_name"`
	Memo      string `json:"memo"`
	Cleared   string `json:"cleared"`
	Approved  bool   `json:"approved"`
}

// Milliunits converts a decimal currency amount into YNAB milliunits.
func Milliunits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
}

// BuildTransaction assembles the entry for one entity's monthly amount.
func BuildTransaction(accountID string, amount decimal.Decimal, day time.Time, payee, memo string) Transaction {
	return Transaction{
		AccountID: accountID,
		Date:      day.Format("2006-01-02"),
		Amount:    Milliunits(amount),
		PayeeName: payee,
		Memo:      memo,
		Cleared:   "cleared",
		Approved:  true,
	}
}

// Client posts transactions to one budget.
type Client struct {
	baseURL  string
	token    string
	budgetID string
	http     *http.Client
}

// New builds a live client. baseURL may be empty for the public endpoint.
func New(baseURL, token, budgetID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		budgetID: budgetID,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

type createRequest struct {
	Transaction Transaction `json:"transaction"`
}

type createResponse struct {
	Data struct {
		Transaction struct {
			ID string `json:"id"`
		} `json:"transaction"`
	} `json:"data"`
}

// Create posts the transaction and returns its id as the write locator.
func (c *Client) Create(ctx context.Context, tx Transaction) (string, error) {
	body, err := json.Marshal(createRequest{Transaction: tx})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, c.budgetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("create transaction: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var parsed createResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// The write went through; a malformed body only costs the locator.
		return "", nil
	}
	return parsed.Data.Transaction.ID, nil
}
