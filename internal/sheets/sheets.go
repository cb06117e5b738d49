// Package sheets is the Google Sheets adapter: ledger row appends for the
// debt and invoice registries, and the last-amount history read behind the
// change guard.
package sheets

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/money"
)

// AmountColumn is the logical column the history read resolves.
const AmountColumn = "amount_primary"

// DefaultHistoryHeaders are the accepted spellings for the amount column
// when the config does not override them.
var DefaultHistoryHeaders = map[string][]string{
	AmountColumn: {"Monto ARS", "ARS", "amount_ars", "Monto"},
}

// Client wraps the Sheets API for the append and history contracts.
type Client struct {
	svc *sheetsapi.Service
}

// New builds a live Sheets client from a service-account file.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Client{svc: svc}, nil
}

// AppendRow appends one row to the given tab and returns the updated range
// as the write locator.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) (string, error) {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	resp, err := c.svc.Spreadsheets.Values.
		Append(spreadsheetID, tab+"!A:Z", &sheetsapi.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to %s!%s: %w", spreadsheetID, tab, err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

// readTab fetches all rows of a tab.
func (c *Client) readTab(ctx context.Context, spreadsheetID, tab string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, tab+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", spreadsheetID, tab, err)
	}
	return resp.Values, nil
}

// History reads the last recorded primary-currency amount per entity from
// its debt registry tab. It implements the amount.HistoryReader contract.
type History struct {
	client  *Client
	tab     string
	headers map[string][]string
}

// NewHistory builds the history reader over a live client. headers may be
// nil to use the default spellings.
func NewHistory(client *Client, tab string, headers map[string][]string) *History {
	if len(headers) == 0 {
		headers = DefaultHistoryHeaders
	}
	return &History{client: client, tab: tab, headers: headers}
}

// LastAmount returns the most recent non-empty amount cell, or (nil, nil)
// when the entity has no usable history: no sheet configured, no data
// rows, or no recognizable amount column. Those outcomes disable the
// change check; they are not errors and not zeros.
func (h *History) LastAmount(ctx context.Context, entity domain.Entity, period domain.Period) (*decimal.Decimal, error) {
	if entity.LedgerSheetID == "" {
		return nil, nil
	}
	rows, err := h.client.readTab(ctx, entity.LedgerSheetID, h.tab)
	if err != nil {
		return nil, err
	}
	return lastAmountFromRows(rows, h.headers)
}

func lastAmountFromRows(rows [][]interface{}, headers map[string][]string) (*decimal.Decimal, error) {
	if len(rows) < 2 {
		return nil, nil
	}
	headerRow := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headerRow[i] = fmt.Sprint(cell)
	}
	indexes, err := DetectHeaderIndexes(headerRow, headers)
	if err != nil {
		return nil, nil
	}
	col := indexes[AmountColumn]

	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if col >= len(row) {
			continue
		}
		cell := fmt.Sprint(row[col])
		if cell == "" {
			continue
		}
		parsed, perr := money.Parse(cell)
		if perr != nil {
			continue
		}
		return &parsed, nil
	}
	return nil, nil
}
