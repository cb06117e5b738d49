package closer

import (
	"context"

	"github.com/santif/monthly-close/internal/ynab"
)

// LedgerWriter appends one row to a spreadsheet tab and returns the write
// locator. The executor depends on this contract, not on the Sheets
// client.
type LedgerWriter interface {
	AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) (string, error)
}

// DocumentStore uploads one file into a folder and returns its location.
// An empty location with a nil error means the store accepted the file but
// returned no locator.
type DocumentStore interface {
	Upload(ctx context.Context, folderID, path string) (string, error)
}

// TransactionWriter creates one tracking transaction and returns its id.
type TransactionWriter interface {
	Create(ctx context.Context, tx ynab.Transaction) (string, error)
}
