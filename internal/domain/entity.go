package domain

import (
	"github.com/shopspring/decimal"
)

// Entity is one configured counterparty for whom a monthly amount is
// resolved. Entities are read-only during a run.
type Entity struct {
	// Name is the human-readable name used on ledger rows and messages.
	Name string `json:"name"`
	// Alias is the stable identifier used in step labels and summaries.
	Alias string `json:"alias"`
	// FilenameAliases are the tokens used for document matching. Matching
	// never falls back to a token derived from Alias itself; an entity
	// without aliases simply matches no documents.
	FilenameAliases []string `json:"filename_aliases,omitempty"`
	// LedgerSheetID is the spreadsheet holding this entity's debt registry.
	LedgerSheetID string `json:"ledger_sheet_id"`
	// TrackingAccountID is the tracking account receiving the monthly
	// transaction.
	TrackingAccountID string `json:"tracking_account_id"`
	// Input is the manually proposed secondary-currency amount for the
	// period. Zero means no manual proposal was made.
	Input decimal.Decimal `json:"input,omitempty"`
	// FallbackInput is the secondary-currency amount used when no manual
	// proposal was made.
	FallbackInput decimal.Decimal `json:"fallback_input"`
	// TemplateKey selects the message template section for this entity.
	TemplateKey string `json:"template_key,omitempty"`
}

// ProposedAmount is the resolved amount for one entity in one run. Computed
// derives from the run's single RateQuote.
type ProposedAmount struct {
	Entity string `json:"entity"`
	// Input is the proposed amount in the secondary currency.
	Input decimal.Decimal `json:"input"`
	// Computed is round_half_up(Input * rate, 2) in the primary currency.
	Computed decimal.Decimal `json:"computed"`
	// LastKnown is the historical primary-currency amount, when history
	// exists. nil means the history read returned no data, which is not
	// the same as "unchanged".
	LastKnown *decimal.Decimal `json:"last_known,omitempty"`
	// Changed reports |Computed - LastKnown| > 0.01. Always false when
	// LastKnown is nil.
	Changed bool `json:"changed"`
	// HistoryUnavailable marks entities whose change check was disabled
	// because no history could be read.
	HistoryUnavailable bool `json:"history_unavailable,omitempty"`
}
