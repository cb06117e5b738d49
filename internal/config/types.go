package config

import (
	"github.com/santif/monthly-close/internal/domain"
)

// Config is the full, immutable run configuration. It is loaded once at
// process start and passed into the orchestrator by value; nothing reads
// ambient mutable state during a run.
type Config struct {
	// Timezone is the IANA zone the gate evaluates dates in.
	Timezone string `json:"timezone"`
	// BusinessDayWindow is the closing-window size N: the run may execute
	// automatically within the last N business days of the month.
	BusinessDayWindow int `json:"business_day_window"`
	// Schedule is the cron expression used by the schedule command.
	Schedule string `json:"schedule"`

	Currency  CurrencyConfig  `json:"currency"`
	FX        FXConfig        `json:"fx"`
	Sheets    SheetsConfig    `json:"sheets"`
	Drive     DriveConfig     `json:"drive"`
	Tracking  TrackingConfig  `json:"tracking"`
	Invoices  InvoiceConfig   `json:"invoices"`
	Messages  MessageConfig   `json:"messages"`
	Artifacts ArtifactConfig  `json:"artifacts"`
	Entities  []domain.Entity `json:"entities"`

	// Secrets are resolved separately (file + environment) and never
	// serialized with the config.
	Secrets Secrets `json:"-"`
}

// CurrencyConfig names the two currencies and the rate precision.
type CurrencyConfig struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Rounding  int32  `json:"rounding"`
}

// FXConfig points the rate resolver at its sources. HTMLFixture, when set,
// feeds the parser from a local file instead of the network.
type FXConfig struct {
	ScrapeURL   string `json:"scrape_url"`
	FallbackURL string `json:"fallback_url"`
	HTMLFixture string `json:"html_fixture"`
}

// SheetsConfig holds the ledger destinations shared by all entities. The
// per-entity debt registry spreadsheet comes from the entity record.
type SheetsConfig struct {
	DebtRegistryTab string          `json:"debt_registry_tab"`
	InvoiceRegistry InvoiceRegistry `json:"invoice_registry"`
	// HistoryHeaders maps logical column names to accepted header
	// spellings for the history read.
	HistoryHeaders map[string][]string `json:"history_headers"`
}

// InvoiceRegistry is the shared sheet registering uploaded invoices.
type InvoiceRegistry struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Tab           string `json:"tab"`
}

// DriveConfig holds the upload destination for matched documents.
type DriveConfig struct {
	InvoiceFolderID string `json:"invoice_folder_id"`
}

// TrackingConfig holds the tracking-budget destination for transactions.
type TrackingConfig struct {
	BudgetID string `json:"budget_id"`
	// EntrySign is applied to the primary amount before posting; a debt
	// registry uses -1.
	EntrySign int `json:"entry_sign"`
	// APIURL overrides the tracking API base URL, used by tests.
	APIURL string `json:"api_url"`
}

// InvoiceConfig locates the discovered documents.
type InvoiceConfig struct {
	WatchDir string `json:"watch_dir"`
}

// MessageConfig locates the message templates.
type MessageConfig struct {
	TemplatePath string `json:"template_path"`
	// DefaultKey is the template used by entities without a TemplateKey.
	DefaultKey string `json:"default_key"`
}

// ArtifactConfig controls where run artifacts land.
type ArtifactConfig struct {
	Dir string `json:"dir"`
	// GCSBucket, when set, receives an archive copy of every artifact.
	GCSBucket string `json:"gcs_bucket"`
}

// Secrets carries credential material. Environment variables take
// precedence over the secrets file.
type Secrets struct {
	// TrackingToken is the personal access token for the tracking API.
	TrackingToken string `json:"tracking_token" env:"YNAB_ACCESS_TOKEN"`
	// GoogleServiceAccount is the path to the service-account JSON used
	// for the Sheets and Drive collaborators.
	GoogleServiceAccount string `json:"google_service_account" env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
}
