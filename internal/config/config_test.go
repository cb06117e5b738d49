package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configFixture = `
timezone: America/Argentina/Buenos_Aires
business_day_window: 3
currency:
  primary: ARS
  secondary: USD
  rounding: 2
sheets:
  debt_registry_tab: Deuda
  invoice_registry:
    spreadsheet_id: sheet-inv
    tab: Facturas
  history_headers:
    amount_primary: ["Monto ARS", "ARS"]
drive:
  invoice_folder_id: folder-123
tracking:
  budget_id: budget-123
invoices:
  watch_dir: /tmp/invoices
messages:
  template_path: assets/message_templates.md
artifacts:
  dir: artifacts
entities:
  - name: Santi Favelukes
    alias: santi-favelukes
    filename_aliases: [fave]
    ledger_sheet_id: sheet-fave
    tracking_account_id: account-fave
    fallback_input: 100.50
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", configFixture)

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BusinessDayWindow)
	assert.Equal(t, "Deuda", cfg.Sheets.DebtRegistryTab)
	require.Len(t, cfg.Entities, 1)
	entity := cfg.Entities[0]
	assert.Equal(t, "santi-favelukes", entity.Alias)
	assert.Equal(t, []string{"fave"}, entity.FilenameAliases)
	assert.Equal(t, "100.50", entity.FallbackInput.StringFixed(2))
	assert.Equal(t, -1, cfg.Tracking.EntrySign, "entry sign defaults to -1")
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "entities: []\n")

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, defaultTimezone, cfg.Timezone)
	assert.Equal(t, defaultWindow, cfg.BusinessDayWindow)
	assert.Equal(t, int32(defaultRounding), cfg.Currency.Rounding)
	assert.Equal(t, "ARS", cfg.Currency.Primary)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), "")
	require.Error(t, err)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "timezone: Mars/Olympus\n")

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestLoadRejectsDuplicateAliases(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
entities:
  - {alias: dup, fallback_input: 1}
  - {alias: dup, fallback_input: 1}
`)

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entity alias")
}

func TestLoadRejectsEntityWithoutAmounts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "entities:\n  - {alias: a}\n")

	_, err := Load(path, "")
	require.Error(t, err)
}

func TestSecretsEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", "entities: []\n")
	secretsPath := writeFile(t, dir, "secrets.json",
		`{"tracking_token": "from-file", "google_service_account": "/tmp/sa.json"}`)
	t.Setenv("YNAB_ACCESS_TOKEN", "from-env")

	cfg, err := Load(cfgPath, secretsPath)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Secrets.TrackingToken)
	assert.Equal(t, "/tmp/sa.json", cfg.Secrets.GoogleServiceAccount, "file value kept when env empty")
}

func TestHasGoogleCredentials(t *testing.T) {
	dir := t.TempDir()
	saPath := writeFile(t, dir, "sa.json", "{}")

	cfg := Config{}
	assert.False(t, cfg.HasGoogleCredentials())

	cfg.Secrets.GoogleServiceAccount = filepath.Join(dir, "nope.json")
	assert.False(t, cfg.HasGoogleCredentials(), "configured but missing file is not live")

	cfg.Secrets.GoogleServiceAccount = saPath
	assert.True(t, cfg.HasGoogleCredentials())
}

func TestHasTrackingCredentials(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.HasTrackingCredentials())

	cfg.Secrets.TrackingToken = "tok"
	assert.False(t, cfg.HasTrackingCredentials(), "token without budget is not live")

	cfg.Tracking.BudgetID = "budget-1"
	assert.True(t, cfg.HasTrackingCredentials())
}
