// Package runner orchestrates one closing run end to end: gate, rate,
// document matching, per-entity amounts and steps, checklist, artifact.
// Every external effect goes through a collaborator interface so the run
// degrades to staged payloads whenever a live path is missing.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/amount"
	"github.com/santif/monthly-close/internal/closer"
	"github.com/santif/monthly-close/internal/config"
	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/gate"
	"github.com/santif/monthly-close/internal/logger"
	"github.com/santif/monthly-close/internal/match"
	"github.com/santif/monthly-close/internal/message"
)

// RateResolver yields the run's single exchange rate.
type RateResolver interface {
	Resolve(ctx context.Context, override *decimal.Decimal) (domain.RateQuote, error)
}

// ArtifactWriter persists the finished run record.
type ArtifactWriter interface {
	Write(ctx context.Context, run *domain.RunArtifact) (string, error)
}

// Collaborators are the external surfaces of one run. Any nil member
// downgrades its steps to pending payloads; Rates and Artifacts are
// required.
type Collaborators struct {
	Rates        RateResolver
	History      amount.HistoryReader
	Ledger       closer.LedgerWriter
	Documents    closer.DocumentStore
	Transactions closer.TransactionWriter
	Artifacts    ArtifactWriter
}

// Options are the per-run knobs, mostly set from command-line flags.
type Options struct {
	// Period to close. Zero means the period containing Today.
	Period domain.Period
	// Today overrides the evaluation date, for reruns and tests. Zero
	// means now in the configured timezone.
	Today time.Time
	// DryRun stages every step regardless of available credentials.
	DryRun bool
	// ConfirmAmountChange lets changed amounts through the guard.
	ConfirmAmountChange bool
	// RateOverride bypasses all rate sources.
	RateOverride *decimal.Decimal
	// ForceGate runs outside the closing window, recorded as overridden.
	ForceGate bool
	// InvoiceDir overrides the configured document directory.
	InvoiceDir string
}

// Runner executes closing runs against a fixed config and collaborator set.
type Runner struct {
	cfg       config.Config
	log       zerolog.Logger
	col       Collaborators
	templates message.Templates
}

// New builds a runner. Templates may be empty; entities whose template is
// missing get an error message step instead of aborting the run.
func New(cfg config.Config, log zerolog.Logger, col Collaborators, templates message.Templates) *Runner {
	return &Runner{cfg: cfg, log: log, col: col, templates: templates}
}

// Run executes one closing run and persists its artifact. The artifact is
// written on every outcome that gets past config validation, including
// gate and rate failures, so aborted runs stay auditable. The returned
// error wraps domain.ErrGateBlocked or domain.ErrRateUnavailable for the
// two pre-write aborts.
func (r *Runner) Run(ctx context.Context, opts Options) (*domain.RunArtifact, string, error) {
	loc, err := r.cfg.Location()
	if err != nil {
		return nil, "", err
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now().In(loc)
	}
	period := opts.Period
	if period.IsZero() {
		period = domain.PeriodOf(today)
	}

	run := &domain.RunArtifact{
		RunID:     uuid.NewString(),
		Period:    period,
		Timezone:  r.cfg.Timezone,
		Mode:      r.mode(opts),
		StartedAt: today,
	}
	log := logger.ForRun(r.log, run.RunID, period.String())
	ctx = logger.WithContext(ctx, log)
	log.Info().Str("mode", run.Mode).Msg("closing run started")

	decision := gate.Evaluate(today, r.cfg.BusinessDayWindow)
	run.Gate = domain.GateDecision{
		Allowed:    decision.Allowed || opts.ForceGate,
		Reason:     decision.Reason,
		Overridden: !decision.Allowed && opts.ForceGate,
	}
	if !run.Gate.Allowed {
		log.Warn().Str("reason", decision.Reason).Msg("gate blocked the run")
		path, werr := r.finish(ctx, run)
		if werr != nil {
			log.Error().Err(werr).Msg("artifact write failed")
		}
		return run, path, fmt.Errorf("%s: %w", decision.Reason, domain.ErrGateBlocked)
	}
	if run.Gate.Overridden {
		log.Warn().Msg("gate override in effect")
	}

	quote, err := r.col.Rates.Resolve(ctx, opts.RateOverride)
	if err != nil {
		path, werr := r.finish(ctx, run)
		if werr != nil {
			log.Error().Err(werr).Msg("artifact write failed")
		}
		return run, path, err
	}
	run.Rate = &quote
	log.Info().Str("rate", quote.Value.String()).Str("source", string(quote.Source)).Msg("rate resolved")

	docs, err := match.Discover(r.invoiceDir(opts))
	if err != nil {
		return run, "", fmt.Errorf("discover documents: %w", err)
	}
	docs = match.Assign(docs, r.cfg.Entities)
	run.Documents = docs
	for _, doc := range docs {
		if doc.Status != domain.MatchAssigned {
			log.Warn().Str("document", doc.Name).Str("status", string(doc.Status)).Msg("document not assigned")
		}
	}

	amounts := amount.NewResolver(r.history())
	executor := r.executor(opts, today)

	for _, entity := range r.cfg.Entities {
		proposed, err := amounts.Resolve(ctx, entity, period, quote, opts.ConfirmAmountChange)
		run.Amounts = append(run.Amounts, proposed)
		entityDocs := docsFor(docs, entity.Alias)

		if err != nil {
			// The change guard blocks this entity only; siblings continue.
			if !domain.IsAmountChangeBlocked(err) {
				return run, "", fmt.Errorf("resolve amount for %s: %w", entity.Alias, err)
			}
			log.Warn().Str("entity", entity.Alias).Msg(err.Error())
			last := proposed.LastKnown
			computed := proposed.Computed
			run.AppendBlocked(domain.BlockedReason{
				Entity:    entity.Alias,
				Reason:    err.Error(),
				LastKnown: last,
				Proposed:  &computed,
			})
			executor.BlockEntity(run, entity, entityDocs, err.Error())
			continue
		}
		executor.ExecuteEntity(ctx, run, entity, proposed, entityDocs, quote)
	}

	r.summarize(run)
	path, err := r.finish(ctx, run)
	if err != nil {
		return run, "", err
	}
	log.Info().Str("artifact", path).Bool("needs_review", run.NeedsReview()).Msg("closing run finished")
	return run, path, nil
}

func (r *Runner) mode(opts Options) string {
	switch {
	case opts.DryRun:
		return "dry-run"
	case r.col.Ledger != nil || r.col.Documents != nil || r.col.Transactions != nil:
		return "live"
	default:
		return "degraded"
	}
}

func (r *Runner) invoiceDir(opts Options) string {
	if opts.InvoiceDir != "" {
		return opts.InvoiceDir
	}
	return r.cfg.Invoices.WatchDir
}

// history returns the configured reader, or a disabled one so the amount
// resolver uniformly reports history as unavailable.
func (r *Runner) history() amount.HistoryReader {
	if r.col.History != nil {
		return r.col.History
	}
	return noHistory{}
}

type noHistory struct{}

func (noHistory) LastAmount(ctx context.Context, entity domain.Entity, period domain.Period) (*decimal.Decimal, error) {
	return nil, nil
}

// executor assembles the per-entity step executor. Dry runs drop every
// live collaborator so all steps stage payloads.
func (r *Runner) executor(opts Options, today time.Time) *closer.Executor {
	e := &closer.Executor{
		Templates: r.templates,
		Settings: closer.Settings{
			DebtTab:         r.cfg.Sheets.DebtRegistryTab,
			InvoiceSheetID:  r.cfg.Sheets.InvoiceRegistry.SpreadsheetID,
			InvoiceTab:      r.cfg.Sheets.InvoiceRegistry.Tab,
			DriveFolderID:   r.cfg.Drive.InvoiceFolderID,
			TrackingSign:    r.cfg.Tracking.EntrySign,
			SecondaryCode:   r.cfg.Currency.Secondary,
			DefaultTemplate: r.cfg.Messages.DefaultKey,
			Today:           today,
		},
	}
	if !opts.DryRun {
		e.Ledger = r.col.Ledger
		e.Documents = r.col.Documents
		e.Transactions = r.col.Transactions
	}
	return e
}

func docsFor(docs []domain.Document, alias string) []domain.Document {
	var out []domain.Document
	for _, doc := range docs {
		if doc.Status == domain.MatchAssigned && doc.Entity == alias {
			out = append(out, doc)
		}
	}
	return out
}

func (r *Runner) finish(ctx context.Context, run *domain.RunArtifact) (string, error) {
	run.FinishedAt = time.Now()
	if r.col.Artifacts == nil {
		return "", nil
	}
	return r.col.Artifacts.Write(ctx, run)
}
