// Package closer sequences the per-entity closing side effects. Each step
// independently attempts its live path when the collaborator is wired, and
// otherwise produces a deterministic pending payload carrying the full
// data that would have been written. A failed step is recorded and never
// aborts sibling steps or other entities.
package closer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/logger"
	"github.com/santif/monthly-close/internal/message"
	"github.com/santif/monthly-close/internal/money"
	"github.com/santif/monthly-close/internal/ynab"
)

// Settings are the destination references shared by all entities in a run.
type Settings struct {
	DebtTab          string
	InvoiceSheetID   string
	InvoiceTab       string
	DriveFolderID    string
	TrackingSign     int
	SecondaryCode    string
	DefaultTemplate  string
	Today            time.Time
}

// Executor runs the ordered closing steps for one entity. A nil
// collaborator means that step has no live path and stages its payload.
type Executor struct {
	Ledger       LedgerWriter
	Documents    DocumentStore
	Transactions TransactionWriter
	Templates    message.Templates
	Settings     Settings
}

// stepNote is the fixed ledger note for the monthly default amount.
const stepNote = "Monto mensual (cierre automático)"

// ExecuteEntity appends the entity's four closing steps to the artifact in
// order: ledger row, one document step per matched document, tracking
// transaction, message payload.
func (e *Executor) ExecuteEntity(ctx context.Context, artifact *domain.RunArtifact, entity domain.Entity, proposed domain.ProposedAmount, docs []domain.Document, rate domain.RateQuote) {
	log := logger.FromContext(ctx)

	ledger := e.ledgerStep(ctx, entity, artifact.Period, proposed, rate)
	artifact.AppendStep(entity.Alias, domain.StepLedger, "", ledger)
	log.Info().Str("entity", entity.Alias).Str("status", string(ledger.Status)).Msg("ledger step")

	for _, doc := range docs {
		out := e.documentStep(ctx, entity, artifact.Period, proposed, doc)
		artifact.AppendStep(entity.Alias, domain.StepDocument, doc.Name, out)
		log.Info().Str("entity", entity.Alias).Str("document", doc.Name).Str("status", string(out.Status)).Msg("document step")
	}

	tx := e.transactionStep(ctx, entity, artifact.Period, proposed)
	artifact.AppendStep(entity.Alias, domain.StepTransaction, "", tx)
	log.Info().Str("entity", entity.Alias).Str("status", string(tx.Status)).Msg("transaction step")

	msg := e.messageStep(entity, artifact.Period, proposed, rate)
	artifact.AppendStep(entity.Alias, domain.StepMessage, "", msg)
	if msg.Status == domain.StatusPending {
		if artifact.Messages == nil {
			artifact.Messages = map[string]string{}
		}
		if text, ok := msg.Payload["message"].(string); ok {
			artifact.Messages[entity.Alias] = text
		}
	}
}

// BlockEntity records a blocked outcome for every step the entity would
// have run. Nothing live or pending is produced for a blocked entity.
func (e *Executor) BlockEntity(artifact *domain.RunArtifact, entity domain.Entity, docs []domain.Document, reason string) {
	artifact.AppendStep(entity.Alias, domain.StepLedger, "", domain.BlockedOutcome(reason))
	for _, doc := range docs {
		artifact.AppendStep(entity.Alias, domain.StepDocument, doc.Name, domain.BlockedOutcome(reason))
	}
	artifact.AppendStep(entity.Alias, domain.StepTransaction, "", domain.BlockedOutcome(reason))
	artifact.AppendStep(entity.Alias, domain.StepMessage, "", domain.BlockedOutcome(reason))
}

func (e *Executor) ledgerStep(ctx context.Context, entity domain.Entity, period domain.Period, proposed domain.ProposedAmount, rate domain.RateQuote) domain.StepOutcome {
	row := BuildDebtRow(period, proposed.Computed, proposed.Input, rate.Value, stepNote)
	payload := map[string]any{
		"spreadsheet_id": entity.LedgerSheetID,
		"tab":            e.Settings.DebtTab,
		"row":            row,
	}
	if e.Ledger == nil {
		return domain.Pending(payload)
	}
	ref, err := e.Ledger.AppendRow(ctx, entity.LedgerSheetID, e.Settings.DebtTab, row)
	if err != nil {
		return domain.ErrorOutcome(err.Error())
	}
	return domain.Live(ref)
}

func (e *Executor) documentStep(ctx context.Context, entity domain.Entity, period domain.Period, proposed domain.ProposedAmount, doc domain.Document) domain.StepOutcome {
	registration := func(location string) []string {
		return BuildInvoiceRow(e.Settings.Today, period, entity.Name, doc.Name, location, proposed.Computed, proposed.Input)
	}

	if e.Documents == nil {
		return domain.Pending(map[string]any{
			"folder_id":        e.Settings.DriveFolderID,
			"file":             doc.Path,
			"registration_row": registration(MissingLocationMarker),
			"registry":         e.Settings.InvoiceSheetID,
			"tab":              e.Settings.InvoiceTab,
		})
	}

	location, err := e.Documents.Upload(ctx, e.Settings.DriveFolderID, doc.Path)
	if err != nil {
		return domain.ErrorOutcome(fmt.Sprintf("upload: %v", err))
	}

	// An upload that succeeded without returning a locator is not a
	// success: the registry row would point nowhere. The marker keeps the
	// gap explicit.
	partial := location == ""
	if partial {
		location = MissingLocationMarker
	}
	row := registration(location)

	if e.Ledger == nil {
		payload := map[string]any{
			"registry":         e.Settings.InvoiceSheetID,
			"tab":              e.Settings.InvoiceTab,
			"registration_row": row,
			"location":         location,
		}
		if partial {
			return domain.Partial(payload, "upload returned no locator")
		}
		return domain.Pending(payload)
	}

	ref, err := e.Ledger.AppendRow(ctx, e.Settings.InvoiceSheetID, e.Settings.InvoiceTab, row)
	if err != nil {
		return domain.ErrorOutcome(fmt.Sprintf("register document (uploaded to %s): %v", location, err))
	}
	if partial {
		return domain.Partial(map[string]any{
			"registration_ref": ref,
			"registration_row": row,
		}, "upload returned no locator")
	}
	return domain.Live(location)
}

func (e *Executor) transactionStep(ctx context.Context, entity domain.Entity, period domain.Period, proposed domain.ProposedAmount) domain.StepOutcome {
	amount := proposed.Computed.Mul(decimal.NewFromInt(int64(e.Settings.TrackingSign)))
	memo := fmt.Sprintf("Deuda %s %s", e.Settings.SecondaryCode, period)
	tx := ynab.BuildTransaction(entity.TrackingAccountID, amount, e.Settings.Today, entity.Name, memo)

	payload := map[string]any{"transaction": tx}
	if e.Transactions == nil {
		return domain.Pending(payload)
	}
	ref, err := e.Transactions.Create(ctx, tx)
	if err != nil {
		return domain.ErrorOutcome(err.Error())
	}
	if ref == "" {
		return domain.Partial(payload, "transaction created without locator")
	}
	return domain.Live(ref)
}

func (e *Executor) messageStep(entity domain.Entity, period domain.Period, proposed domain.ProposedAmount, rate domain.RateQuote) domain.StepOutcome {
	key := entity.TemplateKey
	if key == "" {
		key = e.Settings.DefaultTemplate
	}
	template, err := e.Templates.Get(key)
	if err != nil {
		return domain.ErrorOutcome(err.Error())
	}
	rendered := message.Render(template, map[string]string{
		"name":       entity.Name,
		"period":     period.String(),
		"amount_ars": money.Format(proposed.Computed),
		"amount_usd": money.Format(proposed.Input),
		"fx_rate":    money.Format(rate.Value),
	})
	// Messages are never sent by this system; the rendered payload is
	// always staged for a human.
	return domain.Pending(map[string]any{
		"template_key": key,
		"message":      rendered,
	})
}
