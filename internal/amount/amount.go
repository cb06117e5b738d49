// Package amount computes the proposed amount per entity and applies the
// change guard against the entity's history.
package amount

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/logger"
	"github.com/santif/monthly-close/internal/money"
)

// HistoryReader reads the last primary-currency amount recorded for an
// entity. A (nil, nil) return means the entity has no history yet, a
// legitimate outcome that disables the change check, and is never to be
// conflated with "unchanged".
type HistoryReader interface {
	LastAmount(ctx context.Context, entity domain.Entity, period domain.Period) (*decimal.Decimal, error)
}

// Resolver resolves one ProposedAmount per entity from the run's single
// RateQuote.
type Resolver struct {
	history  HistoryReader
	rounding int32
}

// NewResolver builds an amount resolver over the given history collaborator.
func NewResolver(history HistoryReader) *Resolver {
	return &Resolver{history: history, rounding: 2}
}

// Resolve computes the entity's proposed amount and applies the change
// guard. It always returns a populated ProposedAmount so the run artifact
// can record both values even when the guard blocks; a returned
// *domain.AmountChangeBlockedError means every downstream step for this
// entity must be suppressed.
func (r *Resolver) Resolve(ctx context.Context, entity domain.Entity, period domain.Period, rate domain.RateQuote, confirmChange bool) (domain.ProposedAmount, error) {
	log := logger.FromContext(ctx)

	input := entity.Input
	if !input.IsPositive() {
		input = entity.FallbackInput
	}
	computed := money.RoundHalfUp(input.Mul(rate.Value), r.rounding)

	proposed := domain.ProposedAmount{
		Entity:   entity.Alias,
		Input:    input,
		Computed: computed,
	}

	last, err := r.history.LastAmount(ctx, entity, period)
	if err != nil {
		// A failed history read disables the check for this entity only;
		// it must not pass the guard implicitly nor abort the run.
		log.Warn().Err(err).Str("entity", entity.Alias).Msg("history_unavailable")
		proposed.HistoryUnavailable = true
		return proposed, nil
	}
	if last == nil {
		log.Info().Str("entity", entity.Alias).Msg("history_unavailable")
		proposed.HistoryUnavailable = true
		return proposed, nil
	}

	proposed.LastKnown = last
	proposed.Changed = money.ChangedBeyondTolerance(computed, *last)
	if !proposed.Changed {
		return proposed, nil
	}

	if !confirmChange {
		return proposed, &domain.AmountChangeBlockedError{
			Entity:    entity.Alias,
			LastKnown: *last,
			Proposed:  computed,
		}
	}
	log.Info().
		Str("entity", entity.Alias).
		Str("last_known", last.StringFixed(2)).
		Str("proposed", computed.StringFixed(2)).
		Msg("amount change confirmed for this run")
	return proposed, nil
}
