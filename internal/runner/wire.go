package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/santif/monthly-close/internal/artifact"
	"github.com/santif/monthly-close/internal/config"
	"github.com/santif/monthly-close/internal/drive"
	"github.com/santif/monthly-close/internal/fx"
	"github.com/santif/monthly-close/internal/message"
	"github.com/santif/monthly-close/internal/sheets"
	"github.com/santif/monthly-close/internal/ynab"
)

// Wire builds a runner with every collaborator the available credentials
// allow. Missing credentials are not an error: the matching steps run
// degraded. A dry run skips client construction entirely.
func Wire(ctx context.Context, cfg config.Config, log zerolog.Logger, dryRun bool) (*Runner, error) {
	col := Collaborators{
		Rates: RateSources(cfg),
		Artifacts: &artifact.Store{
			Dir:    config.ExpandPath(cfg.Artifacts.Dir),
			Bucket: cfg.Artifacts.GCSBucket,
		},
	}

	if !dryRun && cfg.HasGoogleCredentials() {
		creds := config.ExpandPath(cfg.Secrets.GoogleServiceAccount)
		sheetsClient, err := sheets.New(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("sheets client: %w", err)
		}
		col.Ledger = sheetsClient
		col.History = sheets.NewHistory(sheetsClient, cfg.Sheets.DebtRegistryTab, cfg.Sheets.HistoryHeaders)

		driveClient, err := drive.New(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("drive client: %w", err)
		}
		col.Documents = driveClient
	} else if !dryRun {
		log.Warn().Msg("no Google credentials, ledger and document steps will stage payloads")
	}

	if !dryRun && cfg.HasTrackingCredentials() {
		col.Transactions = ynab.New(cfg.Tracking.APIURL, cfg.Secrets.TrackingToken, cfg.Tracking.BudgetID)
	} else if !dryRun {
		log.Warn().Msg("no tracking credentials, transaction steps will stage payloads")
	}

	templates, err := loadTemplates(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, log, col, templates), nil
}

// RateSources builds the rate resolver from the configured sources. A
// configured HTML fixture replaces the live scraper.
func RateSources(cfg config.Config) *fx.Resolver {
	var primary fx.Source
	if cfg.FX.HTMLFixture != "" {
		primary = &fx.FileSource{Path: config.ExpandPath(cfg.FX.HTMLFixture)}
	} else {
		primary = fx.NewScraper(cfg.FX.ScrapeURL)
	}
	return fx.NewResolver(primary, fx.NewAPISource(cfg.FX.FallbackURL), cfg.Currency.Rounding)
}

func loadTemplates(cfg config.Config) (message.Templates, error) {
	if cfg.Messages.TemplatePath == "" {
		return message.Templates{}, nil
	}
	templates, err := message.LoadTemplates(config.ExpandPath(cfg.Messages.TemplatePath))
	if err != nil {
		return nil, fmt.Errorf("load message templates: %w", err)
	}
	return templates, nil
}
