package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/config"
	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/logger"
	"github.com/santif/monthly-close/internal/match"
	"github.com/santif/monthly-close/internal/runner"
)

// Exit codes distinguish the two safe aborts from real failures, so a
// wrapper script can retry a gate block tomorrow but page on errors.
const (
	exitOK    = 0
	exitError = 1
	exitGate  = 2
	exitRate  = 3
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitError)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runClose(log, os.Args[2:]))
	case "rate":
		os.Exit(runRate(log, os.Args[2:]))
	case "match":
		os.Exit(runMatch(log, os.Args[2:]))
	case "schedule":
		os.Exit(runSchedule(log, os.Args[2:]))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(exitError)
	}
}

func printUsage() {
	fmt.Println("Monthly closing orchestrator")
	fmt.Println("\nUsage:")
	fmt.Println("  close <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  run       Execute the closing run for a period")
	fmt.Println("  rate      Resolve and print the exchange rate")
	fmt.Println("  match     Preview document-to-entity matching")
	fmt.Println("  schedule  Run on the configured cron schedule")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'close <command> -h' for more information on a command.")
}

// configFlags registers the flags shared by every command.
func configFlags(fs *flag.FlagSet) (configFile, secretsFile *string) {
	configFile = fs.String("config", "./config.yml", "configuration file")
	secretsFile = fs.String("secrets", "./secrets.json", "secrets file")
	return configFile, secretsFile
}

func runClose(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configFile, secretsFile := configFlags(fs)
	period := fs.String("period", "", "period to close (YYYY-MM, default: current)")
	today := fs.String("today", "", "evaluation date (YYYY-MM-DD, default: now)")
	dryRun := fs.Bool("dry-run", false, "stage every step instead of writing")
	confirm := fs.Bool("confirm-amount-change", false, "let changed amounts through the guard")
	rateOverride := fs.String("rate-override", "", "manual exchange rate, skips all sources")
	forceGate := fs.Bool("force-gate", false, "run outside the closing window")
	invoiceDir := fs.String("invoice-dir", "", "override the configured invoice directory")
	fs.Parse(args)

	cfg, err := config.Load(*configFile, *secretsFile)
	if err != nil {
		log.Error().Err(err).Msg("config load failed")
		return exitError
	}

	opts := runner.Options{
		DryRun:              *dryRun,
		ConfirmAmountChange: *confirm,
		ForceGate:           *forceGate,
		InvoiceDir:          *invoiceDir,
	}
	if *period != "" {
		p, err := domain.ParsePeriod(*period)
		if err != nil {
			log.Error().Err(err).Msg("invalid -period")
			return exitError
		}
		opts.Period = p
	}
	if *today != "" {
		loc, lerr := cfg.Location()
		if lerr != nil {
			log.Error().Err(lerr).Msg("invalid timezone")
			return exitError
		}
		t, terr := time.ParseInLocation("2006-01-02", *today, loc)
		if terr != nil {
			log.Error().Err(terr).Msg("invalid -today")
			return exitError
		}
		opts.Today = t
	}
	if *rateOverride != "" {
		v, derr := decimal.NewFromString(*rateOverride)
		if derr != nil {
			log.Error().Err(derr).Msg("invalid -rate-override")
			return exitError
		}
		opts.RateOverride = &v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	r, err := runner.Wire(ctx, cfg, log, *dryRun)
	if err != nil {
		log.Error().Err(err).Msg("wiring failed")
		return exitError
	}

	run, path, err := r.Run(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGateBlocked):
			log.Warn().Err(err).Msg("closing blocked by the business-day gate")
			return exitGate
		case errors.Is(err, domain.ErrRateUnavailable):
			log.Error().Err(err).Msg("no exchange rate available")
			return exitRate
		default:
			log.Error().Err(err).Msg("closing run failed")
			return exitError
		}
	}

	printSummary(run, path)
	return exitOK
}

// printSummary writes the human-facing checklist to stdout; everything
// else goes through the structured logger on stderr.
func printSummary(run *domain.RunArtifact, path string) {
	fmt.Printf("Closing run %s for %s (%s)\n\n", run.RunID, run.Period, run.Mode)
	for _, item := range run.Checklist {
		if item.Detail != "" {
			fmt.Printf("  [%s] %s: %s\n", item.Status, item.Item, item.Detail)
		} else {
			fmt.Printf("  [%s] %s\n", item.Status, item.Item)
		}
	}
	if run.NeedsReview() {
		fmt.Println("\nReview the findings above before continuing.")
	} else if len(run.ManualSteps) > 0 {
		fmt.Println("\nManual steps:")
		for _, s := range run.ManualSteps {
			fmt.Printf("  - %s\n", s)
		}
	}
	if path != "" {
		fmt.Printf("\nArtifact: %s\n", path)
	}
}

func runRate(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	configFile, secretsFile := configFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(*configFile, *secretsFile)
	if err != nil {
		log.Error().Err(err).Msg("config load failed")
		return exitError
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	quote, err := runner.RateSources(cfg).Resolve(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("rate resolution failed")
		return exitRate
	}
	fmt.Printf("%s %s/%s (%s)\n", quote.Value.StringFixed(2), cfg.Currency.Primary, cfg.Currency.Secondary, quote.Source)
	for name, price := range quote.Prices {
		fmt.Printf("  %s: %s\n", name, price.StringFixed(2))
	}
	return exitOK
}

func runMatch(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configFile, secretsFile := configFlags(fs)
	invoiceDir := fs.String("invoice-dir", "", "override the configured invoice directory")
	fs.Parse(args)

	cfg, err := config.Load(*configFile, *secretsFile)
	if err != nil {
		log.Error().Err(err).Msg("config load failed")
		return exitError
	}

	dir := *invoiceDir
	if dir == "" {
		dir = cfg.Invoices.WatchDir
	}
	docs, err := match.Discover(dir)
	if err != nil {
		log.Error().Err(err).Msg("document discovery failed")
		return exitError
	}
	docs = match.Assign(docs, cfg.Entities)
	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return exitOK
	}
	for _, doc := range docs {
		switch doc.Status {
		case domain.MatchAssigned:
			fmt.Printf("  %-40s -> %s\n", doc.Name, doc.Entity)
		case domain.MatchAmbiguous:
			fmt.Printf("  %-40s ambiguous: %v\n", doc.Name, doc.Candidates)
		default:
			fmt.Printf("  %-40s unmatched\n", doc.Name)
		}
	}
	return exitOK
}

func runSchedule(log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	configFile, secretsFile := configFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(*configFile, *secretsFile)
	if err != nil {
		log.Error().Err(err).Msg("config load failed")
		return exitError
	}

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		ctx = logger.WithContext(ctx, log)

		r, err := runner.Wire(ctx, cfg, log, false)
		if err != nil {
			log.Error().Err(err).Msg("wiring failed")
			return
		}
		// The gate decides inside: outside the window the scheduled run
		// just records a blocked artifact and waits for the next tick.
		if _, _, err := r.Run(ctx, runner.Options{}); err != nil {
			if errors.Is(err, domain.ErrGateBlocked) {
				log.Info().Msg("outside closing window, waiting for next tick")
				return
			}
			log.Error().Err(err).Msg("scheduled closing run failed")
		}
	}

	c := cron.New()
	if err := c.AddFunc(cfg.Schedule, run); err != nil {
		log.Error().Err(err).Str("schedule", cfg.Schedule).Msg("invalid cron schedule")
		return exitError
	}
	log.Info().Str("schedule", cfg.Schedule).Msg("scheduler started")
	c.Start()

	select {}
}
