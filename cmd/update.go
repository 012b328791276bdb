package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/stocks"
	"github.com/google/subcommands"
)

type updateCmd struct {
	codes   string
	dryRun  bool
	quotes  string
	cache   bool
	timeout time.Duration
}

func (*updateCmd) Name() string { return "update" }
func (*updateCmd) Synopsis() string {
	return "refresh the market data of the stocks file"
}
func (*updateCmd) Usage() string {
	return `stockctl update [-code <codes>] [-dry-run] [-quotes <provider>] [-cache] [-timeout <duration>] [file]

  Fetches the latest price, market cap and total shares of every stock of the
  file, and the net profit of its most recent audited income statement. The
  fields whose value changed are overwritten, every other property of the
  file is kept as is. The file defaults to $STOCKS_FILE, or stocks.json.

  A stock that cannot be refreshed is reported and left unchanged.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.codes, "code", "", "comma separated codes of the stocks to refresh, e.g. 600519.SH (default all)")
	f.BoolVar(&c.dryRun, "dry-run", false, "print the changes without writing the file")
	f.StringVar(&c.quotes, "quotes", "", "quote provider: eastmoney or yahoo (overrides QUOTE_PROVIDER)")
	f.BoolVar(&c.cache, "cache", false, "cache HTTP responses on disk for the day (overrides HTTP_CACHE)")
	f.DurationVar(&c.timeout, "timeout", 0, "HTTP request timeout (overrides HTTP_TIMEOUT)")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(stderr, "at most one file argument expected")
		return subcommands.ExitUsageError
	}
	only, err := parseCodes(c.codes)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing -code: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	// flags take precedence over the environment.
	if c.quotes != "" {
		cfg.QuoteProvider = c.quotes
	}
	if c.cache {
		cfg.HTTPCache = true
	}
	if c.timeout > 0 {
		cfg.HTTPTimeout = c.timeout
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}

	log := newLogger(cfg)
	file := stocksFile(cfg, f.Args())
	doc, err := stocks.ReadFile(file)
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("cannot read stocks file")
		return subcommands.ExitFailure
	}
	for _, code := range only {
		if doc.Find(code) == nil {
			fmt.Fprintf(stderr, "stock %s not found in %s\n", code, file)
			return subcommands.ExitUsageError
		}
	}
	log.Info().Str("file", file).Int("stocks", len(doc.Stocks)).Str("quotes", cfg.QuoteProvider).Msg("refreshing stocks")

	quotes, statements := newProviders(cfg, log)
	u := &stocks.Updater{Quotes: quotes, Statements: statements, Logger: log}
	res := u.Update(ctx, doc, only...)

	for _, change := range res.Changes {
		fmt.Fprintln(stdout, change)
	}
	for _, failure := range res.Failures {
		fmt.Fprintf(stdout, "failed %v\n", failure)
	}
	log.Info().
		Int("refreshed", res.Refreshed).
		Int("changes", len(res.Changes)).
		Int("failures", len(res.Failures)).
		Msg("refresh done")

	if c.dryRun {
		log.Info().Msg("dry run, stocks file not written")
		return subcommands.ExitSuccess
	}
	if err := stocks.WriteFile(file, doc); err != nil {
		log.Error().Err(err).Str("file", file).Msg("cannot write stocks file")
		return subcommands.ExitFailure
	}
	log.Info().Str("file", file).Msg("stocks file written")
	return subcommands.ExitSuccess
}
