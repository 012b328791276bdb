package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	growth string
	target string
	code   string
	raw    bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the dividend valuation of the stocks" }
func (*reportCmd) Usage() string {
	return `stockctl report [-growth <rate>] [-target <rate>] [-code <code>] [-raw] [file]

  Displays, for every stock of the file, the acceptable price for a target
  dividend rate, the estimated dividend rate, the PE and the current dividend
  yield. Growth and target rates default to the defaultGrowthRate and
  defaultTargetDividendRate of each stock.

  With -code, displays the details of a single stock.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.growth, "growth", "", "net profit growth rate for all stocks, e.g. 1.1")
	f.StringVar(&c.target, "target", "", "target dividend rate for all stocks, e.g. 0.04")
	f.StringVar(&c.code, "code", "", "display the details of this stock only")
	f.BoolVar(&c.raw, "raw", false, "print the markdown source instead of rendering it")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(stderr, "at most one file argument expected")
		return subcommands.ExitUsageError
	}
	growth, err := parseRate(c.growth)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing -growth: %v\n", err)
		return subcommands.ExitUsageError
	}
	target, err := parseRate(c.target)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing -target: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	file := stocksFile(cfg, f.Args())
	doc, err := stocks.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading stocks file: %v\n", err)
		return subcommands.ExitFailure
	}

	var md string
	if c.code != "" {
		code, err := stocks.ParseCode(c.code)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing -code: %v\n", err)
			return subcommands.ExitUsageError
		}
		s := doc.Find(code)
		if s == nil {
			fmt.Fprintf(stderr, "stock %s not found in %s\n", code, file)
			return subcommands.ExitFailure
		}
		md = renderer.RenderStock(renderer.NewStockDetail(s, growth, target))
	} else {
		md = renderer.RenderReport(renderer.NewReport(doc, growth, target))
	}

	if c.raw {
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// parseRate parses an optional rate, a positive decimal number.
func parseRate(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if !d.IsPositive() {
		return decimal.NullDecimal{}, fmt.Errorf("rate must be positive, got %s", s)
	}
	return decimal.NewNullDecimal(d), nil
}
