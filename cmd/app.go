// Package cmd implements the stockctl command line application to maintain a
// stocks file.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/stocks"
	"github.com/etnz/stocks/config"
	"github.com/etnz/stocks/eastmoney"
	"github.com/etnz/stocks/logger"
	"github.com/etnz/stocks/remote"
	"github.com/etnz/stocks/sina"
	"github.com/etnz/stocks/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// DefaultCommand runs when no command is given on the command line.
const DefaultCommand = "update"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&updateCmd{}, "stocks")
	c.Register(&reportCmd{}, "stocks")
	c.Register(&topicCmd{}, "help")
}

// DefaultArgs returns the command line arguments to execute: args unchanged
// if they start with a command name, DefaultCommand followed by args
// otherwise. So "stockctl data.json" is "stockctl update data.json".
func DefaultArgs(c *subcommands.Commander, args []string) []string {
	if len(args) > 0 && isCommand(c, args[0]) {
		return args
	}
	return append([]string{DefaultCommand}, args...)
}

func isCommand(c *subcommands.Commander, name string) (found bool) {
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}

// loadConfig loads the configuration from the environment and the .env file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Out: stderr})
}

// newProviders returns the market data providers configured in cfg. They share
// the same http client.
func newProviders(cfg *config.Config, log zerolog.Logger) (stocks.QuoteProvider, stocks.StatementProvider) {
	client := remote.NewClient(remote.Options{
		Timeout: cfg.HTTPTimeout,
		Cache:   cfg.HTTPCache,
		Logger:  log,
	})
	statements := sina.New(cfg.SinaBaseURL, client, log)
	if cfg.QuoteProvider == config.Yahoo {
		return yahoo.New(log), statements
	}
	return eastmoney.New(cfg.EastmoneyBaseURL, client, log), statements
}

// stocksFile returns the file argument of a command, or the configured default.
func stocksFile(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.StocksFile
}

// parseCodes parses a comma separated list of codes.
func parseCodes(list string) ([]stocks.Code, error) {
	var codes []stocks.Code
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		c, err := stocks.ParseCode(s)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// printMarkdown renders md for the terminal. The markdown is printed as is if
// it cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
