// Package main provides a command-line client that prints the same JSON
// payloads as the HTTP API without starting a server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/portfolio-tracker/internal/api"
	"github.com/portfolio-tracker/internal/app"
	"github.com/portfolio-tracker/internal/config"
	apperrors "github.com/portfolio-tracker/internal/errors"
	"github.com/portfolio-tracker/internal/logging"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)

		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "portfolio",
		Usage: "query multi-chain wallet portfolios",
		// exit codes are applied in main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "overall deadline for one command",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent JSON output",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "error",
				Usage:   "log level written to stderr",
				EnvVars: []string{"PORTFOLIO_CLI_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print the portfolio of an address",
				ArgsUsage: "<address>",
				Action: withApp(out, func(ctx context.Context, a *app.App, c *cli.Context) (interface{}, error) {
					portfolio, err := a.Portfolio.BuildPortfolio(ctx, c.Args().First())
					if err != nil {
						return nil, err
					}
					return api.NewPortfolioResponse(portfolio), nil
				}),
			},
			{
				Name:      "transactions",
				Usage:     "print the recent transactions of an address",
				ArgsUsage: "<address>",
				Action: withApp(out, func(ctx context.Context, a *app.App, c *cli.Context) (interface{}, error) {
					return api.NewTransactionsResponse(a.Transactions.FetchTransactions(ctx, c.Args().First())), nil
				}),
			},
			{
				Name:  "chains",
				Usage: "print the enabled chains and their RPC provider health",
				Action: withApp(out, func(_ context.Context, a *app.App, _ *cli.Context) (interface{}, error) {
					return api.ChainsResponse{Chains: a.Portfolio.ChainStatuses()}, nil
				}),
			},
		},
	}
}

type commandFunc func(ctx context.Context, a *app.App, c *cli.Context) (interface{}, error)

// withApp loads configuration, wires the services, runs fn and prints its result as JSON
func withApp(out io.Writer, fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Command.ArgsUsage != "" && c.NArg() != 1 {
			return cli.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to load configuration: %v", err), 1)
		}

		logger := logging.NewLogger(logging.ParseLogLevel(c.String("log-level")), logging.ParseLogFormat(cfg.Logging.Format))
		logger.SetOutput(os.Stderr)

		a, err := app.New(cfg, logger)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer func() { _ = a.Close() }()

		ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
		defer cancel()
		ctx = logging.WithLogger(ctx, logger)

		result, err := fn(ctx, a, c)
		if err != nil {
			catErr := apperrors.Categorize(err)
			return cli.Exit(fmt.Sprintf("%s: %s", catErr.Code, catErr.Message), 1)
		}

		enc := json.NewEncoder(out)
		if c.Bool("pretty") {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	}
}
