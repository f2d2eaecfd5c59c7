package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/reverse-mortgage/internal/cache"
	"github.com/iwvelando/reverse-mortgage/internal/console"
	"github.com/iwvelando/reverse-mortgage/internal/quote"
	"github.com/iwvelando/reverse-mortgage/internal/server"
	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"github.com/iwvelando/reverse-mortgage/pkg/output"
	"github.com/iwvelando/reverse-mortgage/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func calculateCmd(a *app) *cobra.Command {
	var in mortgage.Inputs

	c := &cobra.Command{
		Use:   "calculate",
		Short: "Compute the monthly payment for one set of inputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			payment, err := mortgage.Calculate(in)
			if err != nil {
				a.logger.Debug("calculation rejected",
					zap.String("op", "main.calculate"),
					zap.String("kind", mortgage.KindName(err)),
				)
				fmt.Fprintf(out, "Error: %s\n", err)
				fmt.Fprintln(out, "Please correct the error and try again.")
				return err
			}

			fmt.Fprintln(out, output.PaymentLine(payment))
			return nil
		},
	}

	c.Flags().Float64Var(&in.PropertyValue, "property-value", 0, "appraised value of the property")
	c.Flags().StringVar(&in.PropertyCondition, "condition", "", "property condition: excellent, good, average")
	c.Flags().StringVar(&in.MaritalStatus, "marital-status", "", "marital status: married, single, divorced")
	c.Flags().IntVar(&in.OwnerAge, "owner-age", 0, "age of the owner")
	c.Flags().IntVar(&in.SpouseAge, "spouse-age", 0, "age of the spouse")
	c.Flags().Float64Var(&in.InterestRate, "interest-rate", 0, "annual interest rate as a fraction (0.05 for 5%)")

	for _, name := range []string{"property-value", "condition", "marital-status", "owner-age", "spouse-age", "interest-rate"} {
		_ = c.MarkFlagRequired(name)
	}
	return c
}

func interactiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for each input and print the monthly payment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return console.NewSession(a.logger, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
		},
	}
}

func batchCmd(a *app) *cobra.Command {
	var outputFormat string

	c := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate every active scenario in the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI override takes precedence over config
			format := a.conf.Output.Format
			if outputFormat != "" {
				format = outputFormat
			}
			if format == "" {
				format = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			results, err := quote.GetQuotes(a.logger, *a.conf)
			if err != nil {
				a.logger.Error("failed to compute quotes",
					zap.String("op", "main.batch"),
					zap.Error(err),
				)
				return err
			}

			if failed := quote.Failed(results); failed > 0 {
				a.logger.Warn(fmt.Sprintf("%d of %d scenarios failed validation", failed, len(results)),
					zap.String("op", "main.batch"),
				)
			}

			out := cmd.OutOrStdout()
			switch format {
			case constants.OutputFormatPretty:
				output.PrettyFormat(out, results)
			case constants.OutputFormatCSV:
				return output.CsvFormat(out, results)
			case constants.OutputFormatJSON:
				return output.JSONFormat(out, results)
			}
			return nil
		},
	}

	c.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	return c
}

func serveCmd(a *app) *cobra.Command {
	var address string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payment calculator over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := server.OptionsFromConfig(a.conf.Server, version)
			if err != nil {
				return err
			}
			if address != "" {
				opts.Address = address
			}

			if err := validation.ValidateCacheBackend(a.conf.Cache.Backend); err != nil {
				return err
			}
			store, err := cache.New(a.logger, a.conf.Cache)
			if err != nil {
				return err
			}
			if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
				if err := pinger.Ping(cmd.Context()); err != nil {
					a.logger.Warn("cache is unreachable, requests will be computed directly",
						zap.String("op", "main.serve"),
						zap.Error(err),
					)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.logger, store, opts)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("server stopped",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}

	c.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	return c
}
