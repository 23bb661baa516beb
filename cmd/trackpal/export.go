package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trackpal/internal/export"
	"trackpal/internal/model"
	"trackpal/internal/service"
)

func exportCmd(configPath *string) *cobra.Command {
	var (
		userID   uint
		format   string
		month    string
		category string
		source   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a profile's transactions as CSV or PDF",
		Long: `Export transactions to a file.

Examples:
  trackpal export --user 1
  trackpal export --user 1 --format pdf --month 2025-03 --out march.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			txs, err := a.finance.ListTransactions(cmd.Context(), userID, service.TransactionQuery{
				Month:    month,
				Category: model.TransactionCategory(category),
				Source:   source,
			})
			if err != nil {
				return err
			}

			now := time.Now().In(a.cfg.Location)
			if out == "" {
				out = f.FileName(now)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.Write(file, f, txs, now); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d transaction(s) to %s\n", len(txs), out)
			return nil
		},
	}
	cmd.Flags().UintVarP(&userID, "user", "u", 0, "profile id")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or pdf")
	cmd.Flags().StringVar(&month, "month", "", "only transactions of this month (YYYY-MM)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&source, "source", "", "only this source")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the download name)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
