package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/cli"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect committed transactions",
	}

	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			transactions, err := store.ListTransactions(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Description"),
				cli.HeaderStyle.Render("Tags"))

			for _, txn := range transactions {
				category := txn.Category
				if txn.Subcategory != "" {
					category += " / " + txn.Subcategory
				}
				description := txn.Description
				if txn.IsRecurring {
					description = strings.TrimSpace(cli.RepeatIcon + " " + description)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					txn.Date, txn.Type, txn.Amount, category, description, strings.Join(txn.Tags, ","))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of transactions to show (0 for all)")

	return cmd
}
