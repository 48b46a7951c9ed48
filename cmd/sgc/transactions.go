package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/client"
	"github.com/sgcpro/sgc/internal/locale"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List transactions and record payments",
	GroupID: "finance",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := &client.ListTransactionsRequest{}
		req.PolicyID, _ = f.GetString("policy")
		req.ClientID, _ = f.GetString("client")
		req.Status, _ = f.GetStringSlice("status")
		req.Nature, _ = f.GetString("nature")
		req.DateFrom, _ = f.GetString("from")
		req.DateTo, _ = f.GetString("to")
		req.Limit, _ = f.GetInt("limit")
		req.Offset, _ = f.GetInt("offset")

		resp, err := sgcClient.ListTransactions(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		rows := make([]*transactionRow, len(resp.Transactions))
		for i, t := range resp.Transactions {
			rows[i] = &transactionRow{t: &t.Transaction, title: t.DisplayTitle}
		}
		printTransactionList(cmd.OutOrStdout(), rows)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d transactions (%d total)\n", len(rows), resp.Total)
		return nil
	},
}

var transactionsPayCmd = &cobra.Command{
	Use:   "pay <transaction-id> <amount>",
	Short: "Record a payment against a transaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(strings.Replace(args[1], ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		desc, _ := cmd.Flags().GetString("description")
		date, _ := cmd.Flags().GetString("date")

		resp, err := sgcClient.CreatePayment(cmd.Context(), args[0], &client.PaymentRequest{
			Amount:      amount,
			Description: desc,
			PaymentDate: date,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		t := resp.Transaction
		fmt.Fprintf(cmd.OutOrStdout(), "Paid %s; %s of %s settled (%s)\n",
			locale.BRL(resp.Payment.Amount), locale.BRL(t.PaidAmount), locale.BRL(t.Amount), t.Status)
		return nil
	},
}

func init() {
	transactionsListCmd.Flags().String("policy", "", "filter by policy ID")
	transactionsListCmd.Flags().String("client", "", "filter by client ID")
	transactionsListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	transactionsListCmd.Flags().String("nature", "", "RECEITA or DESPESA")
	transactionsListCmd.Flags().String("from", "", "first date (YYYY-MM-DD)")
	transactionsListCmd.Flags().String("to", "", "last date (YYYY-MM-DD)")
	transactionsListCmd.Flags().Int("limit", 50, "maximum number of transactions to return")
	transactionsListCmd.Flags().Int("offset", 0, "offset for pagination")

	transactionsPayCmd.Flags().String("description", "", "payment description")
	transactionsPayCmd.Flags().String("date", "", "payment date (YYYY-MM-DD, default today)")

	transactionsCmd.AddCommand(transactionsListCmd, transactionsPayCmd)
}
