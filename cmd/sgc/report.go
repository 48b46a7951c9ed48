package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/client"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Export reports",
	GroupID: "finance",
}

var reportPoliciesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Export the policy report as json, csv or pdf",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := &client.PolicyReportRequest{}
		req.From, _ = f.GetString("from")
		req.To, _ = f.GetString("to")
		req.Seguradoras, _ = f.GetStringSlice("seguradora")
		req.Ramos, _ = f.GetStringSlice("ramo")
		req.Produtores, _ = f.GetStringSlice("produtor")
		req.Status, _ = f.GetStringSlice("status")
		req.Format, _ = f.GetString("format")
		path, _ := f.GetString("output")

		switch req.Format {
		case "json", "csv", "pdf":
		default:
			return fmt.Errorf("unknown format %q (want json, csv or pdf)", req.Format)
		}
		if req.Format == "pdf" && path == "" {
			return fmt.Errorf("pdf reports need --output")
		}

		if path == "" || path == "-" {
			return sgcClient.PolicyReport(cmd.Context(), req, cmd.OutOrStdout())
		}
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := sgcClient.PolicyReport(cmd.Context(), req, out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	reportPoliciesCmd.Flags().String("from", "", "first start date (YYYY-MM-DD)")
	reportPoliciesCmd.Flags().String("to", "", "last start date (YYYY-MM-DD)")
	reportPoliciesCmd.Flags().StringSlice("seguradora", nil, "filter by insurer (repeatable)")
	reportPoliciesCmd.Flags().StringSlice("ramo", nil, "filter by line (repeatable)")
	reportPoliciesCmd.Flags().StringSlice("produtor", nil, "filter by producer (repeatable)")
	reportPoliciesCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	reportPoliciesCmd.Flags().String("format", "csv", "json, csv or pdf")
	reportPoliciesCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	reportCmd.AddCommand(reportPoliciesCmd)
}
