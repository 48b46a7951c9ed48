package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:     "jobs",
	Short:   "Run batch jobs on the server (service token required)",
	GroupID: "system",
}

var jobsConsolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate the daily metrics of every active broker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		res, err := sgcClient.Consolidate(cmd.Context(), date)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(res)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Consolidated %d metrics for %s\n", res.Consolidated, res.Date)
		return nil
	},
}

var jobsSheetsCmd = &cobra.Command{
	Use:   "sheets-sync",
	Short: "Push pending daily metrics to Google Sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		res, err := sgcClient.SyncSheets(cmd.Context(), date)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(res)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d, %d errors (%dms)\n", res.Synced, res.Errors, res.ExecutionTimeMS)
		if res.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		}
		return nil
	},
}

var jobsBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate missing commissions of active policies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := sgcClient.BackfillCommissions(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rep)
			return nil
		}
		s := rep.Summary
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%d policies: %d created, %d skipped, %d errors\n",
			rep.Message, s.Total, s.Success, s.Skipped, s.Errors)
		return nil
	},
}

var jobsBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run a JSONL backup now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sgcClient.Backup(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Backup written")
		return nil
	},
}

func init() {
	jobsConsolidateCmd.Flags().String("date", "", "day to consolidate (YYYY-MM-DD, default yesterday)")
	jobsSheetsCmd.Flags().String("date", "", "day to sync (YYYY-MM-DD, default yesterday)")

	jobsCmd.AddCommand(jobsConsolidateCmd, jobsSheetsCmd, jobsBackfillCmd, jobsBackupCmd)
}
