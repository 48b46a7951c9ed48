package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var claimsCmd = &cobra.Command{
	Use:     "claims",
	Short:   "Track claims (sinistros)",
	GroupID: "records",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		resp, err := sgcClient.ListClaims(cmd.Context(), status)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		printClaimList(cmd.OutOrStdout(), resp.Claims)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d claims (%d total)\n", len(resp.Claims), resp.Total)
		return nil
	},
}

var claimsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a claim to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sgcClient.SetClaimStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(c)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Claim %s is %s\n", c.ID, c.Status)
		return nil
	},
}

func init() {
	claimsListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	claimsCmd.AddCommand(claimsListCmd, claimsStatusCmd)
}
