package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/client"
	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/model"
)

var policiesCmd = &cobra.Command{
	Use:     "policies",
	Short:   "Manage policies and quotes",
	GroupID: "records",
}

func policyRows(items []*client.PolicyItem) []*policyRow {
	rows := make([]*policyRow, len(items))
	for i, it := range items {
		rows[i] = &policyRow{p: &it.Policy, days: it.DaysUntilExpiration}
	}
	return rows
}

var policiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		status, _ := cmd.Flags().GetStringSlice("status")
		seguradora, _ := cmd.Flags().GetStringSlice("seguradora")
		ramo, _ := cmd.Flags().GetStringSlice("ramo")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := sgcClient.ListPolicies(cmd.Context(), &client.ListPoliciesRequest{
			ClientID:   clientID,
			Status:     status,
			Seguradora: seguradora,
			Ramo:       ramo,
			Search:     search,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		printPolicyList(cmd.OutOrStdout(), policyRows(resp.Policies))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d policies (%d total)\n", len(resp.Policies), resp.Total)
		return nil
	},
}

var policiesExpiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List active policies expiring soon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		resp, err := sgcClient.ExpiringPolicies(cmd.Context(), days)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		if len(resp.Policies) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No policies expiring.")
			return nil
		}
		printPolicyList(cmd.OutOrStdout(), policyRows(resp.Policies))
		return nil
	},
}

var policiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sgcClient.GetPolicy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		printPolicyTable(cmd.OutOrStdout(), p)
		return nil
	},
}

var policiesCreateCmd = &cobra.Command{
	Use:   "create <client-id>",
	Short: "Create a policy or quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := &client.PolicyRequest{ClientID: args[0]}
		req.PolicyNumber, _ = f.GetString("number")
		req.CompanyID, _ = f.GetString("insurer")
		req.Type, _ = f.GetString("ramo")
		req.InsuredAsset, _ = f.GetString("asset")
		req.PremiumValue, _ = f.GetFloat64("premium")
		req.CommissionRate, _ = f.GetFloat64("rate")
		req.StartDate, _ = f.GetString("start")
		req.ExpirationDate, _ = f.GetString("expires")
		req.Status, _ = f.GetString("status")
		req.AutomaticRenewal, _ = f.GetBool("auto-renew")
		req.ProducerID, _ = f.GetString("producer")

		p, err := sgcClient.CreatePolicy(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created policy %s (%s)\n", p.ID, p.Status)
		return nil
	},
}

var policiesActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate a policy and generate its commission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sgcClient.ActivatePolicy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Policy %s is %s\n", resp.Policy.ID, resp.Policy.Status)
		if resp.Commission != nil {
			fmt.Fprintf(out, "Commission %s: %s due %s\n",
				resp.Commission.ID, locale.BRL(resp.Commission.Amount), locale.Date(resp.Commission.DueDate))
		}
		return nil
	},
}

var policiesCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sgcClient.CancelPolicy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Policy %s is %s\n", p.ID, p.Status)
		return nil
	},
}

var policiesRenewCmd = &cobra.Command{
	Use:   "renew <id>",
	Short: "Renew a policy for another year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sgcClient.RenewPolicy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		s := resp.Successor
		fmt.Fprintf(cmd.OutOrStdout(), "Renewed %s as %s (%s - %s, %s)\n",
			resp.Policy.ID, s.ID, locale.Date(s.StartDate), locale.Date(s.ExpirationDate), s.Status)
		return nil
	},
}

func init() {
	policiesListCmd.Flags().String("client", "", "filter by client ID")
	policiesListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	policiesListCmd.Flags().StringSlice("seguradora", nil, "filter by insurer (repeatable)")
	policiesListCmd.Flags().StringSlice("ramo", nil, "filter by line (repeatable)")
	policiesListCmd.Flags().String("search", "", "match policy number or insured asset")
	policiesListCmd.Flags().Int("limit", 50, "maximum number of policies to return")
	policiesListCmd.Flags().Int("offset", 0, "offset for pagination")

	policiesExpiringCmd.Flags().Int("days", model.ExpiringWindowDays, "horizon in days")

	policiesCreateCmd.Flags().String("number", "", "policy number")
	policiesCreateCmd.Flags().String("insurer", "", "insurance company ID")
	policiesCreateCmd.Flags().String("ramo", "", "line of insurance")
	policiesCreateCmd.Flags().String("asset", "", "insured asset")
	policiesCreateCmd.Flags().Float64("premium", 0, "premium value")
	policiesCreateCmd.Flags().Float64("rate", 0, "commission rate in percent")
	policiesCreateCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	policiesCreateCmd.Flags().String("expires", "", "expiration date (YYYY-MM-DD)")
	policiesCreateCmd.Flags().String("status", "", "initial status (default quote)")
	policiesCreateCmd.Flags().Bool("auto-renew", false, "renew automatically")
	policiesCreateCmd.Flags().String("producer", "", "producer ID")

	policiesCmd.AddCommand(policiesListCmd, policiesExpiringCmd, policiesShowCmd, policiesCreateCmd,
		policiesActivateCmd, policiesCancelCmd, policiesRenewCmd)
}
