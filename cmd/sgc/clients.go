package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sgcpro/sgc/internal/client"
	"github.com/sgcpro/sgc/internal/locale"
)

var clientsCmd = &cobra.Command{
	Use:     "clients",
	Short:   "Manage clients",
	GroupID: "records",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		status, _ := cmd.Flags().GetString("status")
		seguradora, _ := cmd.Flags().GetString("seguradora")
		ramo, _ := cmd.Flags().GetString("ramo")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := sgcClient.ListClients(cmd.Context(), &client.ListClientsRequest{
			Search:     search,
			Status:     status,
			Seguradora: seguradora,
			Ramo:       ramo,
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
		printClientList(cmd.OutOrStdout(), resp.Clients)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d clients (%d total)\n", len(resp.Clients), resp.Total)
		return nil
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sgcClient.GetClient(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(c)
			return nil
		}
		printClientTable(cmd.OutOrStdout(), c)
		return nil
	},
}

// clientRequestFromFlags sets only the fields whose flags were given.
func clientRequestFromFlags(flags *pflag.FlagSet) *client.ClientRequest {
	req := &client.ClientRequest{}
	for name, dst := range map[string]**string{
		"name":         &req.Name,
		"email":        &req.Email,
		"phone":        &req.Phone,
		"cpf-cnpj":     &req.CPFCNPJ,
		"birth-date":   &req.BirthDate,
		"address":      &req.Address,
		"status":       &req.Status,
		"observations": &req.Observations,
	} {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	return req
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "client name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("cpf-cnpj", "", "CPF or CNPJ")
	cmd.Flags().String("birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().String("address", "", "postal address")
	cmd.Flags().String("status", "", "client status")
	cmd.Flags().String("observations", "", "free-form notes")
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := clientRequestFromFlags(cmd.Flags())
		req.Name = &args[0]
		c, err := sgcClient.CreateClient(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(c)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created client %s (%s)\n", c.ID, c.Name)
		return nil
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sgcClient.UpdateClient(cmd.Context(), args[0], clientRequestFromFlags(cmd.Flags()))
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(c)
			return nil
		}
		printClientTable(cmd.OutOrStdout(), c)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more clients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := sgcClient.DeleteClient(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	},
}

var clientsBirthdaysCmd = &cobra.Command{
	Use:   "birthdays",
	Short: "List clients with a birthday today or in the next 7 days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		clients, err := sgcClient.ClientBirthdays(cmd.Context(), scope)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(clients)
			return nil
		}
		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No birthdays.")
			return nil
		}
		printClientList(cmd.OutOrStdout(), clients)
		return nil
	},
}

var clientsDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find likely duplicate clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := sgcClient.ClientDuplicates(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rep)
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d clients in duplicate groups (high %d, medium %d, low %d)\n",
			rep.Count, rep.HighConfidence, rep.MediumConfidence, rep.LowConfidence)
		for _, g := range rep.Groups {
			fmt.Fprintf(out, "\n[%s]\n", g.Confidence)
			for _, c := range g.Clients {
				fmt.Fprintf(out, "  %s  %s  %s  %s  %s\n", c.ID, c.Name, c.CPFCNPJ, c.Email, locale.Date(c.BirthDate))
			}
		}
		return nil
	},
}

func init() {
	clientsListCmd.Flags().String("search", "", "match name, email, phone or CPF/CNPJ")
	clientsListCmd.Flags().String("status", "", "filter by status")
	clientsListCmd.Flags().String("seguradora", "", "clients with a policy at this insurer")
	clientsListCmd.Flags().String("ramo", "", "clients with a policy of this line")
	clientsListCmd.Flags().Int("limit", 50, "maximum number of clients to return")
	clientsListCmd.Flags().Int("offset", 0, "offset for pagination")

	addClientFlags(clientsCreateCmd)
	addClientFlags(clientsUpdateCmd)

	clientsBirthdaysCmd.Flags().String("scope", "today", "today or week")

	clientsCmd.AddCommand(clientsListCmd, clientsShowCmd, clientsCreateCmd, clientsUpdateCmd,
		clientsDeleteCmd, clientsBirthdaysCmd, clientsDuplicatesCmd)
}
