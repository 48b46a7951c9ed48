package main

import (
	"cmp"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/client"
)

var (
	serverURL  string
	token      string
	user       string
	jsonOutput bool

	sgcClient client.SGCClient
)

// connDefaults resolves the defaults of the connection flags: SGC_URL,
// SGC_TOKEN and SGC_USER win over the active remote.
func connDefaults() (url, tok, usr string) {
	var r Remote
	if rf, err := readRemotes(); err == nil && rf.Active != "" {
		r = rf.Remotes[rf.Active]
	}
	return cmp.Or(os.Getenv("SGC_URL"), r.URL, "http://localhost:8080"),
		cmp.Or(os.Getenv("SGC_TOKEN"), r.Token),
		cmp.Or(os.Getenv("SGC_USER"), r.User)
}

var rootCmd = &cobra.Command{
	Use:   "sgc <command>",
	Short: "CLI client for the SGC brokerage service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		sgcClient = client.NewHTTPClient(serverURL, client.WithToken(token), client.WithUser(user))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if sgcClient != nil {
			sgcClient.Close()
		}
	},
}

func init() {
	url, tok, usr := connDefaults()
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", url, "server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", tok, "service token or user JWT")
	rootCmd.PersistentFlags().StringVar(&user, "user", usr, "acting user for service-token requests")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "finance", Title: "Finance:"},
		&cobra.Group{ID: "agenda", Title: "Agenda:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Records
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(claimsCmd)
	rootCmd.AddCommand(eventsCmd)

	// Finance
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(reportCmd)

	// Agenda
	rootCmd.AddCommand(appointmentsCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
