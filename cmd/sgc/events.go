package main

import (
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events <entity-id>",
	Short:   "Show the event history of a record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evs, err := sgcClient.GetEvents(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(evs)
			return nil
		}
		printEventList(cmd.OutOrStdout(), evs)
		return nil
	},
}
