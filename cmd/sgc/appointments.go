package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/client"
	"github.com/sgcpro/sgc/internal/locale"
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"agenda"},
	Short:   "Manage the agenda",
	GroupID: "agenda",
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := &client.ListAppointmentsRequest{}
		req.Status, _ = f.GetStringSlice("status")
		req.DateFrom, _ = f.GetString("from")
		req.DateTo, _ = f.GetString("to")
		req.Limit, _ = f.GetInt("limit")
		req.Offset, _ = f.GetInt("offset")

		resp, err := sgcClient.ListAppointments(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		printAppointmentList(cmd.OutOrStdout(), resp.Appointments)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d appointments (%d total)\n", len(resp.Appointments), resp.Total)
		return nil
	},
}

var appointmentsCreateCmd = &cobra.Command{
	Use:   "create <title> <date>",
	Short: "Create an appointment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := &client.AppointmentRequest{Title: args[0], Date: args[1]}
		req.Time, _ = f.GetString("time")
		req.ClientID, _ = f.GetString("client")
		req.PolicyID, _ = f.GetString("policy")
		req.Notes, _ = f.GetString("notes")
		req.Priority, _ = f.GetString("priority")
		req.RecurrenceRule, _ = f.GetString("rrule")

		a, err := sgcClient.CreateAppointment(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(a)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created appointment %s on %s\n", a.ID, locale.Date(a.Date))
		return nil
	},
}

var appointmentsCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark an appointment done, scheduling the next one if it recurs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, _ := cmd.Flags().GetString("rrule")
		resp, err := sgcClient.CompleteAppointment(cmd.Context(), args[0], rule)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Appointment %s is %s\n", resp.Appointment.ID, resp.Appointment.Status)
		if resp.Next != nil {
			fmt.Fprintf(out, "Next occurrence %s on %s\n", resp.Next.ID, locale.Date(resp.Next.Date))
		}
		return nil
	},
}

var appointmentsOccurrencesCmd = &cobra.Command{
	Use:   "occurrences <id>",
	Short: "Preview the next occurrences of a recurring appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		times, err := sgcClient.Occurrences(cmd.Context(), args[0], n)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(times)
			return nil
		}
		for _, t := range times {
			fmt.Fprintln(cmd.OutOrStdout(), t.Format("02/01/2006 15:04"))
		}
		return nil
	},
}

var appointmentsCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export pending appointments as iCalendar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("output")
		if path == "" || path == "-" {
			return sgcClient.Calendar(cmd.Context(), cmd.OutOrStdout())
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := sgcClient.Calendar(cmd.Context(), f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	appointmentsListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	appointmentsListCmd.Flags().String("from", "", "first date (YYYY-MM-DD)")
	appointmentsListCmd.Flags().String("to", "", "last date (YYYY-MM-DD)")
	appointmentsListCmd.Flags().Int("limit", 50, "maximum number of appointments to return")
	appointmentsListCmd.Flags().Int("offset", 0, "offset for pagination")

	appointmentsCreateCmd.Flags().String("time", "", "time of day (HH:MM)")
	appointmentsCreateCmd.Flags().String("client", "", "client ID")
	appointmentsCreateCmd.Flags().String("policy", "", "policy ID")
	appointmentsCreateCmd.Flags().String("notes", "", "notes")
	appointmentsCreateCmd.Flags().String("priority", "", "priority")
	appointmentsCreateCmd.Flags().String("rrule", "", "RFC 5545 recurrence rule, e.g. FREQ=WEEKLY")

	appointmentsCompleteCmd.Flags().String("rrule", "", "recurrence rule overriding the stored one")

	appointmentsOccurrencesCmd.Flags().IntP("count", "n", 5, "number of occurrences")

	appointmentsCalendarCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	appointmentsCmd.AddCommand(appointmentsListCmd, appointmentsCreateCmd, appointmentsCompleteCmd,
		appointmentsOccurrencesCmd, appointmentsCalendarCmd)
}
