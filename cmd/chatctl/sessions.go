package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSessionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Lista as sessões do usuário, mais recentes primeiro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}

			sessions, err := client.ListSessions(cmd.Context(), flags.userID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma sessão.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tTITLE\tUPDATED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.SessionID, s.Title, formatTime(s.LastUpdated))
			}
			return w.Flush()
		},
	}
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sessionId>",
		Short: "Mostra a transcrição de uma sessão",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}

			session, err := client.GetSession(cmd.Context(), flags.userID, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", session.Title)
			for _, m := range session.Messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", formatTime(m.Timestamp), m.Sender, m.Text)
			}
			return nil
		},
	}
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <sessionId>",
		Short: "Remove uma sessão e suas mensagens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}

			if err := client.DeleteSession(cmd.Context(), flags.userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sessão %s removida.\n", args[0])
			return nil
		},
	}
}
