package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/me/seqqc/pkg/model"
	"github.com/spf13/cobra"
)

// errNoHistory is returned by history when no database is configured.
var errNoHistory = errors.New("no history database configured (use --history-db or history_db in the config file)")

func newHistoryCmd(a *app) *cobra.Command {
	opts := model.DefaultListOptions()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded external command invocations",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return errNoHistory
			}
			invs, total, err := a.store.ListInvocations(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			w := out(cmd)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(invs)
			}

			if len(invs) == 0 {
				fmt.Fprintln(w, "No invocations recorded.")
				return nil
			}
			fmt.Fprintf(w, "%-40s  %-10s  %-5s  %-20s  %-8s  %s\n", "ID", "ACTION", "EXIT", "STARTED", "DURATION", "COMMAND")
			fmt.Fprintf(w, "%-40s  %-10s  %-5s  %-20s  %-8s  %s\n", "----", "------", "----", "-------", "--------", "-------")
			for _, inv := range invs {
				fmt.Fprintf(w, "%-40s  %-10s  %-5d  %-20s  %-8s  %s\n",
					inv.ID, inv.Action, inv.ExitCode,
					inv.StartedAt.Local().Format("2006-01-02 15:04:05"),
					inv.Duration().Round(time.Millisecond), inv.CommandLine())
			}
			if opts.Offset+len(invs) < total {
				fmt.Fprintf(w, "\n(%d of %d shown)\n", len(invs), total)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", opts.Limit, "Maximum number of invocations to show")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of newest invocations to skip")
	cmd.Flags().StringVar(&opts.Action, "action", "", "Only show invocations of this action")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
