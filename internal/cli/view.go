package cli

import (
	"fmt"

	"github.com/me/seqqc/internal/server"
	"github.com/spf13/cobra"
)

func newViewCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "view DIR",
		Short: "Serve a visualization directory over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Addr
			}
			opts := []server.Option{server.WithRegistry(a.registry)}
			if a.store != nil {
				opts = append(opts, server.WithStore(a.store))
			}
			srv, err := server.New(args[0], a.logger, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Serving %s on %s\n", args[0], addr)
			return srv.Serve(cmd.Context(), addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func newActionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			w := out(cmd)
			for _, act := range a.registry.List() {
				fmt.Fprintf(w, "%-10s  %s\n", act.Name, act.Title)
				fmt.Fprintf(w, "%-10s  %s\n", "", act.Description)
				fmt.Fprintf(w, "%-10s  Cite: %s\n\n", "", act.Citation)
			}
			return nil
		}),
	}
}
