package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		follow bool
		store  string
	)

	cmd := &cobra.Command{
		Use:   "logs <job-name>",
		Short: "Print the logs of a managed job",
		Long: `Print the pod logs of the named job. With --follow the stream stays
open until the pod finishes. With --store the logs are written to a file in
the given directory instead of stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctrl, err := newController(cfg)
			if err != nil {
				return err
			}

			name := args[0]
			if store != "" {
				handle, err := ctrl.StoreJobLogs(cmd.Context(), name, store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logs written to %s\n", handle.Path())
				return nil
			}

			return ctrl.StreamJobLogs(cmd.Context(), name, follow, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow the log stream")
	cmd.Flags().StringVar(&store, "store", "", "write logs to a file in this directory")

	return cmd
}
