package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"foreman/internal/controller"
)

func newWaitCmd() *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait <job-name> [job-name...]",
		Short: "Wait for jobs to reach a terminal status",
		Long: `Poll the named jobs until all of them reach a terminal status or the
timeout expires, then print their last known statuses. The exit code is
nonzero unless every job succeeded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctrl, err := newController(cfg)
			if err != nil {
				return err
			}

			if interval <= 0 {
				interval = cfg.CheckInterval()
			}
			if timeout <= 0 {
				timeout = cfg.Timeout()
			}

			statuses, err := ctrl.WaitForJobListCompletion(cmd.Context(), args, interval, timeout)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(statuses))
			for name := range statuses {
				names = append(names, name)
			}
			sort.Strings(names)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"NAME", "STATUS"})

			allSucceeded := true
			for _, name := range names {
				status := statuses[name]
				if status != controller.StatusSuccess {
					allSucceeded = false
				}
				t.AppendRow(table.Row{name, colorStatus(status)})
			}
			t.Render()

			if !allSucceeded {
				return fmt.Errorf("not all jobs succeeded")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default: from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall wait timeout (default: from config)")

	return cmd
}
