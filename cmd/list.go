package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"foreman/internal/controller"
	"foreman/internal/job"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List managed jobs and their statuses",
		Long: `List the batch jobs in the configured namespace together with the
status derived from their resources.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctrl, err := newController(cfg)
			if err != nil {
				return err
			}
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}

			jobs := ctrl.CachedJobs()
			if len(jobs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No jobs found in namespace %s\n", ctrl.Namespace())
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"NAME", "STATUS", "GENERATION", "AGE"})

			for _, j := range jobs {
				t.AppendRow(table.Row{
					j.Name,
					colorStatus(ctrl.JobStatusFor(j.Name)),
					j.Annotations[job.GenerationAnnotation],
					formatAge(j.CreationTimestamp.Time),
				})
			}

			t.Render()
			return nil
		},
	}
}

func colorStatus(status controller.JobStatus) string {
	switch status {
	case controller.StatusSuccess:
		return text.FgGreen.Sprint(status)
	case controller.StatusError:
		return text.FgRed.Sprint(status)
	case controller.StatusInProgress:
		return text.FgYellow.Sprint(status)
	default:
		return string(status)
	}
}

func formatAge(created time.Time) string {
	if created.IsZero() {
		return "-"
	}
	return time.Since(created).Round(time.Second).String()
}
