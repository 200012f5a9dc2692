package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	sigsyaml "sigs.k8s.io/yaml"

	"foreman/internal/config"
	"foreman/internal/job"
	"foreman/internal/session"
	"foreman/pkg/logging"
)

type runFlags struct {
	account        string
	region         string
	org            string
	image          string
	serviceAccount string
	binary         string
	dryRun         bool
	render         bool
	logDir         string
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <command> [command...]",
		Short: "Submit CLI commands as batch jobs and wait for completion",
		Long: `Submit one or more cluster-management CLI commands as batch jobs,
wait for them and print their logs. Each command runs through its own
session and controller; several commands run concurrently.

The access token is read from the environment variable named by the
session.tokenEnv config key.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applySessionDefaults(&cfg.Session, flags)

			if flags.render {
				return renderCommands(cmd, cfg, flags, args)
			}
			return runCommands(cmd, cfg, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.account, "account", "", "target account identifier")
	cmd.Flags().StringVar(&flags.region, "region", "", "target region")
	cmd.Flags().StringVar(&flags.org, "org", "", "organization identifier for the CLI login")
	cmd.Flags().StringVar(&flags.image, "image", "", "CLI container image")
	cmd.Flags().StringVar(&flags.serviceAccount, "service-account", "", "service account for the job pods")
	cmd.Flags().StringVar(&flags.binary, "binary", "", "CLI binary name inside the image")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "append the CLI dry-run flag to every command")
	cmd.Flags().BoolVar(&flags.render, "render", false, "print the job manifests instead of submitting")
	cmd.Flags().StringVar(&flags.logDir, "log-dir", "", "directory for retrieved job logs")

	return cmd
}

// applySessionDefaults layers command flags over the configured session
// defaults.
func applySessionDefaults(sc *config.SessionConfig, flags *runFlags) {
	if flags.account == "" {
		flags.account = sc.AccountID
	}
	if flags.region == "" {
		flags.region = sc.Region
	}
	if flags.org == "" {
		flags.org = sc.OrgID
	}
	if flags.image == "" {
		flags.image = sc.Image
	}
	if flags.serviceAccount == "" {
		flags.serviceAccount = sc.ServiceAccount
	}
	if flags.binary == "" {
		flags.binary = sc.Binary
	}
}

func sessionOpts(cfg config.Config, flags *runFlags) session.Opts {
	return session.Opts{
		AccountID:      flags.account,
		Region:         flags.region,
		OrgID:          flags.org,
		Image:          flags.image,
		ServiceAccount: flags.serviceAccount,
		Binary:         flags.binary,
		DryRun:         flags.dryRun,
		LogDir:         flags.logDir,
		CheckInterval:  cfg.CheckInterval(),
		Timeout:        cfg.Timeout(),
	}
}

// renderCommands prints the job manifest of every command without touching
// the cluster. The companion secret is never rendered.
func renderCommands(cmd *cobra.Command, cfg config.Config, flags *runFlags, commands []string) error {
	// Rendering needs no credentials; the token stays out of the manifest.
	s, err := session.New(cmd.Context(), nil, session.StaticCredentials(""), sessionOpts(cfg, flags))
	if err != nil {
		return err
	}

	for i, command := range commands {
		built, err := job.Build(s.Definition(command))
		if err != nil {
			return err
		}
		built.Namespace = cfg.Namespace

		manifest, err := sigsyaml.Marshal(built)
		if err != nil {
			return fmt.Errorf("failed to render job manifest: %w", err)
		}
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "---")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(manifest))
	}
	return nil
}

// runCommands submits every command through its own session and controller,
// concurrently, and reports per-command outcomes.
func runCommands(cmd *cobra.Command, cfg config.Config, flags *runFlags, commands []string) error {
	token := os.Getenv(cfg.Session.TokenEnv)
	if token == "" {
		return fmt.Errorf("no access token in $%s", cfg.Session.TokenEnv)
	}

	ctx := cmd.Context()
	group, ctx := errgroup.WithContext(ctx)

	for _, command := range commands {
		group.Go(func() error {
			// One controller per goroutine; controllers are not safe for
			// concurrent use.
			ctrl, err := newController(cfg)
			if err != nil {
				return err
			}

			s, err := session.New(ctx, ctrl, session.StaticCredentials(token), sessionOpts(cfg, flags))
			if err != nil {
				return err
			}

			result, err := s.Run(ctx, command)
			if err != nil {
				// The log file behind a failed command stays on disk; the
				// error message names only an excerpt.
				return err
			}
			defer result.Logs.Cleanup()

			logging.Info("CLI", "command %q succeeded", command)
			return result.Logs.WriteToSink(func(content string) {
				fmt.Fprint(cmd.OutOrStdout(), content)
			})
		})
	}

	return group.Wait()
}
