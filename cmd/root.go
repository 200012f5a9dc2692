package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"foreman/internal/config"
	"foreman/internal/controller"
	"foreman/internal/kube"
	"foreman/pkg/logging"
)

var (
	cfgFile   string
	namespace string
	debug     bool
)

// rootCmd represents the base command for the foreman application.
var rootCmd = &cobra.Command{
	Use:   "foreman",
	Short: "Run cluster-management CLI workloads as ephemeral batch jobs",
	Long: `foreman schedules long-lived CLI workloads as cluster-native batch
jobs with content-addressed identity, replacement policies for colliding
work, polling-based completion tracking and structured log retrieval.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if debug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/foreman/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "namespace to operate in (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newLogsCmd(),
		newWaitCmd(),
		newVersionCmd(),
	)
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "foreman version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration from file, defaults and
// global flags.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return config.Default(), fmt.Errorf("failed to resolve config directory: %w", err)
		}
		path = filepath.Join(base, "foreman", "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if namespace != "" {
		cfg.Namespace = namespace
	}
	return cfg, nil
}

// newController connects to the cluster and returns a controller scoped to
// the configured namespace.
func newController(cfg config.Config) (*controller.Controller, error) {
	client, err := kube.NewFromEnvironment()
	if err != nil {
		return nil, err
	}
	return controller.New(client, cfg.Namespace), nil
}
