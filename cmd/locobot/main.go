package main

import (
	"fmt"
	"os"

	"locobot/internal/config"
	"locobot/internal/logging"
	"locobot/internal/prompt"
	"locobot/internal/quota"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	apiKey    string
	workspace string
	modeFlag  string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "locobot",
	Short: "LOCOBOT - AI app architect CLI",
	Long: `LOCOBOT is a conversational app generator. Describe the application you
want and it produces a complete, self-contained HTML artifact, iterating on
the previous build with every follow-up message.

It supports a plan mode (architecture blueprint, no code), five creator
modes with distinct personas, a daily generation quota, and automatic
fallback to a lighter model on provider capacity errors.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Categorized file logging runs for every command, the TUI included.
		if err := logging.Initialize(workspace); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
		}
		logging.Boot("locobot starting: command=%s workspace=%s", cmd.CalledAs(), workspace)

		// Skip the console logger for interactive mode (it has its own UI)
		if cmd.Use == "locobot" && cmd.CalledAs() == "locobot" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	},
}

// modesCmd lists the available creator modes
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the available creator modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, m := range prompt.AllModes() {
			cfg := prompt.ConfigFor(m)
			fmt.Printf("%-20s %-22s %s\n", m, cfg.Label, cfg.Description)
		}
		return nil
	},
}

// quotaCmd reports the remaining daily generation budget
var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show remaining daily generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(workspace)
		if err != nil {
			return err
		}

		store, err := quota.OpenSQLiteStore(quotaDBPath(workspace))
		if err != nil {
			return fmt.Errorf("failed to open quota store: %w", err)
		}
		defer store.Close()

		gate := quota.NewGate(store, cfg.Quota.DailyLimit, nil)
		remaining, err := gate.Remaining()
		if err != nil {
			return err
		}
		fmt.Printf("Daily quota: %d/%d generations remaining\n", remaining, cfg.Quota.DailyLimit)
		return nil
	},
}

// statusCmd shows the workspace session state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status for this workspace",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides env and config)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory")

	runCmd.Flags().BoolVar(&planFlag, "plan", false, "Request an architecture plan instead of code")
	runCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Creator mode (see 'locobot modes')")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the generated artifact to this file")

	deployCmd.Flags().Float64Var(&deploySpeed, "speed", 1.0, "Playback speed multiplier")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deployCmd)
}

func main() {
	// A .env in the workspace is the simplest way to carry the API key.
	_ = godotenv.Load()

	defer logging.CloseAll()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
