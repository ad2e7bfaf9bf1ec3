package cli

import (
	"context"
	"fmt"

	"github.com/existflow/ironmeet/internal/config"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	useRemote  bool

	// cfg is loaded once per invocation by the root command
	cfg = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "ironmeet",
	Short: "IronMeet - meetings, projects, and task boards in the terminal",
	Long: `IronMeet tracks meetings, the projects discussed in them, and each
project's tasks on a three-column board. It renders meeting reports in
several styles.

Run 'ironmeet' without arguments to open the board of the current meeting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.Err(err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.Err(err))
			}
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("IronMeet started", logger.F("command", cmd.Name()), logger.F("remote", useRemote))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		ctx := context.Background()
		tree, err := b.FetchTree(ctx)
		if err != nil {
			return fmt.Errorf("failed to load meetings: %w", err)
		}
		if len(tree) == 0 {
			fmt.Println("No meetings yet. Create one with: ironmeet meeting new \"Weekly sync\"")
			return nil
		}

		id := GetCurrentMeeting()
		if id == "" {
			id = tree[0].ID
		}
		m, err := findMeeting(tree, id)
		if err != nil {
			m = tree[0]
		}
		return runBoard(ctx, b, m.ID)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("IronMeet exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().BoolVar(&useRemote, "remote", false, "Use the server instead of the local database")

	// Add subcommands
	rootCmd.AddCommand(meetingCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(billingCmd)
}
