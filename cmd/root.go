package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logbook/config"
	"logbook/database"
	"logbook/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile           string
	dbPath            string
	appLogPathFlag    string
	accessLogPathFlag string
	logLevelFlag      string
)

func expandTildeCmd(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

var rootCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Experiment logbook service",
	Long: `Logbook keeps the operational diary of an experiment: timestamped
log entries with reply threads, tags, data-taking runs and file
attachments, served over a JSON API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile, appLogPathFlag, accessLogPathFlag, logLevelFlag); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		finalDBPath := dbPath
		if finalDBPath == "" {
			finalDBPath = config.AppConfig.Database.Path
		}
		expandedPath, err := expandTildeCmd(finalDBPath)
		if err != nil {
			logger.Error("Error expanding tilde in database path '%s': %v. Using original.", finalDBPath, err)
		} else {
			finalDBPath = expandedPath
		}
		if finalDBPath == "" {
			logger.Error("Database path is empty after checking flag and config. Falling back to 'logbook.db' in CWD.")
			finalDBPath = "logbook.db"
		}

		if err := database.InitDB(finalDBPath); err != nil {
			return fmt.Errorf("failed to initialize database at %s: %w", finalDBPath, err)
		}

		if cmd.Name() != "completion" &&
			cmd.Name() != cobra.ShellCompRequestCmd &&
			cmd.Name() != cobra.ShellCompNoDescRequestCmd {
			logger.Info("Database initialized at: %s", finalDBPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/logbook/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "path to SQLite database file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&accessLogPathFlag, "access-log", "", "path for the API access log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, ERROR (overrides config/default)")
}
