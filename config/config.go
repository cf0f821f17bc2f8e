package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logbook/logger"

	"github.com/spf13/viper"
)

type DefaultPaths struct {
	ConfigDir      string
	LogPathApp     string
	LogPathAccess  string
	DBPath         string
	AttachmentsDir string
	LogLevel       string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port      string `mapstructure:"port"`
		StaticDir string `mapstructure:"static_dir"`
		LogPath   string `mapstructure:"log_path"`
	} `mapstructure:"server"`
	Attachments struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"attachments"`
	Logging struct {
		Level      string `mapstructure:"level"`
		AccessPath string `mapstructure:"access_path"`
	} `mapstructure:"logging"`
	RunImport struct {
		// GJSON paths into the control system's run export. The export
		// format is not ours to pin down, so every field is remappable.
		RunsArrayPath      string `mapstructure:"runs_array_path"`
		RunNumberField     string `mapstructure:"run_number_field"`
		QualityField       string `mapstructure:"quality_field"`
		TypeField          string `mapstructure:"type_field"`
		DetectorsField     string `mapstructure:"detectors_field"`
		EpnsField          string `mapstructure:"epns_field"`
		FlpsField          string `mapstructure:"flps_field"`
		SubtimeframesField string `mapstructure:"subtimeframes_field"`
		BytesReadOutField  string `mapstructure:"bytes_read_out_field"`
		TimeO2StartField   string `mapstructure:"time_o2_start_field"`
		TimeO2EndField     string `mapstructure:"time_o2_end_field"`
		TimeTrgStartField  string `mapstructure:"time_trg_start_field"`
		TimeTrgEndField    string `mapstructure:"time_trg_end_field"`
	} `mapstructure:"run_import"`
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDirBase, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDirBase = "."
	}

	userConfigDir, err := expandTilde(userConfigDirBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in user config dir '%s': %v. Using potentially literal path.\n", userConfigDirBase, err)
		userConfigDir = userConfigDirBase
	}

	paths.ConfigDir = filepath.Join(userConfigDir, "logbook")
	logDir := filepath.Join(paths.ConfigDir, "logs")

	paths.LogPathApp = filepath.Join(logDir, "app.log")
	paths.LogPathAccess = filepath.Join(logDir, "access.log")
	paths.DBPath = filepath.Join(paths.ConfigDir, "logbook.db")
	paths.AttachmentsDir = filepath.Join(paths.ConfigDir, "attachments")
	paths.LogLevel = "INFO"
	return paths
}

func Init(cfgFile string, flagAppLogPath, flagAccessLogPath, flagLogLevel string) error {
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("attachments.dir", defaults.AttachmentsDir)
	v.SetDefault("logging.level", defaults.LogLevel)
	v.SetDefault("logging.access_path", defaults.LogPathAccess)
	v.SetDefault("run_import.runs_array_path", "runs")
	v.SetDefault("run_import.run_number_field", "runNumber")
	v.SetDefault("run_import.quality_field", "runQuality")
	v.SetDefault("run_import.type_field", "runType")
	v.SetDefault("run_import.detectors_field", "nDetectors")
	v.SetDefault("run_import.epns_field", "nEpns")
	v.SetDefault("run_import.flps_field", "nFlps")
	v.SetDefault("run_import.subtimeframes_field", "nSubtimeframes")
	v.SetDefault("run_import.bytes_read_out_field", "bytesReadOut")
	v.SetDefault("run_import.time_o2_start_field", "timeO2Start")
	v.SetDefault("run_import.time_o2_end_field", "timeO2End")
	v.SetDefault("run_import.time_trg_start_field", "timeTrgStart")
	v.SetDefault("run_import.time_trg_end_field", "timeTrgEnd")

	if cfgFile != "" {
		expandedCfgFile, err := expandTilde(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in config file path '%s': %v. Trying original path.\n", cfgFile, err)
			expandedCfgFile = cfgFile
		}
		v.SetConfigFile(expandedCfgFile)
		v.SetConfigType("yaml")
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LOGBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configUsedMsg := "Using default/environment configuration."
	readErr := v.ReadInConfig()
	if readErr == nil {
		configUsedMsg = fmt.Sprintf("Using config file: %s", v.ConfigFileUsed())
	} else {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				fmt.Fprintf(os.Stderr, "Warning: Config file specified by flag (%s) not found: %v\n", cfgFile, readErr)
			} else {
				fmt.Fprintln(os.Stderr, "No default config file found. Using defaults/environment variables.")
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", v.ConfigFileUsed(), readErr)
		}
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Error unmarshalling configuration: %v\n", err)
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Apply flag overrides
	if flagAppLogPath != "" {
		expandedPath, err := expandTilde(flagAppLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --app-log path '%s': %v. Using original path.\n", flagAppLogPath, err)
			AppConfig.Server.LogPath = flagAppLogPath
		} else {
			AppConfig.Server.LogPath = expandedPath
		}
	}
	if flagAccessLogPath != "" {
		expandedPath, err := expandTilde(flagAccessLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --access-log path '%s': %v. Using original path.\n", flagAccessLogPath, err)
			AppConfig.Logging.AccessPath = flagAccessLogPath
		} else {
			AppConfig.Logging.AccessPath = expandedPath
		}
	}
	if flagLogLevel != "" {
		AppConfig.Logging.Level = strings.ToUpper(flagLogLevel)
	}

	// Expand tilde for paths read from config that might contain it
	var err error
	AppConfig.Database.Path, err = expandTilde(AppConfig.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in database.path '%s': %v.\n", AppConfig.Database.Path, err)
	}
	AppConfig.Attachments.Dir, err = expandTilde(AppConfig.Attachments.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in attachments.dir '%s': %v.\n", AppConfig.Attachments.Dir, err)
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(AppConfig.Server.LogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create app log directory %s: %v\n", filepath.Dir(AppConfig.Server.LogPath), err)
	}
	if err := os.MkdirAll(filepath.Dir(AppConfig.Logging.AccessPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create access log directory %s: %v\n", filepath.Dir(AppConfig.Logging.AccessPath), err)
	}
	if err := os.MkdirAll(AppConfig.Attachments.Dir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create attachments directory %s: %v\n", AppConfig.Attachments.Dir, err)
	}
	if err := os.MkdirAll(defaults.ConfigDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create main config directory %s: %v\n", defaults.ConfigDir, err)
	}

	// Initialize/Re-initialize loggers
	if err := logger.InitGlobalLoggers(AppConfig.Server.LogPath, AppConfig.Logging.AccessPath, AppConfig.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize global loggers with final config: %v\n", err)
		return fmt.Errorf("failed to initialize global loggers with final config: %w", err)
	}

	logger.Info(configUsedMsg)
	if readErr != nil && cfgFile != "" {
		logger.Error("Error occurred reading specified config file '%s': %v", cfgFile, readErr)
	}

	logger.Debug("Final AppConfig Initialized: %+v", AppConfig)
	return nil
}
