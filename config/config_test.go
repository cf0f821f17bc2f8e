package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfigPaths(t *testing.T) {
	paths := GetDefaultConfigPaths()
	if paths.ConfigDir == "" || paths.DBPath == "" || paths.LogPathApp == "" || paths.LogPathAccess == "" || paths.AttachmentsDir == "" {
		t.Errorf("default paths must all be set, got %+v", paths)
	}
	if paths.LogLevel != "INFO" {
		t.Errorf("expected default log level INFO, got %s", paths.LogLevel)
	}
	if filepath.Base(paths.ConfigDir) != "logbook" {
		t.Errorf("config dir should end in 'logbook', got %s", paths.ConfigDir)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	got, err := expandTilde("~/logbook.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(home, "logbook.db") {
		t.Errorf("unexpected expansion: %s", got)
	}

	got, err = expandTilde("/var/lib/logbook.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/var/lib/logbook.db" {
		t.Errorf("absolute path must pass through unchanged, got %s", got)
	}
}

func TestInitReadsConfigFileAndFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
  log_path: ` + filepath.Join(dir, "app.log") + `
logging:
  level: info
  access_path: ` + filepath.Join(dir, "access.log") + `
attachments:
  dir: ` + filepath.Join(dir, "attachments") + `
run_import:
  run_number_field: number
`
	if err := os.WriteFile(cfgFile, []byte(content), 0640); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if err := Init(cfgFile, "", "", "DEBUG"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if AppConfig.Server.Port != "9000" {
		t.Errorf("expected port 9000 from config file, got %s", AppConfig.Server.Port)
	}
	// The flag wins over the file.
	if AppConfig.Logging.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG from flag, got %s", AppConfig.Logging.Level)
	}
	if AppConfig.RunImport.RunNumberField != "number" {
		t.Errorf("expected remapped run number field, got %s", AppConfig.RunImport.RunNumberField)
	}
	// Untouched keys keep their defaults.
	if AppConfig.RunImport.RunsArrayPath != "runs" {
		t.Errorf("expected default runs array path, got %s", AppConfig.RunImport.RunsArrayPath)
	}
	if AppConfig.Attachments.Dir != filepath.Join(dir, "attachments") {
		t.Errorf("unexpected attachments dir: %s", AppConfig.Attachments.Dir)
	}
}
