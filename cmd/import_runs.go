package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"logbook/core"
	"logbook/logger"

	"github.com/spf13/cobra"
)

var importRunsCmd = &cobra.Command{
	Use:   "import-runs <file-or-url>",
	Short: "Imports runs from a control system JSON export",
	Long: `Reads a JSON run export from a local file or an HTTP(S) URL and
registers every run that is not yet known. The export layout is
configurable via the run_import config section.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		var data []byte
		var err error
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			data, err = fetchRunExport(source)
		} else {
			data, err = os.ReadFile(source)
		}
		if err != nil {
			return fmt.Errorf("reading run export from %s: %w", source, err)
		}

		imported, err := core.ImportRuns(data)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d runs from %s\n", imported, source)
		return nil
	},
}

func fetchRunExport(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	logger.Info("fetchRunExport: Downloaded run export from %s.", url)
	return io.ReadAll(resp.Body)
}

func init() {
	rootCmd.AddCommand(importRunsCmd)
}
