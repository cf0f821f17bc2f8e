package cmd

import (
	"net/http"

	"logbook/api"
	"logbook/config"
	"logbook/logger"

	"github.com/spf13/cobra"
)

var serverPortFlag string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the logbook API server",
	Run: func(cmd *cobra.Command, args []string) {
		port := serverPortFlag
		if port == "" {
			port = config.AppConfig.Server.Port
		}

		apiRouter := api.NewRouter()

		staticFileDir := config.AppConfig.Server.StaticDir
		fileServer := http.FileServer(http.Dir(staticFileDir))

		mainMux := http.NewServeMux()
		mainMux.Handle("/api/", http.StripPrefix("/api", apiRouter))
		mainMux.Handle("/", fileServer)

		logger.Info("Starting server on port %s (static dir: %s)...", port, staticFileDir)
		if err := http.ListenAndServe(":"+port, mainMux); err != nil {
			logger.Fatal("Could not start server: %v", err)
		}
	},
}

func init() {
	serverCmd.Flags().StringVarP(&serverPortFlag, "port", "p", "", "Port for the server to listen on (overrides config/default)")
	rootCmd.AddCommand(serverCmd)
}
