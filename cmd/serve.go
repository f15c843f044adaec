package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	port     int
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP web server with HTMX interface.

The web server provides a browser-based interface for asking business
questions, plus JSON API endpoints at /api/insights and /api/health.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to run the server on")
}

func runServe() {
	fmt.Printf("Starting CRM Insights web server...\n")
	fmt.Printf("Port: %d\n\n", port)

	if err := StartWebServer(port); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
