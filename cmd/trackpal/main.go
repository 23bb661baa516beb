package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "trackpal",
		Short:         "TrackPal - weekly goals, streaks, reminders and finances",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("TRACKPAL_CONFIG"), "YAML config file (env vars override it)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(streakCmd(&configPath))
	rootCmd.AddCommand(remindCmd(&configPath))
	rootCmd.AddCommand(exportCmd(&configPath))
	rootCmd.AddCommand(profileCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
