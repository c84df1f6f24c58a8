package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "realestate-console"

func main() {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Admin backend for city and property listings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		recountCmd(),
		createUserCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
