package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundbrowse/soundbrowse/internal/cli"
	"github.com/soundbrowse/soundbrowse/internal/tui"
	"github.com/soundbrowse/soundbrowse/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "soundbrowse",
	Short: "Terminal browser for a user's shared sounds",
	Long: `soundbrowse is a terminal client for browsing a music sharing service's
per-user resources: tracks, playlists, favorites, followings and followers.

Run without arguments to start the interactive browser. Use the lookup
subcommand to print a user's resources without entering the TUI.

Examples:
  soundbrowse                          # Start the interactive browser
  soundbrowse lookup edamame           # Print edamame's resources
  soundbrowse lookup edamame -o json   # Machine-readable output
  soundbrowse lookup edamame -c tracks # Only one category`,
	Version: version.Version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <username>",
	Short: "Resolve a username and print the first page of its resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Lookup(cli.LookupOptions{
			Username:     args[0],
			OutputFormat: flagOutput,
			Categories:   flagCategories,
			NoCache:      flagNoCache,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for a newer release",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("soundbrowse %s\n", version.Version)

		available, latest, url, err := version.CheckForUpdate(version.Version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "update check failed: %v\n", err)
			return
		}
		if available {
			fmt.Printf("A newer release is available: %s (%s)\n", latest, url)
		}
	},
}

var (
	flagOutput     string
	flagCategories []string
	flagNoCache    bool
)

func init() {
	lookupCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format: text, json, yaml")
	lookupCmd.Flags().StringSliceVarP(&flagCategories, "category", "c", nil, "Categories to fetch (default: all)")
	lookupCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the page cache")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(versionCmd)
}
