package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the PWA Studio CLI. Subcommands (slug, generate, publish) are attached here.
var rootCmd = &cobra.Command{
	Use:           "pwa-studio",
	Short:         "PWA Studio CLI",
	Long:          "Generate storefront progressive web apps from a store configuration file and publish them to tenant subdomains.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
