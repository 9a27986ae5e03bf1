package sitecmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	storesservice "github.com/zenGate-Global/pwa-studio/domains/stores/be/service"
	"github.com/zenGate-Global/pwa-studio/platform/go/archive"
)

// GenerateCommand writes the site archive for a store configuration file.
func GenerateCommand() *cobra.Command {
	var configPath string
	var outPath string
	var inlineStyles bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the site archive for a store configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadStoreConfig(configPath)
			if err != nil {
				return err
			}

			opts := bundle.DefaultOptions()
			opts.InlineStyles = inlineStyles
			b, err := bundle.Build(cfg, opts)
			if err != nil {
				return err
			}

			data, err := archive.Zip(b, time.Now())
			if err != nil {
				return fmt.Errorf("archive bundle: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d files, %d bytes)\n", outPath, len(b.Files), len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the store configuration JSON")
	cmd.Flags().StringVar(&outPath, "out", storesservice.ArchiveName, "archive output path")
	cmd.Flags().BoolVar(&inlineStyles, "inline-styles", false, "embed the stylesheet in index.html")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
