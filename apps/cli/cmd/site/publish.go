package sitecmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/remotestore"
	storesservice "github.com/zenGate-Global/pwa-studio/domains/stores/be/service"
	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
)

// PublishCommand publishes a store configuration file with the backend
// configured through the environment (STORE_BACKEND, FTP_*, PUBLISH_*).
func PublishCommand() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Generate and publish a store to its tenant subdomain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadStoreConfig(configPath)
			if err != nil {
				return err
			}

			logger, err := platformlogging.NewLogger(platformlogging.Config{
				Component: "cli",
				Level:     logLevel,
				Output:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			storeCfg, err := remotestore.LoadConfig()
			if err != nil {
				return err
			}
			svcCfg, err := storesservice.LoadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			connector, closeConnector, err := remotestore.NewConnector(ctx, storeCfg, logger)
			if err != nil {
				return err
			}
			defer closeConnector()

			publisher := publishing.New(connector, svcCfg.PublishingOptions(), logger.Named("publisher"))
			svc, err := storesservice.New(publisher, storeCfg.Credentials(), svcCfg, logger)
			if err != nil {
				return err
			}

			res, err := svc.Publish(ctx, cfg)
			if err != nil {
				return err
			}

			logger.Debug("publish result", zap.Strings("files", res.Files))
			fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the store configuration JSON")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
