// Package cli provides the imoveis command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adaosilva/imoveis-backend/internal/app"
)

type configKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "imoveis",
		Short:   "Adão Silva Imóveis API",
		Long:    `Backend for the real-estate site and CRM: public catalogue, leads, properties and the admin panel.`,
		Version: app.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := app.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./imoveis.yaml)")
	rootCmd.PersistentFlags().Int("port", 8000, "HTTP port")
	rootCmd.PersistentFlags().String("database-url", "", "database URL (postgres://... or sqlite:///path)")
	rootCmd.PersistentFlags().String("log-mode", "", "log mode (development|production)")
	rootCmd.PersistentFlags().String("environment", "", "environment name reported in logs and traces")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newUsersCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func configFrom(cmd *cobra.Command) (app.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(app.Config)
	if !ok {
		return app.Config{}, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imoveis %s\n", app.Version)
		},
	}
}
