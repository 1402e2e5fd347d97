package cli

import (
	"github.com/spf13/cobra"

	"github.com/adaosilva/imoveis-backend/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Migrates the schema, applies the bootstrap seed and serves the API until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admins, site config and optional seed file data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Seed.File
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Seed(cmd.Context(), file)
			if err != nil {
				return err
			}
			cmd.Printf("users created: %d\nsite config created: %t\n", len(report.UsersCreated), report.SiteConfigCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file with extra users")
	return cmd
}
