package cli

import (
	"context"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/adaosilva/imoveis-backend/internal/app"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

const cliActorEmail = "cli@imoveis.local"

// asOperator marks ctx as an admin acting from the command line.
func asOperator(ctx context.Context) context.Context {
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{Email: cliActorEmail, Role: types.RoleAdmin})
}

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage CRM users",
	}
	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersCreateCommand())
	return cmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List CRM users",
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

			users, err := a.Services.User.List(asOperator(cmd.Context()))
			if err != nil {
				return err
			}
			renderUsers(cmd.OutOrStdout(), users)
			return nil
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var in services.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a CRM user",
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

			u, err := a.Services.User.Create(asOperator(cmd.Context()), in)
			if err != nil {
				return err
			}
			renderUsers(cmd.OutOrStdout(), []*types.User{u})
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "user email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Role, "role", "vendedor", "role (admin|vendedor)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func renderUsers(w io.Writer, users []*types.User) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Email", "Perfil", "Criado em"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID.String(), u.Email, u.Role, u.CreatedAt.Format("2006-01-02 15:04")})
	}
	t.Render()
}
