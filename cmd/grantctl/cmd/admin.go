package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/grantflow/app"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

var (
	adminRole      string
	adminProjects  string
	adminActor     string
	adminBootstrap bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage approver roles",
	Long:  `Manage approver roles`,
}

var adminAssignCmd = &cobra.Command{
	Use:   "assign [EMAIL]",
	Args:  cobra.ExactArgs(1),
	Short: "Grant or update an admin role",
	Long: `Grant or update an admin role.

Use --bootstrap to create the first super-admin when no actor exists yet.`,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, a *app.App) error {
			if adminBootstrap {
				role, err := a.Services.Admin.BootstrapSuperAdmin(ctx, args[0], "grantctl")
				if err != nil {
					return err
				}
				prettyPrint(role)
				return nil
			}
			if adminActor == "" {
				return errors.New("--actor is required unless --bootstrap is set")
			}
			in := model.AssignAdminInput{
				Role:             model.AdminRoleType(adminRole),
				AssignedProjects: splitList(adminProjects),
			}
			role, err := a.Services.Admin.AssignAdminRole(ctx, adminActor, args[0], in)
			if err != nil {
				return err
			}
			prettyPrint(role)
			return nil
		})
	},
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove [EMAIL]",
	Args:  cobra.ExactArgs(1),
	Short: "Remove an admin role",
	Long:  `Remove an admin role`,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, a *app.App) error {
			if err := a.Services.Admin.RemoveAdminRole(ctx, adminActor, args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed admin role for %s\n", args[0])
			return nil
		})
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "List all admin roles",
	Long:  `List all admin roles`,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, a *app.App) error {
			admins, err := a.Services.Admin.ListAdmins(ctx)
			if err != nil {
				return err
			}
			prettyPrint(admins)
			return nil
		})
	},
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	adminAssignCmd.Flags().StringVar(&adminRole, "role", string(model.RoleProjectAdmin), "Role to assign (project-admin or super-admin)")
	adminAssignCmd.Flags().StringVar(&adminProjects, "projects", "", "Projects the admin may approve for (comma separated)")
	adminAssignCmd.Flags().StringVar(&adminActor, "actor", "", "Email of the super-admin performing the change")
	adminAssignCmd.Flags().BoolVar(&adminBootstrap, "bootstrap", false, "Create a super-admin without an acting super-admin")

	adminRemoveCmd.Flags().StringVar(&adminActor, "actor", "", "Email of the super-admin performing the change")
	adminRemoveCmd.MarkFlagRequired("actor")

	adminCmd.AddCommand(adminAssignCmd, adminRemoveCmd, adminListCmd)
	rootCmd.AddCommand(adminCmd)
}
