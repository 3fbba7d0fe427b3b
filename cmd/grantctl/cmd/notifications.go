package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/grantflow/app"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Maintain the notification inbox",
	Long:  `Maintain the notification inbox`,
}

var notificationsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Args:  cobra.NoArgs,
	Short: "Delete notifications past their retention window",
	Long:  `Delete notifications past their retention window`,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, a *app.App) error {
			n, err := a.Services.Notification.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d expired notifications\n", n)
			return nil
		})
	},
}

func init() {
	notificationsCmd.AddCommand(notificationsPurgeCmd)
	rootCmd.AddCommand(notificationsCmd)
}
