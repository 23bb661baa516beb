package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackpal/internal/service"
)

func profileCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	var input service.ProfileInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a profile and print its Telegram link code",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.profiles.CreateProfile(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile %d created\nlink the Telegram bot with: /link %s\n",
				profile.ID, profile.TelegramLinkCode)
			return nil
		},
	}
	create.Flags().StringVar(&input.Email, "email", "", "reminder address")
	create.Flags().StringVar(&input.DisplayName, "name", "", "display name")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}
