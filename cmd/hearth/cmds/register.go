package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var username, password, group string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user and provision their personal agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.service.Register(cmd.Context(), username, password, group); err != nil {
				return err
			}
			fmt.Printf("registered %s in group %s\n", username, group)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to register")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&group, "group", "", "group to join (created on first use)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and make sure the group agent exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.service.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
