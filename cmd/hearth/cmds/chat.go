package cmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send a message to your personal agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			replies, err := app.service.Chat(cmd.Context(), username, strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, reply := range replies {
				fmt.Println(reply)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "acting user")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newAdviceCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Ask your personal agent for advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			replies, err := app.service.Advice(cmd.Context(), username)
			if err != nil {
				return err
			}
			for _, reply := range replies {
				fmt.Println(reply)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "acting user")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
