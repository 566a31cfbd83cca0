package cmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTodoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Group to-do list",
	}

	var group string
	add := &cobra.Command{
		Use:   "add [item...]",
		Short: "Add an item and re-synthesize the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.service.AddTodo(cmd.Context(), group, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Synthesize and print the current list",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.service.TodoList(cmd.Context(), group)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	for _, sub := range []*cobra.Command{add, show} {
		sub.Flags().StringVar(&group, "group", "", "group name")
		_ = sub.MarkFlagRequired("group")
		cmd.AddCommand(sub)
	}
	return cmd
}

func newBulletinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulletin",
		Short: "Group bulletin board",
	}

	var group string
	add := &cobra.Command{
		Use:   "add [item...]",
		Short: "Add an item and re-synthesize the board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.service.AddBulletin(cmd.Context(), group, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Synthesize and print the current board",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.service.BulletinBoard(cmd.Context(), group)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	for _, sub := range []*cobra.Command{add, show} {
		sub.Flags().StringVar(&group, "group", "", "group name")
		_ = sub.MarkFlagRequired("group")
		cmd.AddCommand(sub)
	}
	return cmd
}
