package cmds

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd() *cobra.Command {
	var group string
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically re-synthesize a group's artifacts and print updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			updates, err := app.bus.Subscribe(ctx)
			if err != nil {
				return err
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				for {
					select {
					case <-egCtx.Done():
						return nil
					case update, ok := <-updates:
						if !ok {
							return nil
						}
						fmt.Printf("[%s] %s %s updated\n",
							update.UpdatedAt.Format(time.RFC3339), update.Group, update.Kind)
					}
				}
			})
			eg.Go(func() error {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					if _, err := app.service.TodoList(egCtx, group); err != nil {
						log.Warn().Err(err).Msg("todo synthesis failed")
					}
					if _, err := app.service.BulletinBoard(egCtx, group); err != nil {
						log.Warn().Err(err).Msg("bulletin synthesis failed")
					}
					select {
					case <-egCtx.Done():
						return nil
					case <-ticker.C:
					}
				}
			})
			return eg.Wait()
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group name")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Minute, "re-synthesis interval")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
