package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/lintdoc/internal/watch"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Lint a document again every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(args[0], e.cfg.Watch.Debounce, e.log)
			if err != nil {
				return err
			}

			last := c.lintOnce(e, args[0])
			err = w.Run(ctx, func() {
				fmt.Fprintln(c.stdout)
				last = c.lintOnce(e, args[0])
			})
			if err != nil {
				return err
			}
			return exitCode(last)
		},
	}
}
