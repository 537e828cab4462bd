package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/app"
)

func newViewCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Browse a file with folding in the terminal",
		Long: `Open FILE in an interactive viewer.

Click a marker in the fold column to collapse or expand its region, or
double click the first line of a region. j/k, the arrow keys, page keys and
the mouse wheel scroll; q quits. The file is reloaded when it changes on
disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.settings()
			if err != nil {
				return err
			}
			// The terminal belongs to the viewer, so logs only go to a file.
			log, closeLog, err := logger(cfg, nil)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			viewer, err := app.New(app.ViewerOptions{
				Options: app.Options{Config: cfg, Path: args[0], Logger: log},
			})
			if err != nil {
				return err
			}
			log.Info("starting viewer", zap.String("path", args[0]))
			return viewer.Run(ctx)
		},
	}
}
