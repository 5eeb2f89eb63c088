package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jstrand/bt/internal/clock"
	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/reconcile"
	"github.com/spf13/cobra"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Reconcile local progress with the server",
	GroupID: "system",
	Long: `Run one reconciliation pass: pull the authoritative program from
the server, refresh the local mirror, and unlock the next day if the
calendar has moved. With --watch, keep running and re-check on every
day boundary until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		snap, err := sess.Controller.Sync(cmd.Context())
		if err != nil {
			return err
		}

		switch {
		case snap.Degraded:
			fmt.Println(output.DegradedBanner())
		case snap.Program == nil:
			output.Info("Synced. No active program.")
		default:
			output.Success("Synced. Day %d of %d is current.", snap.Program.CurrentDay, snap.Program.TrackKind.Length())
		}
		if snap.RolloverPending {
			output.Warning("Day rollover pending; it will retry on the next sync.")
		}

		if !syncWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		output.Info("Watching for day changes. Press Ctrl-C to stop.")
		timer := &reconcile.RolloverTimer{
			Controller: sess.Controller,
			Clock:      clock.System{},
			Interval:   rolloverInterval(sess.Config),
		}
		timer.Run(ctx)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running and sync on every day boundary")
	rootCmd.AddCommand(syncCmd)
}
