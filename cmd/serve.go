package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the schedulers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		coll := a.newCollector()
		if a.cfg.Tracker.BaseURL != "" {
			if err := coll.SchedulePolling(a.cfg.Tracker.PollMinutes); err != nil {
				return err
			}
		}
		if err := coll.ScheduleModules(a.svc); err != nil {
			return err
		}
		coll.Start()
		defer coll.Stop()

		srv := server.New(a.cfg.Server.Port, a.svc, a.catalog, a.orch, a.log)

		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errc:
			return err
		case sig := <-sigc:
			a.log.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
