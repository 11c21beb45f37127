package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(rt.dispatcher, server.Options{
			Lang:     rt.lang,
			RowLimit: rt.cfg.History.RowLimit,
			Render:   rt.renderOptions(),
			Logger:   rt.log,

			SessionTTL:  time.Duration(rt.cfg.Server.SessionTTL),
			MaxSessions: uint64(max(rt.cfg.Server.MaxSessions, 0)),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
