package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/pipeline"
	"github.com/KaramelBytes/tabloom-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the profile and transform API over HTTP",
	Long: `Serve exposes:
  GET  /health          liveness probe
  POST /api/profile     multipart "file" -> profile JSON
  POST /api/transform   multipart "file" (+ "config") -> status JSON or CSV`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		addr := c.ServeAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Options{
			Addr:           addr,
			AllowedOrigins: c.AllowedOrigins,
			UploadDir:      c.UploadDir,
			MaxUploadMB:    c.MaxUploadMB,
			Pipeline: pipeline.Options{
				Profile: analysis.Options{SampleRows: c.SampleRows, TopWords: true},
				Logger:  &logger,
			},
			Logger: &logger,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default serve_addr from config)")
}
