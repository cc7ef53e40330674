package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formstate/internal/config"
	"github.com/vango-dev/formstate/internal/server"
	"github.com/vango-dev/formstate/pkg/form"
)

func serveCmd() *cobra.Command {
	var (
		path string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a form over HTTP and WebSocket",
		Long: `Load the form definition and serve it.

Clients read and write values over HTTP and follow errors live on
/ws/errors. Metrics are served on the configured metrics path.

Examples:
  formstate serve
  formstate serve --addr :9000
  FORMSTATE_ADDR=0.0.0.0:8080 formstate serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(path, addr)
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", config.ConfigFileName, "Path or s3://bucket/key of the form definition")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

func runServe(path, addr string) error {
	cfg, err := config.LoadURI(context.Background(), path)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger := slog.Default().With("form", cfg.Name)
	f, err := cfg.Build(
		form.WithLogger(logger),
		form.WithMetrics(form.NewMetrics()),
	)
	if err != nil {
		return err
	}

	srv, err := server.New(f, f.Loop(), server.Config{
		Addr:            cfg.Server.Addr,
		MetricsPath:     cfg.Server.MetricsPath,
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	success(os.Stdout, "Serving %s on http://%s", cfg.Name, cfg.Server.Addr)
	info(os.Stdout, "Errors stream: ws://%s/ws/errors", cfg.Server.Addr)
	info(os.Stdout, "Press Ctrl+C to stop")

	return srv.Run(ctx)
}
