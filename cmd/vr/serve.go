package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/vr-engine/api"
)

type serveOptions struct {
	port   int
	dbPath string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, appOptions{dbPath: opts.dbPath})
			if err != nil {
				return err
			}
			defer a.Close()

			port := a.cfg.Server.Port
			if cmd.Flags().Changed("port") {
				port = opts.port
			}
			return serve(a, port)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 8080, "HTTP server port (default: server.port)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", `SQLite database path, ":memory:" for in-memory (default: store.path)`)

	return cmd
}

func serve(a *app, port int) error {
	handler := api.NewHandler(a.store, a.runner, a.layout, a.log)
	handler.InputDir = a.cfg.Paths.InputDir
	handler.OutputDir = a.cfg.Paths.OutputDir
	if a.rmq != nil {
		handler.Broker = a.rmq
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.Server.Host, port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	a.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.log.Info().Msg("server stopped")
	return nil
}
