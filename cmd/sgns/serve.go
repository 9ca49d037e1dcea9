package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0madic/go-sgns/internal/logging"
	"github.com/n0madic/go-sgns/internal/server"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the similarity HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("host", "", "Listen host (default server.host)")
	cmd.Flags().Int("port", 0, "Listen port (default server.port)")
	addModelSourceFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		e.cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		e.cfg.Server.Port = port
	}

	ctx := cmd.Context()
	model, err := e.loadModel(cmd)
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.NewServer(model, st, &e.cfg.Server, e.cfg.Similarity.TopK, logging.Named(e.logger, "server"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		e.logger.Info("shutting down server", zap.Error(ctx.Err()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}
