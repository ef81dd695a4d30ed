package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/mcp"
	"github.com/duynguyendang/sir/pkg/repl"
	"github.com/duynguyendang/sir/pkg/server"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Serves one fact store per session over HTTP:

  POST /v1/sessions                 create a session
  POST /v1/sessions/:id/say         {"text": "every cat is a mammal"}
  POST /v1/sessions/:id/query       {"start": "fluff", "pattern": "ms*", "end": "mammal"}
  GET  /metrics                     Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve a single session over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		return mcp.Run(cmd.Context(), session, logger)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Replay a file of sentences and commands, printing each reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		session, err := newSession()
		if err != nil {
			return err
		}
		return repl.Run(cmd.Context(), repl.ScriptConfig(), session, f, cmd.OutOrStdout())
	},
}

func newSession() (*manager.Session, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, err
	}
	return manager.NewSession("local", cfg.SearchOptions(), rules, logger), nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return repl.Run(ctx, repl.DefaultConfig(), session, cmd.InOrStdin(), cmd.OutOrStdout())
}

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	mgr := manager.NewSessionManager(cfg.Sessions.Max, cfg.SearchOptions(), rules, logger)
	defer mgr.CloseAll()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewServer(mgr, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting REST API server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		logger.Info("shutting down REST API server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
