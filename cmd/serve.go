package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/questiongen"
	"github.com/pgokul695/Winterthon/internal/server"
	"github.com/pgokul695/Winterthon/internal/source"
	"github.com/pgokul695/Winterthon/internal/store"
)

const defaultPort = "3000"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question generation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, reg, err := newGenerator(cmd, st)
		if err != nil {
			return err
		}

		cfg := server.DefaultConfig()
		cfg.Version = buildVersion()
		if origins, _ := cmd.Flags().GetString("cors-origins"); origins != "" {
			cfg.AllowOrigins = origins
		}
		cfg.GenerateRateLimit, _ = cmd.Flags().GetInt("rate-limit")

		srv := server.New(server.Deps{
			Generator: gen,
			Models:    reg,
			Logs:      st.logs,
			Sources:   source.NewFetcher(),
		}, cfg)

		reaper, err := startReaper(cmd, st)
		if err != nil {
			return err
		}
		if reaper != nil {
			defer reaper.Stop()
		}

		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = os.Getenv("PORT")
		}
		if port == "" {
			port = defaultPort
		}
		addr := ":" + port

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("server listening", "addr", addr, "provider", reg.Default())
			errCh <- srv.Listen(addr)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("listen: %w", err)
		case <-ctx.Done():
		}

		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

// newGenerator builds the provider registry from the environment and a
// Generator that logs batches to st.
func newGenerator(cmd *cobra.Command, st *stores) (*questiongen.Generator, *llm.Registry, error) {
	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		slog.Warn("default LLM provider is not usable; requests must name another mode", "error", err)
	}
	reg := llm.NewRegistry(llmCfg, st.db.EventRepo())

	cfg := questiongen.DefaultConfig()
	format, _ := cmd.Flags().GetString("format")
	switch questiongen.Format(format) {
	case questiongen.FormatText, questiongen.FormatJSON:
		cfg.Format = questiongen.Format(format)
	default:
		return nil, nil, fmt.Errorf("unknown completion format %q (want text or json)", format)
	}

	return questiongen.New(reg, st.logs, cfg), reg, nil
}

// startReaper schedules batch log pruning when --log-retention is set.
func startReaper(cmd *cobra.Command, st *stores) (*store.Reaper, error) {
	retention, _ := cmd.Flags().GetDuration("log-retention")
	if retention == 0 {
		return nil, nil
	}
	pruner, ok := st.logs.(store.Pruner)
	if !ok {
		return nil, fmt.Errorf("batch log backend cannot prune")
	}
	schedule, _ := cmd.Flags().GetString("reap-schedule")
	r, err := store.NewReaper(pruner, retention, schedule)
	if err != nil {
		return nil, err
	}
	r.Start()
	return r, nil
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT env var, default "+defaultPort+")")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated CORS origins (default *)")
	serveCmd.Flags().Int("rate-limit", 0, "Generation requests per client per minute (0 = unlimited)")
	serveCmd.Flags().String("format", string(questiongen.FormatText), "Completion format requested from the model: text or json")
	serveCmd.Flags().Duration("log-retention", 0, "Prune batch logs older than this on a schedule, e.g. 720h (0 = keep everything)")
	serveCmd.Flags().String("reap-schedule", store.DefaultReapSchedule, "Cron schedule for batch log pruning")
}
