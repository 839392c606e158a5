package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/claritydental/walkout"
	"github.com/claritydental/walkout/internal/cli"
	"github.com/claritydental/walkout/internal/config"
	httpAdapter "github.com/claritydental/walkout/pkg/adapters/http"
	"github.com/claritydental/walkout/pkg/adapters/memory"
	"github.com/claritydental/walkout/pkg/observability"
	"github.com/claritydental/walkout/pkg/ports"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the walkout HTTP service",
	Long:  `Starts the walkout engine in server mode, exposing the submission API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}

		logger := cli.NewLogger(cfg.Log)
		metrics := observability.New()

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		stack, err := buildStack(sc, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = stack.close() }()

		opts := []walkout.Option{
			walkout.WithStore(stack.store),
			walkout.WithRegistry(stack.registry),
			walkout.WithLogger(logger),
			walkout.WithMetrics(metrics),
		}
		if stack.locker != nil {
			opts = append(opts, walkout.WithDistributedLocker(stack.locker))
		}
		svc, err := walkout.New(opts...)
		if err != nil {
			return err
		}

		var rules ports.RuleEngineClient = &memory.RuleEngine{}
		if cfg.RuleEngineURL != "" {
			rules = httpAdapter.NewRuleEngineClient(cfg.RuleEngineURL,
				httpAdapter.WithClientMetrics(metrics))
		}
		var analyzer ports.NoteAnalyzer = memory.NoteAnalyzer{}
		if cfg.NoteAnalyzerURL != "" {
			analyzer = httpAdapter.NewNoteAnalyzerClient(cfg.NoteAnalyzerURL,
				httpAdapter.WithClientMetrics(metrics))
		}

		handler := httpAdapter.NewHandler(httpAdapter.Config{
			Engine:   svc.Engine(),
			Fields:   stack.fields,
			Rules:    rules,
			Analyzer: analyzer,
			Metrics:  metrics,
			Logger:   logger,
		})

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		logger.Info("starting walkout server", "addr", cfg.Listen, "store", cfg.Store.Backend)

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown incomplete, closing", "err", err)
				return srv.Close()
			}
			return nil
		})

		err = g.Wait()
		if sig := sc.Signal(); sig != nil {
			logger.Info("walkout server stopped", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address, overrides the config file")
}
