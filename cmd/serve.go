package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/server"
	"github.com/papapumpkin/when/internal/telemetry"
	"github.com/papapumpkin/when/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP",
	Long: `Starts a JSON API:

  GET /api/convert?q=5pm+in+tokyo&zone=Europe/Vienna
  GET /api/zones
  GET /healthz

With --watch the gazetteer file or directory is reloaded when it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().Bool("watch", false, "reload the gazetteer when it changes on disk")
	serveCmd.Flags().String("telemetry", "", "append JSONL request events to this file")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.watch", serveCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("server.telemetry_path", serveCmd.Flags().Lookup("telemetry"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	env, err := buildEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	local, err := env.zones.Local(cfg.LocalZone)
	if err != nil {
		return fmt.Errorf("local zone %q: %w", cfg.LocalZone, err)
	}

	var emitter *telemetry.Emitter
	if cfg.Server.TelemetryPath != "" {
		emitter, err = telemetry.NewEmitter(cfg.Server.TelemetryPath)
		if err != nil {
			return err
		}
		defer emitter.Close()
	}

	srv := server.New(env.conv, env.zones,
		server.WithAddr(cfg.Server.Addr),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
		server.WithLocal(local),
		server.WithTelemetry(emitter),
		server.WithLogger(logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	if cfg.Server.Watch {
		if cfg.Gazetteer.Path == "" {
			logger.Warn("--watch ignored: the built-in gazetteer never changes")
		} else {
			w, err := watcher.New(cfg.Gazetteer.Path)
			if err != nil {
				stop()
				_ = g.Wait()
				return fmt.Errorf("watch %s: %w", cfg.Gazetteer.Path, err)
			}
			if err := w.Start(); err != nil {
				stop()
				_ = g.Wait()
				return fmt.Errorf("watch %s: %w", cfg.Gazetteer.Path, err)
			}
			r := reloader{env: env, cfg: cfg, srv: srv, emitter: emitter, logger: logger}
			g.Go(func() error {
				defer w.Stop()
				return r.run(gctx, w.Changes)
			})
		}
	}

	return g.Wait()
}

// reloader rebuilds the converter whenever the gazetteer source changes.
type reloader struct {
	env     *environment
	cfg     config.Config
	srv     *server.Server
	emitter *telemetry.Emitter
	logger  *slog.Logger
}

func (r reloader) run(ctx context.Context, changes <-chan watcher.Change) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			r.reload(ctx, change)
		}
	}
}

// reload keeps serving the previous gazetteer if the new one fails to load.
func (r reloader) reload(ctx context.Context, change watcher.Change) {
	g, err := loadGazetteer(ctx, r.cfg.Gazetteer.Path)
	if err != nil {
		r.logger.Warn("gazetteer reload failed", "file", change.File, "error", err)
		_ = r.emitter.Emit(telemetry.Event{
			Kind: telemetry.KindReloadFailed,
			Data: map[string]string{"file": change.File, "error": err.Error()},
		})
		return
	}
	r.srv.Swap(r.env.converter(g, r.cfg, r.logger))
	r.logger.Info("gazetteer reloaded", "file", change.File, "places", g.Len())
	_ = r.emitter.Emit(telemetry.Event{
		Kind: telemetry.KindGazetteerReload,
		Data: map[string]any{"file": change.File, "places": g.Len()},
	})
}
