package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/gazetteer"
	"github.com/papapumpkin/when/internal/resolve"
	"github.com/papapumpkin/when/internal/store"
	"github.com/papapumpkin/when/internal/tzdb"
)

// environment bundles the data sources a command converts against.
type environment struct {
	zones    *tzdb.Service
	gaz      *gazetteer.Gazetteer
	airports *gazetteer.Airports
	conv     *convert.Converter
}

func buildEnvironment(ctx context.Context, cfg config.Config, logger *slog.Logger) (*environment, error) {
	g, err := loadGazetteer(ctx, cfg.Gazetteer.Path)
	if err != nil {
		return nil, err
	}
	airports, err := gazetteer.DefaultAirports()
	if err != nil {
		return nil, fmt.Errorf("airports: %w", err)
	}
	zones := tzdb.New(tzdb.WithFallbackNames(g.Zones()...))
	env := &environment{zones: zones, gaz: g, airports: airports}
	env.conv = env.converter(g, cfg, logger)
	logger.Debug("gazetteer loaded", "source", sourceName(cfg.Gazetteer.Path), "places", g.Len())
	return env, nil
}

// converter builds a converter over g, sharing the zone database and
// airport table of env.
func (env *environment) converter(g *gazetteer.Gazetteer, cfg config.Config, logger *slog.Logger) *convert.Converter {
	r := resolve.New(g, env.airports, env.zones, resolve.WithLogger(logger))
	return convert.New(r,
		convert.WithLocalEcho(cfg.Output.LocalEcho),
		convert.WithLogger(logger),
	)
}

// loadGazetteer reads the place table named by path: the built-in table when
// path is empty, a SQLite store for .db files, and a TSV directory otherwise.
func loadGazetteer(ctx context.Context, path string) (*gazetteer.Gazetteer, error) {
	switch {
	case path == "":
		return gazetteer.Default()
	case isStorePath(path):
		s, err := store.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Load(ctx)
	default:
		return gazetteer.ReadDir(path)
	}
}

func isStorePath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".db")
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// newLogger builds the stderr text logger. -v forces debug level.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelWarn
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
