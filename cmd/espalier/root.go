package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/internal/demo"
	"github.com/mbruna/espalier/internal/logging"
	redisadapter "github.com/mbruna/espalier/pkg/adapters/redis"
	"github.com/mbruna/espalier/pkg/observability"
	"github.com/mbruna/espalier/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a controls-based dialog management engine",
	Long:  `Espalier runs multi-turn dialogs as a tree of reusable controls that elicit, validate and confirm values across turns.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("redis", "", "Redis address for durable sessions (empty: in-memory)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

// newEngine assembles the demo skill engine from the command's flags.
func newEngine(cmd *cobra.Command, metrics *observability.Metrics) (*espalier.Engine, error) {
	logger := logging.New(logLevel(cmd))

	opts := []espalier.Option{
		espalier.WithLogger(logger),
		espalier.WithMetrics(metrics),
	}
	if store, locker, err := newStore(cmd); err != nil {
		return nil, err
	} else if store != nil {
		opts = append(opts, espalier.WithStore(store), espalier.WithLocker(locker))
	}

	return espalier.New(demo.NewManager(), opts...)
}

// newStore returns nil when no durable backend is configured; the engine
// falls back to its in-memory store.
func newStore(cmd *cobra.Command) (ports.StateStore, ports.DistributedLocker, error) {
	addr, _ := cmd.Flags().GetString("redis")
	if addr == "" {
		return nil, nil, nil
	}
	store := redisadapter.New(addr, "", 0)
	if err := store.Ping(cmd.Context()); err != nil {
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", addr, err)
	}
	return store, redisadapter.NewLocker(store.Client(), "espalier:"), nil
}

func logLevel(cmd *cobra.Command) slog.Level {
	level, _ := cmd.Flags().GetString("log-level")
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
