package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/solpipe/internal/config"
	"github.com/xxxsen/solpipe/internal/db"
	"github.com/xxxsen/solpipe/internal/model"
	"github.com/xxxsen/solpipe/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "solpipe",
		Short:         "solicitation question extraction and chunk indexing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer func() { _ = conn.Close() }()
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			logutil.GetLogger(cmd.Context()).Info("migrations applied")
			return nil
		},
	}

	var inputPath string
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "extract questions from one question file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in service.ExtractionInput
			if err := readJSON(cmd.InOrStdin(), inputPath, &in); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := a.extraction.Run(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	extractCmd.Flags().StringVar(&inputPath, "input", "-", "extraction input json file, - for stdin")

	var eventPath string
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "index one chunk event",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ev model.ChunkIndexingEvent
			if err := readJSON(cmd.InOrStdin(), eventPath, &ev); err != nil {
				return fmt.Errorf("read event: %w", err)
			}
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.indexing.Index(cmd.Context(), &ev)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	indexCmd.Flags().StringVar(&eventPath, "event", "-", "chunk indexing event json file, - for stdin")

	var runOnce bool
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "run scheduled maintenance jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runWorker(cmd.Context(), runOnce)
		},
	}
	workerCmd.Flags().BoolVar(&runOnce, "once", false, "run every job once and exit")

	rootCmd.AddCommand(migrateCmd, extractCmd, indexCmd, workerCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logutil.GetLogger(context.Background()).Error("command failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func readJSON(stdin io.Reader, path string, dst interface{}) error {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return json.NewDecoder(r).Decode(dst)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
