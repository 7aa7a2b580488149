package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yourorg/wgimport/internal/config"
	"github.com/yourorg/wgimport/internal/importer"
	"github.com/yourorg/wgimport/internal/webui"
	"github.com/yourorg/wgimport/internal/wireguard"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig(args, stderr)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.Is(err, config.ErrUsage):
			fmt.Fprintln(stderr, config.Usage)
		default:
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := importConfig(ctx, cfg, stdout); err != nil {
		slog.Error("Import failed", "error", err)
		return 1
	}
	return 0
}

func importConfig(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	parsed, err := wireguard.ParseFile(cfg.ConfigPath)
	if err != nil {
		return err
	}

	if _, err := parsed.WriteTo(stdout); err != nil {
		return fmt.Errorf("failed to print configuration: %w", err)
	}

	if cfg.DryRun {
		enc := json.NewEncoder(stdout)
		for _, payload := range importer.BuildPayloads(parsed, cfg.AllowedIPs) {
			if err := enc.Encode(payload); err != nil {
				return err
			}
		}
		slog.Info("Dry run, nothing submitted", "peers", len(parsed.Peers()))
		return nil
	}

	client, err := webui.NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return err
	}

	slog.Info("Importing peers",
		"config", cfg.ConfigPath,
		"peers", len(parsed.Peers()),
		"create_url", cfg.CreateURL,
	)

	summary, err := importer.New(cfg, client, stdout).Run(ctx, parsed)
	if err != nil {
		return err
	}

	slog.Info("Import finished",
		"peers", summary.Peers,
		"created", summary.Created,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
