package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pricecompare/internal/app"
)

const usage = `usage: pricecompare <command> [flags]

commands:
  serve    start the local comparator web UI
  export   compare price lists and write the comparison spreadsheet
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, os.Args[1], os.Args[2:], cfg, logger, os.Stdout); err != nil {
		logger.Error(os.Args[1], slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg *app.Config, logger *slog.Logger, stdout io.Writer) error {
	switch command {
	case "serve":
		return runServe(ctx, args, cfg, logger)
	case "export":
		return runExport(ctx, args, cfg, logger, stdout)
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
