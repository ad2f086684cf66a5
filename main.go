package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Контекст отменяется по сигналу: и stdio сервер,
	// и все незавершенные вызовы инструментов получают отмену
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env удобен при локальной разработке; отсутствие файла — не ошибка
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "telegram-mcp",
		Short:        "MCP server for a Telegram account",
		Long: `telegram-mcp exposes a Telegram account as a set of MCP tools:
sending, editing and deleting messages, searching dialogs, managing
drafts, fetching history, downloading media and resolving message links.

Run "telegram-mcp login" once to authenticate, then "telegram-mcp start"
to serve tools over stdio.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildLogger создает логгер, пишущий только в stderr:
// stdout принадлежит MCP транспорту
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
