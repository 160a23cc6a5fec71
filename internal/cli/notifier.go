package cli

import (
	"context"
	"log/slog"

	"github.com/jwtly10/coffeesave/internal/lsp"
)

// LogNotifier writes user facing messages to a structured logger
type LogNotifier struct {
	Logger *slog.Logger
}

var _ lsp.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n *LogNotifier) Success(ctx context.Context, msg string) {
	n.logger().InfoContext(ctx, msg)
}

func (n *LogNotifier) Info(ctx context.Context, msg string) {
	n.logger().InfoContext(ctx, msg)
}

func (n *LogNotifier) Warning(ctx context.Context, msg string) {
	n.logger().WarnContext(ctx, msg)
}

func (n *LogNotifier) Error(ctx context.Context, msg string) {
	n.logger().ErrorContext(ctx, msg)
}
