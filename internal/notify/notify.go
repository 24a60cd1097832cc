package notify

import (
	"context"

	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

// Notifier surfaces non-blocking transient messages to the user. Failures
// reported through it never interrupt the flow that raised them.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// LogNotifier renders notifications through the structured logger.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(ctx context.Context, msg string) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Info(n.log.WithField(ctx, "notice", "success"), msg)
}

func (n *LogNotifier) Info(ctx context.Context, msg string) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Info(n.log.WithField(ctx, "notice", "info"), msg)
}

func (n *LogNotifier) Warning(ctx context.Context, msg string) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Warn(n.log.WithField(ctx, "notice", "warning"), msg)
}

func (n *LogNotifier) Error(ctx context.Context, msg string) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Warn(n.log.WithField(ctx, "notice", "error"), msg)
}
