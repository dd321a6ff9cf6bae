package notify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/sijagad/pkg/logger"
)

const chatActionTyping = "typing"

// Command is an inbound bot command addressed to a chat.
type Command struct {
	ChatID string
	Text   string
	Sender string
	At     time.Time
}

func (uc *UseCase) registerCommands() {
	reply := func(ctx context.Context, payload interface{}) (interface{}, error) {
		cmd := payload.(Command)
		if uc.chat != nil {
			if err := uc.chat.SendChatAction(ctx, cmd.ChatID, chatActionTyping); err != nil {
				logger.WithRequestID(ctx, uc.logger).Warn("chat action failed", zap.Error(err))
			}
		}
		text, _, err := uc.reports.Upcoming(ctx, cmd.At)
		if err != nil {
			return nil, err
		}
		return text, uc.outbox.SendTelegram(ctx, cmd.ChatID, text)
	}
	uc.commands.RegisterCommand("/info", reply)
	uc.commands.RegisterCommand("/start", reply)
}

// HandleCommand runs a recognised command and reports whether it was one.
// Anything else is ignored.
func (uc *UseCase) HandleCommand(ctx context.Context, cmd Command) (bool, error) {
	name := strings.TrimSpace(cmd.Text)
	if !uc.commands.HasCommand(name) {
		return false, nil
	}
	if cmd.At.IsZero() {
		cmd.At = time.Now()
	}
	logger.WithRequestID(ctx, uc.logger).Info("bot command received",
		zap.String("command", name), zap.String("sender", cmd.Sender))
	_, err := uc.commands.ExecuteCommand(ctx, name, cmd)
	return true, err
}
