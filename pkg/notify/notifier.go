package notify

import (
	"context"

	"go.uber.org/zap"
)

// Channel names recorded on escalation records.
const (
	ChannelChat  = "chat"
	ChannelEmail = "email"
)

// Notifier fans one alert out to every configured channel and reports which
// channels accepted it. A channel failing to deliver is logged, never fatal:
// an escalation with a dead chat webhook must still reach email.
type Notifier interface {
	Notify(ctx context.Context, channelID, subject, text string) []string
}

type notifier struct {
	chat    Sink
	mail    MailSender
	emailTo string
	logger  *zap.Logger
}

func (n *notifier) Notify(ctx context.Context, channelID, subject, text string) []string {
	var delivered []string
	if n.chat != nil {
		if err := n.chat.SendMessage(ctx, channelID, subject+"\n"+text); err != nil {
			n.logger.Error("chat notification failed", zap.String("channel_id", channelID), zap.Error(err))
		} else {
			delivered = append(delivered, ChannelChat)
		}
	}
	if n.mail != nil && n.emailTo != "" {
		if err := n.mail.SendMail([]string{n.emailTo}, subject, "", text); err != nil {
			n.logger.Error("email notification failed", zap.String("to", n.emailTo), zap.Error(err))
		} else {
			delivered = append(delivered, ChannelEmail)
		}
	}
	return delivered
}

// NewNotifier builds a fan-out notifier. Either sink may be nil when the
// channel is not configured.
func NewNotifier(chat Sink, mail MailSender, emailTo string, logger *zap.Logger) Notifier {
	return &notifier{
		chat:    chat,
		mail:    mail,
		emailTo: emailTo,
		logger:  logger,
	}
}
