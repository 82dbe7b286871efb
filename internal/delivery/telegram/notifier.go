package telegram

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
)

// maxMessageRunes Telegram text message limit
const maxMessageRunes = 4096

// Notifier posts batch reports to an operator chat
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates the bot client and checks the token
func NewNotifier(token string, chatID int64) (repository.Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// newNotifierWithEndpoint points the bot at another API endpoint ("http://host/bot%s/%s")
func newNotifierWithEndpoint(token, endpoint string, client *http.Client, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// Notify sends a plain text report, truncated to the message limit
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, truncate(text, maxMessageRunes))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
