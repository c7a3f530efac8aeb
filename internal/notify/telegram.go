// Package notify announces finished pipeline jobs to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/numbersff/models"
)

// sender is the part of the bot API the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends job summaries to a single chat
type Telegram struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegram creates a new Telegram notifier
func NewTelegram(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return newTelegram(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newTelegram(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Telegram {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Telegram{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// JobFinished sends a summary of run, retrying with a linear delay
func (t *Telegram) JobFinished(ctx context.Context, run models.JobRun) error {
	msg := tgbotapi.NewMessage(t.chatID, formatJobRun(run))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", t.maxRetries, lastErr)
}

// formatJobRun renders run as a MarkdownV2 message
func formatJobRun(run models.JobRun) string {
	icon := "✅"
	if run.Status != models.JobStatusSucceeded {
		icon = "❌"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* %s\n", icon, escapeMarkdownV2(run.Job), escapeMarkdownV2(run.Status))
	if run.Week > 0 {
		fmt.Fprintf(&b, "Season %d, week %d\n", run.Season, run.Week)
	} else {
		fmt.Fprintf(&b, "Season %d\n", run.Season)
	}
	if run.CompletedAt != nil {
		took := run.CompletedAt.Sub(run.StartedAt).Round(time.Second)
		fmt.Fprintf(&b, "Took %s\n", escapeMarkdownV2(took.String()))
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "`%s`\n", escapeCode(run.Error))
	}
	fmt.Fprintf(&b, "Job %s", escapeMarkdownV2(run.JobID))
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, r := range text {
		if strings.ContainsRune("_*[]()~`>#+-=|{}.!\\", r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeCode escapes text placed inside a MarkdownV2 code span
func escapeCode(text string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(text)
}
