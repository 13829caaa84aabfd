// Package notify pushes run results to Telegram. A notification failure is
// logged and swallowed; it never fails a run.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobradar/internal/models"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func (b *Bot) escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func (b *Bot) SendJob(job models.Job) error {
	msgText := fmt.Sprintf("💼 *%s*\n", b.escapeMarkdown(job.Title))

	company := job.Company
	if company == "" {
		company = "N/A"
	}
	msgText += fmt.Sprintf("🏢 %s\n", b.escapeMarkdown(company))

	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	msgText += fmt.Sprintf("📍 %s\n", b.escapeMarkdown(loc))

	msgText += fmt.Sprintf("🏷️ %s\n", b.escapeMarkdown(job.RoleCategory))

	if job.PublishedDate.Valid {
		msgText += fmt.Sprintf("📅 %s\n", job.PublishedDate.Time.Format("2006\\-01\\-02"))
	}

	if job.DetectedKeywords != "" {
		msgText += fmt.Sprintf("🔑 %s\n", b.escapeMarkdown(job.DetectedKeywords))
	}

	msgText += fmt.Sprintf("🔖 Source: %s\n", b.escapeMarkdown(job.Source))

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"

	if job.URL != "" {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.URL),
			),
		)
		msg.ReplyMarkup = keyboard
	}

	_, err := b.api.Send(msg)
	return err
}

// SendSummary pushes the end-of-run stats in one message.
func (b *Bot) SendSummary(stats models.RunStats) error {
	text := fmt.Sprintf("ℹ️ Run finished: %d scraped, %d filtered out, %d added, %d updated",
		stats.TotalScraped, stats.FilteredOut, stats.Added, stats.Updated)
	if len(stats.SourceErrors) > 0 {
		text += fmt.Sprintf(" (%d source errors)", len(stats.SourceErrors))
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}
