package bot

import (
	"context"
	"fmt"

	"kitsubot/internal/buildinfo"
	"kitsubot/internal/command"
	"kitsubot/internal/models"

	"github.com/sirupsen/logrus"
)

func (h *Handler) unknown(ctx context.Context, chatId int64) error {
	msg, err := h.bot.SendMessage(ctx, chatId, "Unknown command.", "", nil)
	if err != nil {
		return fmt.Errorf("failed to send unknown-command notice: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) version(ctx context.Context, chatId int64) error {
	text := fmt.Sprintf("<pre>kitsubot %s</pre>", buildinfo.Version)

	msg, err := h.bot.SendMessage(ctx, chatId, text, models.ParseModeHTML, nil)
	if err != nil {
		return fmt.Errorf("failed to send version message: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) list(ctx context.Context, userId, chatId int64) error {
	kitsuId, ok := h.db.KitsuId(userId)
	if !ok {
		text := fmt.Sprintf("Non-registered user: %d", userId)
		msg, err := h.bot.SendMessage(ctx, chatId, text, "", nil)
		if err != nil {
			return fmt.Errorf("failed to send non-registered notice: %w", err)
		}
		h.logSent(chatId, msg)
		return nil
	}

	page, err := h.api.FetchEntries(ctx, kitsuId, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch anime list: %w", err)
	}

	text, keyboard := FormatEntryList(kitsuId, page)

	msg, err := h.bot.SendMessage(ctx, chatId, text, models.ParseModeHTML, keyboard)
	if err != nil {
		return fmt.Errorf("failed to send anime list: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) update(ctx context.Context, chatId int64) error {
	accounts, err := h.db.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh accounts: %w", err)
	}

	text := fmt.Sprintf("<pre>Successful update: %d user(s)</pre>", len(accounts))

	msg, err := h.bot.SendMessage(ctx, chatId, text, models.ParseModeHTML, nil)
	if err != nil {
		return fmt.Errorf("failed to send update report: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) offset(ctx context.Context, msgId, chatId int64, cmd *command.OffsetQuery, queryId string) error {
	page, err := h.api.FetchEntries(ctx, cmd.KitsuId, cmd.Offset)
	if err != nil {
		return fmt.Errorf("failed to fetch anime list page: %w", err)
	}

	text, keyboard := FormatEntryList(cmd.KitsuId, page)

	msg, err := h.bot.EditMessageText(ctx, chatId, msgId, text, models.ParseModeHTML, keyboard)
	if err != nil {
		return fmt.Errorf("failed to edit anime list: %w", err)
	}

	h.logSent(chatId, msg)

	if err := h.bot.AnswerCallbackQuery(ctx, queryId, "", false); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}

	return nil
}

func (h *Handler) detail(ctx context.Context, msgId, chatId int64, cmd *command.DetailQuery, _ string) error {
	entry, err := h.api.GetEntry(ctx, cmd.KitsuId, cmd.AnimeId)
	if err != nil {
		return fmt.Errorf("failed to fetch anime detail: %w", err)
	}

	text, keyboard := FormatEntryDetail(cmd.KitsuId, entry)

	msg, err := h.bot.EditMessageText(ctx, chatId, msgId, text, models.ParseModeHTML, keyboard)
	if err != nil {
		return fmt.Errorf("failed to edit anime detail: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) progress(ctx context.Context, msgId, chatId, userId int64, cmd *command.ProgressQuery, queryId string) error {
	token, ok := h.db.Token(userId, cmd.KitsuId)
	if !ok {
		if err := h.bot.AnswerCallbackQuery(ctx, queryId, "Non-registered user", true); err != nil {
			return fmt.Errorf("failed to answer callback: %w", err)
		}
		return nil
	}

	if err := h.api.UpdateProgress(ctx, token, cmd.EntryId, cmd.Progress, cmd.AnimeId); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	h.api.InvalidateUser(ctx, cmd.KitsuId)

	text, keyboard := FormatProgressConfirmation(cmd.KitsuId, cmd.AnimeId, cmd.Progress)

	msg, err := h.bot.EditMessageText(ctx, chatId, msgId, text, models.ParseModeHTML, keyboard)
	if err != nil {
		return fmt.Errorf("failed to edit confirmation: %w", err)
	}

	h.logSent(chatId, msg)
	return nil
}

func (h *Handler) logSent(chatId int64, msg *models.Message) {
	fields := logrus.Fields{"chat_id": chatId}
	if msg != nil {
		fields["message_id"] = msg.MessageId
	}
	h.logger.WithFields(fields).Info("Message delivered")
}
