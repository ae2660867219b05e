package bot

import (
	"context"

	"kitsubot/internal/command"
	"kitsubot/internal/models"

	"github.com/sirupsen/logrus"
)

// Transport sends, edits and acknowledges Telegram messages.
type Transport interface {
	SendMessage(ctx context.Context, chatId int64, text string, parseMode string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error)
	EditMessageText(ctx context.Context, chatId, messageId int64, text string, parseMode string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackQueryId string, text string, showAlert bool) error
}

// Tracker reads and updates anime library entries on the tracking service.
type Tracker interface {
	FetchEntries(ctx context.Context, kitsuId, offset int64) (*models.EntryPage, error)
	GetEntry(ctx context.Context, kitsuId, animeId int64) (*models.EntryDetail, error)
	UpdateProgress(ctx context.Context, token, entryId string, progress int64, animeId string) error
	InvalidateUser(ctx context.Context, kitsuId int64)
}

// Directory resolves Telegram users to their linked Kitsu accounts.
type Directory interface {
	KitsuId(telegramId int64) (int64, bool)
	Token(telegramId, kitsuId int64) (string, bool)
	Refresh(ctx context.Context) ([]models.Account, error)
}

// Handler routes parsed commands to their workflow. All state a workflow
// needs to resume rides in the callback payload; nothing is kept between
// events.
type Handler struct {
	bot    Transport
	api    Tracker
	db     Directory
	logger *logrus.Logger
}

func NewHandler(bot Transport, api Tracker, db Directory, logger *logrus.Logger) *Handler {
	return &Handler{
		bot:    bot,
		api:    api,
		db:     db,
		logger: logger,
	}
}

// ProcessMessage parses a chat message and runs the matching workflow.
// Text that is not a recognized command gets the unknown-command notice.
func (h *Handler) ProcessMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return ErrInvalidMessage
	}

	chatId := msg.Chat.Id
	userId := msg.From.Id
	text := msg.Text

	h.logger.WithFields(logrus.Fields{
		"user_id": userId,
		"chat_id": chatId,
		"text":    text,
	}).Info("Processing message")

	cmd, err := command.ParseMessageCommand(text)
	if err != nil {
		return h.unknown(ctx, chatId)
	}

	switch cmd {
	case command.MsgList:
		return h.list(ctx, userId, chatId)
	case command.MsgUpdate:
		return h.update(ctx, chatId)
	case command.MsgVersion:
		return h.version(ctx, chatId)
	default:
		return h.unknown(ctx, chatId)
	}
}

// ProcessCallback parses an inline-button press and runs the matching
// workflow. A callback without its originating message cannot be answered
// in place and is dropped as outdated.
func (h *Handler) ProcessCallback(ctx context.Context, query *models.CallbackQuery) error {
	if query == nil || query.From == nil {
		return ErrInvalidMessage
	}

	userId := query.From.Id
	data := query.Data

	h.logger.WithFields(logrus.Fields{
		"user_id": userId,
		"data":    data,
	}).Info("Processing callback")

	if query.Message == nil || query.Message.Chat == nil {
		return ErrOutdatedMessage
	}

	msgId := query.Message.MessageId
	chatId := query.Message.Chat.Id

	cmd, err := command.ParseQueryCommand(data)
	if err != nil {
		return h.unknown(ctx, chatId)
	}

	switch {
	case cmd.Offset != nil:
		return h.offset(ctx, msgId, chatId, cmd.Offset, query.Id)
	case cmd.Detail != nil:
		return h.detail(ctx, msgId, chatId, cmd.Detail, query.Id)
	case cmd.Progress != nil:
		return h.progress(ctx, msgId, chatId, userId, cmd.Progress, query.Id)
	default:
		return h.unknown(ctx, chatId)
	}
}
