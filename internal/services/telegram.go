package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kitsubot/internal/models"

	"github.com/sirupsen/logrus"
)

const telegramAPIURL = "https://api.telegram.org/bot"

// TelegramClient talks to the Telegram Bot API over HTTPS.
type TelegramClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewTelegramClient(token string, logger *logrus.Logger) *TelegramClient {
	return NewTelegramClientWithBaseURL(telegramAPIURL, token, logger)
}

func NewTelegramClientWithBaseURL(baseURL, token string, logger *logrus.Logger) *TelegramClient {
	return &TelegramClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SendMessage sends a new message to a Telegram chat, optionally with an
// inline keyboard, and returns the message Telegram created.
func (c *TelegramClient) SendMessage(ctx context.Context, chatId int64, text string, parseMode string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	request := models.SendMessageRequest{
		ChatId:      chatId,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: keyboard,
	}

	return c.callMessageMethod(ctx, "sendMessage", request)
}

// EditMessageText replaces the text and inline keyboard of an existing
// message in place.
func (c *TelegramClient) EditMessageText(ctx context.Context, chatId, messageId int64, text string, parseMode string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	request := models.EditMessageTextRequest{
		ChatId:      chatId,
		MessageId:   messageId,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: keyboard,
	}

	return c.callMessageMethod(ctx, "editMessageText", request)
}

// AnswerCallbackQuery acknowledges a callback query, optionally showing a
// popup notification (showAlert = true).
func (c *TelegramClient) AnswerCallbackQuery(ctx context.Context, callbackQueryId string, text string, showAlert bool) error {
	request := models.AnswerCallbackQueryRequest{
		CallbackQueryId: callbackQueryId,
		Text:            text,
		ShowAlert:       showAlert,
	}

	_, err := c.call(ctx, "answerCallbackQuery", request)
	return err
}

// ParseTelegramRequest decodes an incoming Telegram webhook HTTP request
// into an Update.
func ParseTelegramRequest(r *http.Request) (*models.Update, error) {
	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, fmt.Errorf("failed to decode update: %w", err)
	}
	return &update, nil
}

func (c *TelegramClient) callMessageMethod(ctx context.Context, method string, payload interface{}) (*models.Message, error) {
	response, err := c.call(ctx, method, payload)
	if err != nil {
		return nil, err
	}
	return response.Result, nil
}

func (c *TelegramClient) call(ctx context.Context, method string, payload interface{}) (*models.APIResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram %s API error (status %d)", method, resp.StatusCode)
	}

	var response models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if !response.Ok {
		return nil, fmt.Errorf("telegram %s rejected: %s", method, response.Description)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
	}).Debug("Telegram API call successful")

	return &response, nil
}
