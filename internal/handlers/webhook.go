package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kitsubot/internal/bot"
	"kitsubot/internal/models"
	"kitsubot/internal/services"

	"github.com/sirupsen/logrus"
)

const processTimeout = 30 * time.Second

// WebhookHandler answers Telegram webhook calls. The update is decoded,
// acknowledged with 200 right away and processed in the background so
// Telegram does not re-deliver while a workflow runs.
func WebhookHandler(handler *bot.Handler, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		update, err := services.ParseTelegramRequest(r)
		if err != nil {
			logger.WithError(err).Error("Error parsing request")
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)

		go func() {
			defer cancel()
			processUpdate(ctx, handler, logger, update)
		}()

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

func processUpdate(ctx context.Context, handler *bot.Handler, logger *logrus.Logger, update *models.Update) {
	var err error

	switch {
	case update.CallbackQuery != nil:
		err = handler.ProcessCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		err = handler.ProcessMessage(ctx, update.Message)
	default:
		return
	}

	if err != nil {
		log := logger.WithError(err).WithField("update_id", update.UpdateId)
		if errors.Is(err, bot.ErrOutdatedMessage) || errors.Is(err, bot.ErrInvalidMessage) {
			log.Warn("Dropped update")
			return
		}
		log.Error("Failed to process update")
	}
}
