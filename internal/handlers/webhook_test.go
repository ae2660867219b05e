package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kitsubot/internal/bot"
	"kitsubot/internal/handlers"
	"kitsubot/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (t *recordingTransport) SendMessage(_ context.Context, _ int64, text string, _ string, _ *models.InlineKeyboardMarkup) (*models.Message, error) {
	t.mu.Lock()
	t.sent = append(t.sent, text)
	t.mu.Unlock()
	close(t.done)
	return &models.Message{MessageId: 1}, nil
}

func (t *recordingTransport) EditMessageText(_ context.Context, _, _ int64, _ string, _ string, _ *models.InlineKeyboardMarkup) (*models.Message, error) {
	return &models.Message{MessageId: 1}, nil
}

func (t *recordingTransport) AnswerCallbackQuery(_ context.Context, _ string, _ string, _ bool) error {
	return nil
}

type noopTracker struct{}

func (noopTracker) FetchEntries(_ context.Context, _, _ int64) (*models.EntryPage, error) {
	return &models.EntryPage{}, nil
}

func (noopTracker) GetEntry(_ context.Context, _, _ int64) (*models.EntryDetail, error) {
	return &models.EntryDetail{}, nil
}

func (noopTracker) UpdateProgress(_ context.Context, _, _ string, _ int64, _ string) error {
	return nil
}

func (noopTracker) InvalidateUser(_ context.Context, _ int64) {}

type noopDirectory struct{}

func (noopDirectory) KitsuId(_ int64) (int64, bool) { return 0, false }

func (noopDirectory) Token(_, _ int64) (string, bool) { return "", false }

func (noopDirectory) Refresh(_ context.Context) ([]models.Account, error) {
	return nil, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newWebhook(transport *recordingTransport) http.HandlerFunc {
	handler := bot.NewHandler(transport, noopTracker{}, noopDirectory{}, testLogger())
	return handlers.WebhookHandler(handler, testLogger())
}

func TestWebhookProcessesUpdateInBackground(t *testing.T) {
	transport := &recordingTransport{done: make(chan struct{})}
	webhook := newWebhook(transport)

	body := `{
		"update_id": 9,
		"message": {"message_id": 1, "text": "frobnicate", "chat": {"id": 55}, "from": {"id": 10}}
	}`
	r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()

	webhook(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case <-transport.done:
	case <-time.After(time.Second):
		t.Fatal("update was not processed")
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "Unknown command.", transport.sent[0])
}

func TestWebhookRejectsNonPost(t *testing.T) {
	webhook := newWebhook(&recordingTransport{done: make(chan struct{})})

	r := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	w := httptest.NewRecorder()

	webhook(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	webhook := newWebhook(&recordingTransport{done: make(chan struct{})})

	r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	webhook(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
