package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradebot/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram pushes operator messages to a chat. Sends retry up to 3 times
// with linear backoff before giving up.
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetAPIBase overrides the Telegram endpoint for testing.
func (t *Telegram) SetAPIBase(base string) { t.apiBase = base }

func (t *Telegram) Push(text string) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram not configured")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, _ := json.Marshal(payload)

	var lastErr error
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := t.client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("telegram status=%d", resp.StatusCode)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return lastErr
}
