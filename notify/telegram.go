package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TelegramAPI is the Bot API root.
const TelegramAPI = "https://api.telegram.org"

// Telegram posts alerts to a chat through the Bot API.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
	// Retries is the number of attempts per message. Zero means 2.
	Retries int
	// Backoff is the base wait between attempts. Zero means 250ms.
	Backoff time.Duration
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  TelegramAPI,
		Client:   &http.Client{Timeout: 2 * time.Second},
	}
}

// Notify sends msg with linear backoff between attempts.
func (t *Telegram) Notify(ctx context.Context, msg string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return errors.New("telegram: missing bot token or chat id")
	}
	base := strings.TrimRight(t.BaseURL, "/")
	if base == "" {
		base = TelegramAPI
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, t.BotToken)

	body, err := json.Marshal(map[string]any{
		"chat_id": t.ChatID,
		"text":    msg,
	})
	if err != nil {
		return err
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	tries := t.Retries
	if tries <= 0 {
		tries = 2
	}
	backoff := t.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < tries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * backoff):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return lastErr
}
