package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tradebot/internal/config"
	"tradebot/internal/logger"
)

// CommandHandler is what the operator can ask of the running bot. Every
// method returns the text to send back.
type CommandHandler interface {
	Analyze(ctx context.Context, symbol string) string
	Status() string
	Pause() string
	Resume() string
	Silence(d time.Duration) string
}

// CommandListener long-polls the Telegram getUpdates endpoint and dispatches
// operator commands. Only messages from the configured chat are honored.
type CommandListener struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
	notifier Notifier
	handler  CommandHandler
	offset   int64
}

func NewCommandListener(cfg config.TelegramConfig, n Notifier, h CommandHandler) *CommandListener {
	return &CommandListener{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: 40 * time.Second},
		notifier: n,
		handler:  h,
	}
}

// SetAPIBase overrides the Telegram endpoint for testing.
func (l *CommandListener) SetAPIBase(base string) { l.apiBase = base }

// Run polls until the context is canceled.
func (l *CommandListener) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := l.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warnf("telegram poll failed: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *CommandListener) poll(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=30&offset=%d", l.apiBase, l.botToken, l.offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if !gjson.GetBytes(body, "ok").Bool() {
		return fmt.Errorf("telegram getUpdates not ok: %s", gjson.GetBytes(body, "description").String())
	}
	for _, update := range gjson.GetBytes(body, "result").Array() {
		if id := update.Get("update_id").Int(); id >= l.offset {
			l.offset = id + 1
		}
		chat := update.Get("message.chat.id").String()
		if chat != l.chatID {
			continue
		}
		text := strings.TrimSpace(update.Get("message.text").String())
		if text == "" {
			continue
		}
		l.dispatch(ctx, text)
	}
	return nil
}

func (l *CommandListener) dispatch(ctx context.Context, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))

	var reply string
	switch cmd {
	case "analyze":
		if len(fields) < 2 {
			reply = "usage: /analyze <symbol>"
			break
		}
		reply = l.handler.Analyze(ctx, strings.ToUpper(fields[1]))
	case "status":
		reply = l.handler.Status()
	case "pause":
		reply = l.handler.Pause()
	case "resume":
		reply = l.handler.Resume()
	case "silence":
		d := time.Hour
		if len(fields) >= 2 {
			if mins, err := strconv.Atoi(fields[1]); err == nil && mins > 0 {
				d = time.Duration(mins) * time.Minute
			}
		}
		reply = l.handler.Silence(d)
	default:
		return
	}
	if reply == "" {
		return
	}
	if err := l.notifier.Push(reply); err != nil {
		logger.Warnf("command reply failed: %v", err)
	}
}
