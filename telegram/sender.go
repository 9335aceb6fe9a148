package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender 把消息发送到固定的 chat，超长消息自动分段。不做重试。
type BotSender struct {
	send    func(c tgbotapi.Chattable) error
	chatID  int64
	timeout time.Duration
}

func NewBotSender(token string, chatID int64, timeout time.Duration) (*BotSender, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &BotSender{
		send: func(c tgbotapi.Chattable) error {
			_, err := bot.Send(c)
			return err
		},
		chatID:  chatID,
		timeout: timeout,
	}, nil
}

func (s *BotSender) Name() string { return "telegram" }

// Deliver 以标题加正文的形式发送一条汇总消息。
func (s *BotSender) Deliver(ctx context.Context, subject, body string) error {
	return s.Send(ctx, subject+"\n\n"+body)
}

const tgMaxLen = 3800

func (s *BotSender) Send(ctx context.Context, msg string) error {
	parts := splitTelegramText(msg, tgMaxLen)
	for i, p := range parts {
		if len(parts) > 1 {
			p = fmt.Sprintf("(%d/%d)\n%s", i+1, len(parts), p)
		}
		if err := s.sendOne(ctx, tgbotapi.NewMessage(s.chatID, p)); err != nil {
			return err
		}
	}
	return nil
}

func (s *BotSender) sendOne(ctx context.Context, msg tgbotapi.MessageConfig) error {
	sendCtx := ctx
	cancel := func() {}
	if s.timeout > 0 {
		sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- s.send(msg)
	}()

	select {
	case <-sendCtx.Done():
		return fmt.Errorf("发送 Telegram 超时: %w", sendCtx.Err())
	case err := <-result:
		if err != nil {
			return fmt.Errorf("发送 Telegram 失败: %w", err)
		}
		return nil
	}
}

func splitTelegramText(s string, limit int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{""}
	}
	if len(s) <= limit {
		return []string{s}
	}

	var out []string
	for len(s) > limit {
		// 优先在 limit 以内找最后一个换行，其次空格，都没有就硬切
		cut := strings.LastIndex(s[:limit], "\n")
		if cut < limit/3 {
			cut = strings.LastIndex(s[:limit], " ")
		}
		if cut <= 0 {
			cut = limit
		}

		part := strings.TrimSpace(s[:cut])
		if part != "" {
			out = append(out, part)
		}
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
