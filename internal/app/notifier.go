package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"DomainWatch/domain"
	"DomainWatch/logging"

	"go.uber.org/zap"
)

// Subject 是汇总提醒的标题。
const Subject = "Aviso de Expiración de Dominios"

// Notifier 一次性发送整批需要提醒的域名。
type Notifier interface {
	Send(ctx context.Context, batch []domain.DomainRecord) error
}

// Channel 是单个投递渠道，例如邮件或 Telegram。
type Channel interface {
	Name() string
	Deliver(ctx context.Context, subject, body string) error
}

// NotifierService 生成汇总消息并投递到所有渠道。
type NotifierService struct {
	Channels []Channel
	Logger   *zap.Logger
}

var _ Notifier = (*NotifierService)(nil)

func (n *NotifierService) Send(ctx context.Context, batch []domain.DomainRecord) error {
	if len(n.Channels) == 0 {
		return ErrNotifierDisabled
	}
	if len(batch) == 0 {
		return nil
	}
	log := logging.OrNop(n.Logger)

	body := BuildMessage(batch)
	var errs []error
	for _, ch := range n.Channels {
		if err := ch.Deliver(ctx, Subject, body); err != nil {
			log.Warn("notify_channel_failed", zap.String("channel", ch.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		log.Info("notify_channel_sent", zap.String("channel", ch.Name()), zap.Int("domains", len(batch)))
	}
	return errors.Join(errs...)
}

// BuildMessage 生成纯文本汇总正文。
func BuildMessage(batch []domain.DomainRecord) string {
	var b strings.Builder
	b.WriteString("Hola,\n\nLos siguientes dominios requieren tu atención por su próxima fecha de expiración:\n")
	for _, rec := range batch {
		b.WriteString("\n------------------------------------\n")
		fmt.Fprintf(&b, "Dominio: %s\n", orNA(rec.Domain))
		fmt.Fprintf(&b, "  Expira: %s\n", orNA(rec.ExpiresOn.String()))
		fmt.Fprintf(&b, "  Registrar: %s\n", orNA(rec.Registrar))
		fmt.Fprintf(&b, "  Registrante: %s\n", orNA(rec.Registrant))
		fmt.Fprintf(&b, "  NameServers: %s\n", orNA(strings.Join(rec.NameServers, ", ")))
	}
	b.WriteString("\n\nSaludos,\nTu monitor de dominios.")
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
