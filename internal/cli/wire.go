package cli

import (
	"context"
	"sort"
	"time"

	"DomainWatch/awsclient"
	"DomainWatch/cfclient"
	"DomainWatch/config"
	"DomainWatch/domain"
	"DomainWatch/internal/app"
	"DomainWatch/mailer"
	"DomainWatch/telegram"

	"go.uber.org/zap"
)

const telegramTimeout = 10 * time.Second

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app.App, error) {
	lookup, err := app.NewLookupClient(cfg.Lookup.Providers, cfg.Lookup.Timeout)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger, lookup, buildChannels(cfg, logger), buildSources(ctx, cfg, logger)), nil
}

func newApp(cfg *config.Config, logger *zap.Logger, lookup app.LookupClient, channels []app.Channel, sources []app.DomainSource) *app.App {
	return &app.App{
		Repo: domain.NewCSVRepository(cfg.RecordFile),
		Checker: &app.ExpiryCheckerService{
			Lookup: lookup,
			Policy: app.Policy{
				ThresholdDays: cfg.ThresholdDays,
				IntervalDays:  cfg.NotifyIntervalDays,
			},
			RateLimit:    cfg.Lookup.RateLimit,
			QueryTimeout: cfg.Lookup.Timeout,
			Logger:       logger,
		},
		Notifier:  &app.NotifierService{Channels: channels, Logger: logger},
		Collector: &app.Collector{Sources: sources, Logger: logger},
		Logger:    logger,
	}
}

// buildChannels 缺少凭据的渠道直接跳过，只记录警告。
func buildChannels(cfg *config.Config, logger *zap.Logger) []app.Channel {
	var channels []app.Channel

	if cfg.Mail.Enabled() {
		sender, err := mailer.NewSMTPSender(mailer.Config{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			User:      cfg.Mail.User,
			Password:  cfg.Mail.Password,
			Recipient: cfg.Mail.Recipient,
			Timeout:   cfg.Mail.Timeout,
		})
		if err != nil {
			logger.Warn("mail_disabled", zap.Error(err))
		} else {
			channels = append(channels, sender)
		}
	} else {
		logger.Warn("mail_disabled",
			zap.String("reason", "missing "+config.EnvMailUser+", "+config.EnvMailPassword+" or "+config.EnvMailRecipient),
		)
	}

	if cfg.Telegram.Enabled() {
		sender, err := telegram.NewBotSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, telegramTimeout)
		if err != nil {
			logger.Warn("telegram_disabled", zap.Error(err))
		} else {
			channels = append(channels, sender)
		}
	}
	return channels
}

func buildSources(ctx context.Context, cfg *config.Config, logger *zap.Logger) []app.DomainSource {
	var sources []app.DomainSource
	for _, src := range cfclient.NewZoneSources(nil, cfg.CloudflareAccounts) {
		sources = append(sources, src)
	}

	aliases := make([]string, 0, len(cfg.AWSTargets))
	for alias := range cfg.AWSTargets {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		lister, err := awsclient.NewACMLister(ctx, cfg.AWSTargets[alias])
		if err != nil {
			logger.Warn("source_disabled", zap.String("source", "acm:"+alias), zap.Error(err))
			continue
		}
		sources = append(sources, &awsclient.CertificateSource{Alias: alias, Lister: lister})
	}
	return sources
}
