package app

import (
	"context"

	"DomainWatch/logging"

	"go.uber.org/zap"
)

// DomainSource 提供额外需要监控的域名，例如 Cloudflare 账户下的 zone。
type DomainSource interface {
	Name() string
	Names(ctx context.Context) ([]string, error)
}

// Collector 汇总所有来源的域名；单个来源失败只记录日志。
type Collector struct {
	Sources []DomainSource
	Logger  *zap.Logger
}

func (c *Collector) Collect(ctx context.Context) []string {
	if c == nil {
		return nil
	}
	log := logging.OrNop(c.Logger)

	var out []string
	for _, src := range c.Sources {
		names, err := src.Names(ctx)
		if err != nil {
			log.Warn("source_failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		log.Info("source_collected", zap.String("source", src.Name()), zap.Int("domains", len(names)))
		out = append(out, names...)
	}
	return out
}
