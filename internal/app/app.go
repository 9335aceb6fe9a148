package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DomainWatch/domain"
	"DomainWatch/logging"
	"DomainWatch/tools"

	"go.uber.org/zap"
)

// App 串联一次完整的检查流程：
// 读取 → 合并新域名 → 刷新 → 判定 → 提醒 → 排序 → 写回。
type App struct {
	Repo      domain.Repository
	Checker   *ExpiryCheckerService
	Notifier  Notifier
	Collector *Collector
	Logger    *zap.Logger
	Now       func() time.Time
}

// Report 汇总一次运行的结果。
type Report struct {
	Total     int
	Added     []string
	Failed    []string
	Notified  []string
	NotifyErr error
}

// Run 执行一次检查。只有读取或写回记录失败才返回错误；
// 查询和通知的失败都降级处理，已刷新的记录总会写回。
func (a *App) Run(ctx context.Context, requested []string) (Report, error) {
	var report Report
	if a.Repo == nil || a.Checker == nil {
		return report, ErrMissingDependencies
	}
	log := logging.OrNop(a.Logger)
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	records, err := a.Repo.Load()
	if err != nil {
		return report, fmt.Errorf("load records: %w", err)
	}
	log.Info("records_loaded", zap.Int("count", len(records)))

	names := append([]string{}, requested...)
	names = append(names, a.Collector.Collect(ctx)...)
	records, report.Added = domain.Merge(records, names)
	if len(report.Added) > 0 {
		log.Info("domains_added", zap.Strings("domains", report.Added))
	}
	report.Total = len(records)

	failed, refreshErr := a.Checker.Refresh(ctx, records)
	report.Failed = failed
	if refreshErr != nil {
		log.Error("refresh_interrupted", zap.Error(refreshErr))
		return report, errors.Join(refreshErr, a.persist(records))
	}

	batch := a.Checker.Evaluate(records, tools.Today(now()))
	for _, rec := range batch {
		report.Notified = append(report.Notified, rec.Domain)
	}

	if len(batch) == 0 {
		log.Info("nothing_to_notify")
	} else {
		report.NotifyErr = a.notify(ctx, batch)
		if report.NotifyErr != nil {
			log.Warn("notify_failed", zap.Error(report.NotifyErr), zap.Int("domains", len(batch)))
		}
	}

	if err := a.persist(records); err != nil {
		return report, err
	}
	log.Info("run_completed",
		zap.Int("total", report.Total),
		zap.Int("failed", len(report.Failed)),
		zap.Int("notified", len(report.Notified)),
	)
	return report, nil
}

func (a *App) notify(ctx context.Context, batch []domain.DomainRecord) error {
	if a.Notifier == nil {
		return ErrNotifierDisabled
	}
	return a.Notifier.Send(ctx, batch)
}

func (a *App) persist(records []domain.DomainRecord) error {
	domain.SortByExpiry(records)
	if err := a.Repo.Save(records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}
