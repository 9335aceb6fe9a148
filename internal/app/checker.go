package app

import (
	"context"
	"time"

	"DomainWatch/domain"
	"DomainWatch/logging"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ExpiryCheckerService 刷新注册信息并按 Policy 选出需要提醒的域名。
type ExpiryCheckerService struct {
	Lookup       LookupClient
	Policy       Policy
	RateLimit    time.Duration
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// Refresh 逐条查询并原地更新 records，返回查询失败的域名。
// 查询失败只把到期日写成错误标记，其余字段保持不变，Domain 和 LastNotice 从不修改。
func (c *ExpiryCheckerService) Refresh(ctx context.Context, records []domain.DomainRecord) ([]string, error) {
	if c.Lookup == nil {
		return nil, ErrMissingDependencies
	}
	log := logging.OrNop(c.Logger)

	var limiter *rate.Limiter
	if c.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(c.RateLimit), 1)
	}

	var failed []string
	for i := range records {
		rec := &records[i]
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return failed, err
			}
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		log.Info("lookup_started", zap.String("domain", rec.Domain))

		lookupCtx := ctx
		cancel := func() {}
		if c.QueryTimeout > 0 {
			lookupCtx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
		}
		reg, err := c.Lookup.Lookup(lookupCtx, rec.Domain)
		cancel()

		if err != nil {
			log.Warn("lookup_failed", zap.String("domain", rec.Domain), zap.Error(err))
			rec.ExpiresOn = domain.ErrorDate()
			failed = append(failed, rec.Domain)
			continue
		}

		rec.RegisteredOn = reg.CreatedOn
		rec.ExpiresOn = reg.ExpiresOn
		rec.Registrar = reg.Registrar
		rec.Registrant = reg.Registrant
		rec.NameServers = reg.NameServers
		log.Debug("lookup_done",
			zap.String("domain", rec.Domain),
			zap.String("expires_on", rec.ExpiresOn.String()),
			zap.String("registrar", rec.Registrar),
		)
	}
	return failed, nil
}

// Evaluate 对每条记录做通知判定，命中的记录 LastNotice 置为 today 并加入返回的批次。
func (c *ExpiryCheckerService) Evaluate(records []domain.DomainRecord, today time.Time) []domain.DomainRecord {
	log := logging.OrNop(c.Logger)

	var batch []domain.DomainRecord
	for i := range records {
		rec := &records[i]
		d := c.Policy.Decide(*rec, today)
		if !d.Notify {
			log.Debug("notify_skipped",
				zap.String("domain", rec.Domain),
				zap.String("reason", string(d.Reason)),
				zap.Int("days_left", d.DaysLeft),
			)
			continue
		}
		rec.LastNotice = domain.NewDate(today)
		batch = append(batch, *rec)
		log.Info("notify_selected",
			zap.String("domain", rec.Domain),
			zap.String("reason", string(d.Reason)),
			zap.Int("days_left", d.DaysLeft),
		)
	}
	return batch
}
