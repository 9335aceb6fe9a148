package app

import (
	"time"

	"DomainWatch/domain"
	"DomainWatch/tools"
)

type Reason string

const (
	ReasonDeadline        Reason = "deadline"
	ReasonFirstWarning    Reason = "first_warning"
	ReasonIntervalElapsed Reason = "interval_elapsed"
	ReasonOutsideWindow   Reason = "outside_window"
	ReasonCoolDown        Reason = "cool_down"
	ReasonNoExpiry        Reason = "no_expiry"
	ReasonBadDate         Reason = "bad_date"
)

// Decision 是对单条记录的通知判定结果。
type Decision struct {
	Notify   bool
	Reason   Reason
	DaysLeft int
}

// Policy 决定记录是否需要提醒。
// ThresholdDays 内的域名进入提醒窗口，IntervalDays 限制重复提醒的频率，
// 剩余 1 天及以内时无视冷却期。
type Policy struct {
	ThresholdDays int
	IntervalDays  int
}

func (p Policy) Decide(rec domain.DomainRecord, today time.Time) Decision {
	if rec.ExpiresOn.IsZero() || rec.ExpiresOn.IsError() {
		return Decision{Reason: ReasonNoExpiry}
	}
	expiry, err := rec.ExpiresOn.Time()
	if err != nil {
		return Decision{Reason: ReasonBadDate}
	}

	days := tools.DaysBetween(today, expiry)
	if days > p.ThresholdDays {
		return Decision{Reason: ReasonOutsideWindow, DaysLeft: days}
	}

	var last time.Time
	if !rec.LastNotice.IsZero() {
		last, err = rec.LastNotice.Time()
		if err != nil {
			return Decision{Reason: ReasonBadDate, DaysLeft: days}
		}
	}

	switch {
	case days <= 1:
		return Decision{Notify: true, Reason: ReasonDeadline, DaysLeft: days}
	case last.IsZero():
		return Decision{Notify: true, Reason: ReasonFirstWarning, DaysLeft: days}
	case tools.DaysBetween(last, today) >= p.IntervalDays:
		return Decision{Notify: true, Reason: ReasonIntervalElapsed, DaysLeft: days}
	default:
		return Decision{Reason: ReasonCoolDown, DaysLeft: days}
	}
}
