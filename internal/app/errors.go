package app

import "errors"

var (
	ErrMissingDependencies = errors.New("missing dependencies")
	// ErrNoRegistration 查询结果中没有规范域名，视为查询失败。
	ErrNoRegistration = errors.New("no registration data")
	// ErrNotifierDisabled 没有可用的通知渠道。
	ErrNotifierDisabled = errors.New("no notification channel configured")
)
