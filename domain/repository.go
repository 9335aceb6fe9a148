package domain

// Repository 管理监控域名记录的持久化。
type Repository interface {
	// Load 读取全部记录；存储不存在时返回空列表。
	Load() ([]DomainRecord, error)
	// Save 覆盖写回全部记录。
	Save(records []DomainRecord) error
}
