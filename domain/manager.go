package domain

import (
	"slices"
	"strings"
)

// Merge 为 requested 中尚未存在的域名追加空记录。
// 已有记录保持原样和原有顺序；requested 内部的重复项只追加一次。
func Merge(existing []DomainRecord, requested []string) ([]DomainRecord, []string) {
	seen := make(map[string]struct{}, len(existing)+len(requested))
	for _, rec := range existing {
		seen[Key(rec.Domain)] = struct{}{}
	}

	out := make([]DomainRecord, len(existing), len(existing)+len(requested))
	copy(out, existing)

	var added []string
	for _, name := range requested {
		k := Key(name)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, NewRecord(k))
		added = append(added, k)
	}
	return out, added
}

// SortByExpiry 按到期日升序稳定排序，没有有效到期日的记录排在最后。
func SortByExpiry(records []DomainRecord) {
	slices.SortStableFunc(records, func(a, b DomainRecord) int {
		aValid, bValid := a.ExpiresOn.Valid(), b.ExpiresOn.Valid()
		switch {
		case aValid && bValid:
			// YYYY-MM-DD 的字典序即日期顺序
			return strings.Compare(a.ExpiresOn.String(), b.ExpiresOn.String())
		case aValid:
			return -1
		case bValid:
			return 1
		default:
			return 0
		}
	})
}
