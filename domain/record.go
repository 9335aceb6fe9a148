package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for every persisted date.
const DateLayout = "2006-01-02"

// ExpirySentinel marks an expiration that could not be looked up.
const ExpirySentinel = "Error"

// Date 是可选的日历日期，保留存储中的原始文本，便于原样写回无法解析的值。
type Date struct {
	raw string
}

// NewDate returns the calendar date of t.
func NewDate(t time.Time) Date {
	return Date{raw: t.Format(DateLayout)}
}

// ParseDate wraps a stored value without validating it.
func ParseDate(s string) Date {
	return Date{raw: strings.TrimSpace(s)}
}

// ErrorDate returns the lookup-failure sentinel.
func ErrorDate() Date {
	return Date{raw: ExpirySentinel}
}

func (d Date) IsZero() bool { return d.raw == "" }

// IsError reports whether d carries the lookup-failure sentinel.
func (d Date) IsError() bool {
	return strings.Contains(d.raw, ExpirySentinel)
}

// Time parses d as a YYYY-MM-DD date at UTC midnight.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, d.raw)
}

// Valid reports whether d holds a parsable calendar date.
func (d Date) Valid() bool {
	if d.IsZero() || d.IsError() {
		return false
	}
	_, err := d.Time()
	return err == nil
}

func (d Date) String() string { return d.raw }

// DomainRecord 对应存储文件中的一行。
type DomainRecord struct {
	Domain       string
	RegisteredOn Date
	ExpiresOn    Date
	Registrar    string
	Registrant   string
	NameServers  []string
	LastNotice   Date
}

// NewRecord returns a bare record for name.
func NewRecord(name string) DomainRecord {
	return DomainRecord{Domain: name}
}

// Key normalises a domain name for uniqueness checks.
func Key(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(s, ".")
}
