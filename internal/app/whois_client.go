package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DomainWatch/domain"
	"DomainWatch/tools"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"
)

// Registration 是一次成功查询得到的注册信息。
type Registration struct {
	Domain      string
	CreatedOn   domain.Date
	ExpiresOn   domain.Date
	Registrar   string
	Registrant  string
	NameServers []string
}

// LookupClient 查询域名注册信息。返回非 nil error 即视为查询失败。
type LookupClient interface {
	Lookup(ctx context.Context, name string) (Registration, error)
}

// WhoisClient 通过 WHOIS 查询并解析注册信息。
type WhoisClient struct {
	client *whois.Client
}

func NewWhoisClient(timeout time.Duration) *WhoisClient {
	c := whois.NewClient()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &WhoisClient{client: c}
}

func (w *WhoisClient) Lookup(ctx context.Context, name string) (Registration, error) {
	raw, err := runWithContext(ctx, func() (string, error) {
		return w.client.Whois(name)
	})
	if err != nil {
		return Registration{}, fmt.Errorf("whois query %s: %w", name, err)
	}
	return parseWhois(raw)
}

func parseWhois(raw string) (Registration, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return Registration{}, fmt.Errorf("whois parse: %w", err)
	}
	reg := registrationFromWhois(info)
	if reg.Domain == "" {
		return Registration{}, ErrNoRegistration
	}
	if reg.ExpiresOn.IsZero() {
		if exp, ok := tools.ExtractExpiry(raw); ok {
			reg.ExpiresOn = domain.ParseDate(exp)
		}
	}
	return reg, nil
}

func registrationFromWhois(info whoisparser.WhoisInfo) Registration {
	var reg Registration
	if info.Domain != nil {
		reg.Domain = domain.Key(info.Domain.Domain)
		reg.CreatedOn = toDate(info.Domain.CreatedDate)
		reg.ExpiresOn = toDate(info.Domain.ExpirationDate)
		reg.NameServers = normalizeNameServers(info.Domain.NameServers)
	}
	if info.Registrar != nil {
		reg.Registrar = strings.TrimSpace(info.Registrar.Name)
	}
	if info.Registrant != nil {
		reg.Registrant = strings.TrimSpace(info.Registrant.Name)
		if reg.Registrant == "" {
			reg.Registrant = strings.TrimSpace(info.Registrant.Organization)
		}
	}
	return reg
}

// RDAPClient 通过 RDAP 查询注册信息。
type RDAPClient struct {
	client *rdap.Client
}

func NewRDAPClient() *RDAPClient {
	return &RDAPClient{client: &rdap.Client{}}
}

func (r *RDAPClient) Lookup(ctx context.Context, name string) (Registration, error) {
	req := (&rdap.Request{Type: rdap.DomainRequest, Query: name}).WithContext(ctx)
	resp, err := r.client.Do(req)
	if err != nil {
		return Registration{}, fmt.Errorf("rdap query %s: %w", name, err)
	}
	d, ok := resp.Object.(*rdap.Domain)
	if !ok || d == nil {
		return Registration{}, ErrNoRegistration
	}
	reg := registrationFromRDAP(d)
	if reg.Domain == "" {
		return Registration{}, ErrNoRegistration
	}
	return reg, nil
}

func registrationFromRDAP(d *rdap.Domain) Registration {
	reg := Registration{Domain: domain.Key(d.LDHName)}
	for _, ev := range d.Events {
		switch strings.ToLower(ev.Action) {
		case "registration":
			reg.CreatedOn = toDate(ev.Date)
		case "expiration":
			if reg.ExpiresOn.IsZero() {
				reg.ExpiresOn = toDate(ev.Date)
			}
		}
	}
	for _, ent := range d.Entities {
		if ent.VCard == nil {
			continue
		}
		for _, role := range ent.Roles {
			switch strings.ToLower(role) {
			case "registrar":
				if reg.Registrar == "" {
					reg.Registrar = strings.TrimSpace(ent.VCard.Name())
				}
			case "registrant":
				if reg.Registrant == "" {
					reg.Registrant = strings.TrimSpace(ent.VCard.Name())
				}
			}
		}
	}
	ns := make([]string, 0, len(d.Nameservers))
	for _, n := range d.Nameservers {
		ns = append(ns, n.LDHName)
	}
	reg.NameServers = normalizeNameServers(ns)
	return reg
}

// FallbackClient 依次尝试各个查询客户端，返回第一个成功结果。
type FallbackClient []LookupClient

func (f FallbackClient) Lookup(ctx context.Context, name string) (Registration, error) {
	if len(f) == 0 {
		return Registration{}, ErrMissingDependencies
	}
	var errs []error
	for _, c := range f {
		reg, err := c.Lookup(ctx, name)
		if err == nil {
			return reg, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return Registration{}, errors.Join(errs...)
}

// NewLookupClient 按 providers 顺序组装查询客户端。
func NewLookupClient(providers []string, timeout time.Duration) (LookupClient, error) {
	var chain FallbackClient
	for _, p := range providers {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "whois":
			chain = append(chain, NewWhoisClient(timeout))
		case "rdap":
			chain = append(chain, NewRDAPClient())
		default:
			return nil, fmt.Errorf("unknown lookup provider %q", p)
		}
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return chain, nil
}

// toDate 规范化为 YYYY-MM-DD；无法识别时保留原文，后续按无效日期处理。
func toDate(raw string) domain.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Date{}
	}
	if d, ok := tools.FirstDate(raw); ok {
		return domain.ParseDate(d)
	}
	return domain.ParseDate(raw)
}

func normalizeNameServers(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, ns := range in {
		for _, part := range strings.Split(ns, ",") {
			k := domain.Key(part)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func runWithContext(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		data string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		data, err := fn()
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.data, res.err
	}
}
