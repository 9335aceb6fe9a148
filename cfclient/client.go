package cfclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DomainWatch/config"

	cloudflare "github.com/cloudflare/cloudflare-go"
)

// DomainInfo 是 cfclient 层的域名描述，避免直接依赖 domain 包
type DomainInfo struct {
	Domain string
	Source string
	Status string
	Paused bool
}

// Client 定义了读取 Cloudflare 账户域名的接口
type Client interface {
	FetchAllDomains(ctx context.Context, account config.CF) ([]DomainInfo, error)
}

type apiClient struct{}

// NewClient 返回默认的 Cloudflare API 客户端实现
func NewClient() Client {
	return &apiClient{}
}

func (c *apiClient) FetchAllDomains(ctx context.Context, account config.CF) ([]DomainInfo, error) {
	ctx, cancel := ensureTimeout(ctx)
	defer cancel()

	api, err := cloudflare.NewWithAPIToken(account.APIToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 Cloudflare 客户端失败 [%s]: %w", account.Label, err)
	}

	zones, err := api.ListZonesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取域名失败 [%s]: %w", account.Label, err)
	}

	out := make([]DomainInfo, 0, len(zones.Result))
	for _, z := range zones.Result {
		out = append(out, DomainInfo{
			Domain: z.Name,
			Source: account.Label,
			Status: z.Status,
			Paused: z.Paused,
		})
	}
	return out, nil
}

func ensureTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

// ZoneSource 把一个 Cloudflare 账户下的 zone 作为监控来源。
// 已删除或迁出的 zone（status 为 deleted / moved）不计入。
type ZoneSource struct {
	Client  Client
	Account config.CF
}

func NewZoneSources(client Client, accounts []config.CF) []*ZoneSource {
	if client == nil {
		client = NewClient()
	}
	out := make([]*ZoneSource, 0, len(accounts))
	for _, acc := range accounts {
		if strings.TrimSpace(acc.APIToken) == "" {
			continue
		}
		out = append(out, &ZoneSource{Client: client, Account: acc})
	}
	return out
}

func (s *ZoneSource) Name() string { return "cloudflare:" + s.Account.Label }

func (s *ZoneSource) Names(ctx context.Context) ([]string, error) {
	doms, err := s.Client.FetchAllDomains(ctx, s.Account)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(doms))
	for _, d := range doms {
		switch strings.ToLower(d.Status) {
		case "deleted", "moved":
			continue
		}
		if name := strings.TrimSpace(d.Domain); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
