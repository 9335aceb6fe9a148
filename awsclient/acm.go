// Package awsclient lists ACM certificates so the registrable domains they
// cover can be monitored.
package awsclient

import (
	"context"
	"fmt"
	"strings"

	"DomainWatch/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"golang.org/x/net/publicsuffix"
)

// CertificateLister returns every domain name (primary and SAN) of the
// certificates visible to one AWS target.
type CertificateLister interface {
	CertificateDomains(ctx context.Context) ([]string, error)
}

type acmLister struct {
	client *acm.Client
}

func NewACMLister(ctx context.Context, target config.AWSTarget) (CertificateLister, error) {
	if strings.TrimSpace(target.Region) == "" {
		return nil, fmt.Errorf("aws target region is empty")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(target.Region)}
	if target.Creds.AccessKeyID != "" && target.Creds.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					target.Creds.AccessKeyID,
					target.Creds.SecretAccessKey,
					target.Creds.SessionToken,
				),
			),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &acmLister{client: acm.NewFromConfig(cfg)}, nil
}

func (l *acmLister) CertificateDomains(ctx context.Context) ([]string, error) {
	var out []string
	p := acm.NewListCertificatesPaginator(l.client, &acm.ListCertificatesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("acm list certificates: %w", err)
		}
		for _, c := range page.CertificateSummaryList {
			out = append(out, aws.ToString(c.DomainName))
			out = append(out, c.SubjectAlternativeNameSummaries...)
		}
	}
	return out, nil
}

// CertificateSource is a domain source backed by one AWS target.
type CertificateSource struct {
	Alias  string
	Lister CertificateLister
}

func (s *CertificateSource) Name() string { return "acm:" + s.Alias }

func (s *CertificateSource) Names(ctx context.Context) ([]string, error) {
	names, err := s.Lister.CertificateDomains(ctx)
	if err != nil {
		return nil, err
	}
	return RegistrableDomains(names), nil
}

// RegistrableDomains reduces host names (wildcards included) to their
// eTLD+1, dropping duplicates and names under a bare public suffix.
func RegistrableDomains(hosts []string) []string {
	seen := make(map[string]struct{}, len(hosts))
	var out []string
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "*.")
		h = strings.TrimSuffix(h, ".")
		if h == "" {
			continue
		}
		apex, err := publicsuffix.EffectiveTLDPlusOne(h)
		if err != nil {
			continue
		}
		if _, ok := seen[apex]; ok {
			continue
		}
		seen[apex] = struct{}{}
		out = append(out, apex)
	}
	return out
}
