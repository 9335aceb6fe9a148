package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultThresholdDays      = 45
	DefaultNotifyIntervalDays = 15
	DefaultRecordFile         = "whois_dominios.csv"
	DefaultSMTPHost           = "smtp.gmail.com"
	DefaultSMTPPort           = 465
)

// 环境变量名
const (
	EnvConfigPath    = "DOMAINWATCH_CONFIG"
	EnvMailUser      = "GMAIL_USER"
	EnvMailPassword  = "GMAIL_APP_PASSWORD"
	EnvMailRecipient = "EMAIL_RECIPIENT"
	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChat  = "TELEGRAM_CHAT_ID"
	EnvLogLevel      = "LOG_LEVEL"
)

type Config struct {
	ThresholdDays      int    `yaml:"thresholdDays"`
	NotifyIntervalDays int    `yaml:"notifyIntervalDays"`
	RecordFile         string `yaml:"recordFile"`

	Lookup             Lookup               `yaml:"lookup"`
	Mail               Mail                 `yaml:"mail"`
	Telegram           Telegram             `yaml:"telegram"`
	CloudflareAccounts []CF                 `yaml:"cloudflareAccounts"`
	AWSTargets         map[string]AWSTarget `yaml:"awsTargets"`
	Log                Log                  `yaml:"log"`
}

type Lookup struct {
	// Providers 按顺序尝试，可选 whois、rdap。
	Providers []string      `yaml:"providers"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit time.Duration `yaml:"rateLimit"`
}

// Mail 的账号信息只从环境变量读取。
type Mail struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Timeout   time.Duration `yaml:"timeout"`
	User      string        `yaml:"-"`
	Password  string        `yaml:"-"`
	Recipient string        `yaml:"-"`
}

// Enabled 三项凭据齐全时才发送邮件。
func (m Mail) Enabled() bool {
	return m.User != "" && m.Password != "" && m.Recipient != ""
}

type Telegram struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatID"`
}

func (t Telegram) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

type CF struct {
	Label    string `yaml:"label"`
	APIToken string `yaml:"apiToken"`
}

type AWSCreds struct {
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	SessionToken    string `yaml:"sessionToken"`
}

type AWSTarget struct {
	Region string   `yaml:"region"`
	Creds  AWSCreds `yaml:"creds"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default 返回不依赖任何文件的默认配置。
func Default() Config {
	return Config{
		ThresholdDays:      DefaultThresholdDays,
		NotifyIntervalDays: DefaultNotifyIntervalDays,
		RecordFile:         DefaultRecordFile,
		Lookup: Lookup{
			Providers: []string{"whois", "rdap"},
			Timeout:   15 * time.Second,
		},
		Mail: Mail{
			Host:    DefaultSMTPHost,
			Port:    DefaultSMTPPort,
			Timeout: 30 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load 读取 YAML 配置并叠加环境变量；配置文件不存在时使用默认值。
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置失败: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv 将 .env 中的变量加载进进程环境，已存在的变量不覆盖。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("加载 .env 失败: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	c.Mail.User = strings.TrimSpace(getenv(EnvMailUser))
	c.Mail.Password = strings.TrimSpace(getenv(EnvMailPassword))
	c.Mail.Recipient = strings.TrimSpace(getenv(EnvMailRecipient))

	if v := strings.TrimSpace(getenv(EnvTelegramToken)); v != "" {
		c.Telegram.BotToken = v
	}
	if v := strings.TrimSpace(getenv(EnvTelegramChat)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s 不是合法的 chat id: %w", EnvTelegramChat, err)
		}
		c.Telegram.ChatID = id
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.ThresholdDays == 0 {
		c.ThresholdDays = DefaultThresholdDays
	}
	if c.NotifyIntervalDays == 0 {
		c.NotifyIntervalDays = DefaultNotifyIntervalDays
	}
	if strings.TrimSpace(c.RecordFile) == "" {
		c.RecordFile = DefaultRecordFile
	}
	if len(c.Lookup.Providers) == 0 {
		c.Lookup.Providers = []string{"whois", "rdap"}
	}
	if c.Mail.Host == "" {
		c.Mail.Host = DefaultSMTPHost
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = DefaultSMTPPort
	}
}

// Validate 检查数值范围和查询提供方名称。
func (c *Config) Validate() error {
	if c.ThresholdDays < 0 {
		return fmt.Errorf("thresholdDays 不能为负数: %d", c.ThresholdDays)
	}
	if c.NotifyIntervalDays < 0 {
		return fmt.Errorf("notifyIntervalDays 不能为负数: %d", c.NotifyIntervalDays)
	}
	for _, p := range c.Lookup.Providers {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "whois", "rdap":
		default:
			return fmt.Errorf("未知的查询提供方: %s", p)
		}
	}
	return nil
}
