package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source 描述一个新闻站点：列表页、兜底用的首页、域名前缀和抓取上限
type Source struct {
	Name         string `yaml:"name"`
	ListingURL   string `yaml:"listing"`
	HomepageURL  string `yaml:"homepage"`
	DomainPrefix string `yaml:"domain_prefix"`
	MaxItems     int    `yaml:"max_to_fetch"`
}

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	Sources     []Source
	Keywords    []string
	TZName      string
	HoursRecent int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	ToEmails []string
}

// 默认采集两个西语站点，可用 SOURCES_FILE 覆盖
var defaultSources = []Source{
	{
		Name:         "MARCA",
		ListingURL:   "https://www.marca.com/ultimas-noticias.html",
		HomepageURL:  "https://www.marca.com/",
		DomainPrefix: "https://www.marca.com/",
		MaxItems:     60,
	},
	{
		Name:         "EXPANSION",
		ListingURL:   "https://www.expansion.com/economia.html",
		HomepageURL:  "https://www.expansion.com/",
		DomainPrefix: "https://www.expansion.com/",
		MaxItems:     60,
	},
}

// fileConfig 是 SOURCES_FILE 指向的 YAML 文档结构
type fileConfig struct {
	Sources     []Source `yaml:"sources"`
	ToEmails    []string `yaml:"to_emails"`
	Keywords    []string `yaml:"keywords"`
	Keyword     string   `yaml:"keyword"`
	HoursRecent int      `yaml:"hours_recent"`
	TZName      string   `yaml:"tzname"`
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		CronSpec:    getEnv("CRON_SPEC", "0 8 * * *"),
		Sources:     defaultSources,
		TZName:      getEnv("TZ_NAME", "Europe/Madrid"),
		HoursRecent: getEnvInt("HOURS_RECENT", 24),
		SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getEnvInt("SMTP_PORT", 465),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    os.Getenv("SMTP_PASS"),
	}

	if path := os.Getenv("SOURCES_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Printf("warn: load sources file %s: %v", path, err)
		}
	}

	// 环境变量里的关键词优先于配置文件
	if kw := strings.TrimSpace(os.Getenv("KEYWORD")); kw != "" {
		cfg.Keywords = []string{kw}
	}
	if to := os.Getenv("TO_EMAILS"); to != "" {
		cfg.ToEmails = splitList(to)
	}

	log.Printf("config loaded: sources=%d tz=%s recent=%dh cron=%s", len(cfg.Sources), cfg.TZName, cfg.HoursRecent, cfg.CronSpec)
	return cfg
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if len(fc.Sources) > 0 {
		c.Sources = fc.Sources
	}
	if len(fc.ToEmails) > 0 {
		c.ToEmails = fc.ToEmails
	}
	if len(fc.Keywords) > 0 {
		c.Keywords = fc.Keywords
	} else if strings.TrimSpace(fc.Keyword) != "" {
		c.Keywords = []string{strings.TrimSpace(fc.Keyword)}
	}
	if fc.HoursRecent > 0 {
		c.HoursRecent = fc.HoursRecent
	}
	if fc.TZName != "" {
		c.TZName = fc.TZName
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
