package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（匹配config/config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Scrape   ScrapeConfig   `mapstructure:"scrape"`   // 爬取配置
	Schedule ScheduleConfig `mapstructure:"schedule"` // 定时任务配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // debug/info/warn/error
}

// ScrapeConfig 爬取流程配置，构造Orchestrator时整体传入
type ScrapeConfig struct {
	Sites            []SiteConfig  `mapstructure:"sites"`             // 来源站点列表
	MaxAttempts      int           `mapstructure:"max_attempts"`      // 单个URL最多尝试次数
	Backoff          time.Duration `mapstructure:"backoff"`           // 线性退避基数：第n次失败后等待 n*backoff
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`       // 单次等待上限
	Timeout          time.Duration `mapstructure:"timeout"`           // 单次请求超时
	UserAgent        string        `mapstructure:"user_agent"`        // 浏览器UA
	Proxy            string        `mapstructure:"proxy"`             // 代理地址
	RespectRobots    bool          `mapstructure:"respect_robots"`    // 是否遵守robots.txt
	CloudflareBypass bool          `mapstructure:"cloudflare_bypass"` // 是否启用cloudflare绕过
	DetailFetchCap   int           `mapstructure:"detail_fetch_cap"`  // 两阶段站点详情页抓取上限
	DetailDelay      time.Duration `mapstructure:"detail_delay"`      // 详情页请求间隔
}

// SiteConfig 单个来源站点
type SiteConfig struct {
	Name           string `mapstructure:"name"`             // 站点标识
	URL            string `mapstructure:"url"`              // 列表页地址
	Parser         string `mapstructure:"parser"`           // 显式绑定的解析器，空则按域名匹配
	Enabled        bool   `mapstructure:"enabled"`          // 是否启用
	DetailFetchCap int    `mapstructure:"detail_fetch_cap"` // 覆盖全局详情页上限（0表示沿用全局）
}

// ScheduleConfig 定时爬取配置
type ScheduleConfig struct {
	Enabled    bool          `mapstructure:"enabled"`      // 是否启用定时任务
	Interval   time.Duration `mapstructure:"interval"`     // 爬取间隔
	RunOnStart bool          `mapstructure:"run_on_start"` // 启动时立即执行一次
}

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultPort      = 8000
)

// Default 返回内置默认配置（原先硬编码在爬虫中的站点与请求参数）
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort, Mode: "release"},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Log: LogConfig{Level: "info"},
		Scrape: ScrapeConfig{
			Sites: []SiteConfig{
				{Name: "reskilll", URL: "https://reskilll.com/allhacks", Parser: "reskilll", Enabled: true},
				{Name: "devfolio", URL: "https://devfolio.co/hackathons", Parser: "devfolio", Enabled: true},
			},
			MaxAttempts:    3,
			Backoff:        2 * time.Second,
			Timeout:        10 * time.Second,
			UserAgent:      DefaultUserAgent,
			RespectRobots:  true,
			DetailFetchCap: 10,
			DetailDelay:    time.Second,
		},
		Schedule: ScheduleConfig{Enabled: false, Interval: 6 * time.Hour},
	}
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env / 环境变量覆盖
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env 可不存在

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := Default()
	defaultSites := cfg.Scrape.Sites
	cfg.Scrape.Sites = nil // 站点列表整体替换，不与默认值逐项合并
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if !v.IsSet("scrape.sites") {
		cfg.Scrape.Sites = defaultSites
	}

	overrideFromEnv(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感或部署相关配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SCRAPE_USER_AGENT"); v != "" {
		cfg.Scrape.UserAgent = v
	}
	if v := os.Getenv("SCRAPE_PROXY"); v != "" {
		cfg.Scrape.Proxy = v
	}
}

// applyDefaults 零值字段回落到默认值
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = d.Server.Mode
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	c.Scrape.applyDefaults()
	if c.Schedule.Interval <= 0 {
		c.Schedule.Interval = d.Schedule.Interval
	}
}

func (s *ScrapeConfig) applyDefaults() {
	d := Default().Scrape
	if s.MaxAttempts == 0 {
		s.MaxAttempts = d.MaxAttempts
	}
	if s.Timeout == 0 {
		s.Timeout = d.Timeout
	}
	if s.UserAgent == "" {
		s.UserAgent = d.UserAgent
	}
	if s.MaxBackoff == 0 { // 未配置时取最后一次重试的线性等待
		s.MaxBackoff = s.Backoff * time.Duration(s.MaxAttempts)
	}
}

// Validate 校验配置，返回所有问题
func (c *Config) Validate() error {
	var errs []string
	s := c.Scrape
	if s.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("scrape.max_attempts: 至少为1，当前%d", s.MaxAttempts))
	}
	if s.Backoff < 0 || s.MaxBackoff < 0 || s.DetailDelay < 0 {
		errs = append(errs, "scrape: backoff/max_backoff/detail_delay 不能为负")
	}
	if s.Timeout <= 0 {
		errs = append(errs, "scrape.timeout: 必须大于0")
	}
	if s.DetailFetchCap < 0 {
		errs = append(errs, fmt.Sprintf("scrape.detail_fetch_cap: 不能为负，当前%d", s.DetailFetchCap))
	}
	for i, site := range s.Sites {
		if strings.TrimSpace(site.URL) == "" {
			errs = append(errs, fmt.Sprintf("scrape.sites[%d].url: 必填", i))
			continue
		}
		u, err := url.Parse(site.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("scrape.sites[%d].url: 需为http/https地址，当前%q", i, site.URL))
		}
		if site.DetailFetchCap < 0 {
			errs = append(errs, fmt.Sprintf("scrape.sites[%d].detail_fetch_cap: 不能为负", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// EnabledSites 返回启用的站点（保持配置顺序）
func (s *ScrapeConfig) EnabledSites() []SiteConfig {
	sites := make([]SiteConfig, 0, len(s.Sites))
	for _, site := range s.Sites {
		if site.Enabled {
			sites = append(sites, site)
		}
	}
	return sites
}

// DetailCapFor 站点详情页上限，站点未覆盖时沿用全局
func (s *ScrapeConfig) DetailCapFor(site SiteConfig) int {
	if site.DetailFetchCap > 0 {
		return site.DetailFetchCap
	}
	return s.DetailFetchCap
}

// SiteName 站点标识，未配置name时回落到host
func (s SiteConfig) SiteName() string {
	if s.Name != "" {
		return s.Name
	}
	if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return s.URL
}
