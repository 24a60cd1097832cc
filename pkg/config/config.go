package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Razorpay RazorpayConfig
	Gateway  GatewayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Session.validateBackend(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKILLHUB_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SKILLHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKILLHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL string `envconfig:"SKILLHUB_API_BASE_URL" required:"true"`
	// Timeout bounds every backend call except the user-driven payment
	// widget step, which is governed by the widget's own lifetime.
	Timeout time.Duration `envconfig:"SKILLHUB_API_TIMEOUT" default:"30s"`
}

type SessionConfig struct {
	// Backend file persists the login between invocations; memory is
	// process-scoped; redis shares one record between client instances.
	Backend string `envconfig:"SKILLHUB_SESSION_BACKEND" default:"file"`
	// Path locates the session file; empty means ~/.skillhub/session.json.
	Path string `envconfig:"SKILLHUB_SESSION_PATH"`
	// Namespace prefixes Redis session keys when the redis backend is used.
	Namespace string `envconfig:"SKILLHUB_SESSION_NAMESPACE" default:"skillhub:session"`
}

func (s SessionConfig) UsesRedis() bool {
	return strings.EqualFold(s.Backend, SessionBackendRedis)
}

func (s SessionConfig) UsesMemory() bool {
	return strings.EqualFold(s.Backend, SessionBackendMemory)
}

func (s SessionConfig) validateBackend() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case SessionBackendFile, SessionBackendMemory, SessionBackendRedis:
		return nil
	default:
		return fmt.Errorf("session backend must be %q, %q or %q", SessionBackendFile, SessionBackendMemory, SessionBackendRedis)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"SKILLHUB_REDIS_URL"`
	Address      string        `envconfig:"SKILLHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SKILLHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKILLHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKILLHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKILLHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKILLHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKILLHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKILLHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RazorpayConfig struct {
	Key          string `envconfig:"SKILLHUB_RAZORPAY_KEY" required:"true"`
	MerchantName string `envconfig:"SKILLHUB_RAZORPAY_MERCHANT_NAME" default:"SkillHub Learning"`
	Description  string `envconfig:"SKILLHUB_RAZORPAY_DESCRIPTION" default:"Payment for courses"`
	ThemeColor   string `envconfig:"SKILLHUB_RAZORPAY_THEME_COLOR" default:"#3399cc"`

	PrefillName    string `envconfig:"SKILLHUB_RAZORPAY_PREFILL_NAME"`
	PrefillEmail   string `envconfig:"SKILLHUB_RAZORPAY_PREFILL_EMAIL"`
	PrefillContact string `envconfig:"SKILLHUB_RAZORPAY_PREFILL_CONTACT"`
}

type GatewayConfig struct {
	// ListenAddr is the loopback address of the checkout bridge that hosts
	// the payment widget page and receives its completion callbacks.
	ListenAddr   string        `envconfig:"SKILLHUB_GATEWAY_LISTEN_ADDR" default:"127.0.0.1:0"`
	OpenDeadline time.Duration `envconfig:"SKILLHUB_GATEWAY_OPEN_DEADLINE" default:"15m"`
}
