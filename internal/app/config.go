package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix         = "IMOVEIS_"
	defaultConfigFile = "imoveis.yaml"
)

// sections are the nested config groups; IMOVEIS_JWT_SECRET maps to
// jwt.secret.
var sections = []string{"jwt", "cors", "redis", "storage", "media", "cep", "notify", "otel", "seed", "metrics"}

// legacyEnv maps the unprefixed variable names older deployments use.
var legacyEnv = map[string]string{
	"PORT":                        "port",
	"LOG_MODE":                    "log_mode",
	"DATABASE_URL":                "database_url",
	"SECRET_KEY":                  "jwt.secret",
	"ALGORITHM":                   "jwt.algorithm",
	"ACCESS_TOKEN_EXPIRE_MINUTES": "jwt.access_ttl_minutes",
	"ADMIN_EMAIL":                 "seed.admin_email",
	"ADMIN_PASSWORD":              "seed.admin_password",
	"SECONDARY_ADMIN_EMAIL":       "seed.secondary_admin_email", // no default: unset seeds one admin
	"REDIS_ADDR":                  "redis.addr",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"LOG_REDACTION_ENABLED":       "log_redaction",
	"LOG_HASH_SALT":               "log_hash_salt",
}

type JWTConfig struct {
	Secret    string
	Algorithm string
	AccessTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type StorageConfig struct {
	Mode          string
	Bucket        string
	PublicBaseURL string
	EmulatorHost  string
	Credentials   string
}

type MediaConfig struct {
	DesktopWidth   int
	DesktopQuality int
	MobileWidth    int
	MobileQuality  int
	WatermarkText  string
	WatermarkFont  string
	WatermarkSize  float64
	MaxUploadMB    int
	MaxPixels      int64
}

type CEPConfig struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

type NotifyConfig struct {
	SendGridAPIKey   string
	FromEmail        string
	FromName         string
	ToEmails         []string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	ToPhones         []string
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	Headers     string
	Insecure    bool
	SampleRatio float64
}

type SeedConfig struct {
	File                string
	AdminEmail          string
	AdminPassword       string
	SecondaryAdminEmail string
}

type Config struct {
	Port           int
	LogMode        string
	LogRedaction   bool
	LogHashSalt    string
	Environment    string
	DatabaseURL    string
	MetricsEnabled bool
	JWT            JWTConfig
	CORSOrigins    []string
	Redis          RedisConfig
	Storage        StorageConfig
	Media          MediaConfig
	CEP            CEPConfig
	Notify         NotifyConfig
	Otel           OtelConfig
	Seed           SeedConfig

	// ConfigFile is the YAML file that was loaded, if any.
	ConfigFile string
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":                      8000,
		"log_mode":                  "development",
		"log_redaction":             true,
		"environment":               "development",
		"database_url":              "sqlite:///./imoveis.db",
		"metrics.enabled":           true,
		"jwt.algorithm":             "HS256",
		"jwt.access_ttl_minutes":    1440,
		"redis.channel":             "imoveis:realtime",
		"storage.mode":              "inline",
		"media.desktop_width":       1200,
		"media.desktop_quality":     80,
		"media.mobile_width":        600,
		"media.mobile_quality":      70,
		"media.watermark_size":      28,
		"media.max_upload_mb":       15,
		"media.max_pixels":          40_000_000,
		"cep.base_url":              "https://brasilapi.com.br/api/cep/v1",
		"cep.timeout_seconds":       5,
		"cep.retries":               3,
		"notify.from_name":          "Adão Silva Imóveis",
		"otel.sample_ratio":         1.0,
		"seed.admin_email":          "admin@crm.com",
		"seed.admin_password":       "admin123",
	}
}

// LoadConfig merges, lowest precedence first: defaults, the YAML file,
// unprefixed legacy environment, IMOVEIS_* environment, then changed flags.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			used = defaultConfigFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", used, err)
		}
	}

	legacy := map[string]interface{}{}
	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			legacy[key] = v
		}
	}
	if err := k.Load(confmap.Provider(legacy, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load legacy env: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Config{
		Port:           k.Int("port"),
		LogMode:        k.String("log_mode"),
		LogRedaction:   k.Bool("log_redaction"),
		LogHashSalt:    k.String("log_hash_salt"),
		Environment:    k.String("environment"),
		DatabaseURL:    k.String("database_url"),
		MetricsEnabled: k.Bool("metrics.enabled"),
		JWT: JWTConfig{
			Secret:    k.String("jwt.secret"),
			Algorithm: k.String("jwt.algorithm"),
			AccessTTL: time.Duration(k.Int("jwt.access_ttl_minutes")) * time.Minute,
		},
		CORSOrigins: stringList(k, "cors.origins"),
		Redis: RedisConfig{
			Addr:     k.String("redis.addr"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
			Channel:  k.String("redis.channel"),
		},
		Storage: StorageConfig{
			Mode:          strings.ToLower(k.String("storage.mode")),
			Bucket:        k.String("storage.bucket"),
			PublicBaseURL: k.String("storage.public_base_url"),
			EmulatorHost:  k.String("storage.emulator_host"),
			Credentials:   k.String("storage.credentials"),
		},
		Media: MediaConfig{
			DesktopWidth:   k.Int("media.desktop_width"),
			DesktopQuality: k.Int("media.desktop_quality"),
			MobileWidth:    k.Int("media.mobile_width"),
			MobileQuality:  k.Int("media.mobile_quality"),
			WatermarkText:  k.String("media.watermark_text"),
			WatermarkFont:  k.String("media.watermark_font"),
			WatermarkSize:  k.Float64("media.watermark_size"),
			MaxUploadMB:    k.Int("media.max_upload_mb"),
			MaxPixels:      k.Int64("media.max_pixels"),
		},
		CEP: CEPConfig{
			BaseURL: k.String("cep.base_url"),
			Timeout: time.Duration(k.Int("cep.timeout_seconds")) * time.Second,
			Retries: k.Int("cep.retries"),
		},
		Notify: NotifyConfig{
			SendGridAPIKey:   k.String("notify.sendgrid_api_key"),
			FromEmail:        k.String("notify.from_email"),
			FromName:         k.String("notify.from_name"),
			ToEmails:         stringList(k, "notify.to_emails"),
			TwilioAccountSID: k.String("notify.twilio_account_sid"),
			TwilioAuthToken:  k.String("notify.twilio_auth_token"),
			TwilioFrom:       k.String("notify.twilio_from"),
			ToPhones:         stringList(k, "notify.to_phones"),
		},
		Otel: OtelConfig{
			Enabled:     k.Bool("otel.enabled"),
			Endpoint:    k.String("otel.endpoint"),
			Headers:     k.String("otel.headers"),
			Insecure:    k.Bool("otel.insecure"),
			SampleRatio: k.Float64("otel.sample_ratio"),
		},
		Seed: SeedConfig{
			File:                k.String("seed.file"),
			AdminEmail:          k.String("seed.admin_email"),
			AdminPassword:       k.String("seed.admin_password"),
			SecondaryAdminEmail: k.String("seed.secondary_admin_email"),
		},
		ConfigFile: used,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("database_url is required")
	}
	switch c.Storage.Mode {
	case "inline", "gcs", "gcs_emulator":
	default:
		return fmt.Errorf("unsupported storage.mode %q (want inline, gcs or gcs_emulator)", c.Storage.Mode)
	}
	if c.Media.MaxUploadMB <= 0 {
		return fmt.Errorf("media.max_upload_mb must be positive")
	}
	if c.Media.MaxPixels <= 0 {
		return fmt.Errorf("media.max_pixels must be positive")
	}
	return nil
}

// envKey turns IMOVEIS_JWT_ACCESS_TTL_MINUTES into jwt.access_ttl_minutes.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return sec + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// stringList accepts a YAML list or a comma-separated string.
func stringList(k *koanf.Koanf, key string) []string {
	var raw []string
	switch v := k.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = []string{fmt.Sprint(v)}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
