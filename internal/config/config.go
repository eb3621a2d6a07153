package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string       `yaml:"env" env:"ENV" env-default:"local"`
	DSN        string       `yaml:"dsn" env:"DSN"`
	Migrate    bool         `yaml:"migrate" env:"MIGRATE" env-default:"true"`
	BcryptCost int          `yaml:"bcrypt_cost" env:"BCRYPT_SALT_ROUNDS" env-default:"10"`
	HTTP       HTTPConfig   `yaml:"http"`
	Tokens     TokensConfig `yaml:"tokens"`
	Cookie     CookieConfig `yaml:"cookie"`
	Redis      RedisConf    `yaml:"redis"`
	Login      LoginConfig  `yaml:"login"`
}

type HTTPConfig struct {
	Host            string   `yaml:"host" env:"HTTP_HOST"`
	Port            string   `yaml:"port" env:"HTTP_PORT" env-default:"4000"`
	AllowOrigins    []string `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-default:"http://localhost:8080"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type TokensConfig struct {
	AppSecret     string   `yaml:"app_secret" env:"APP_SECRET"`
	RefreshSecret string   `yaml:"refresh_secret" env:"REFRESH_SECRET"`
	AccessTTL     Duration `yaml:"access_ttl" env:"AUTH_TOKEN_LIFETIME" env-default:"5m"`
	RefreshTTL    Duration `yaml:"refresh_ttl" env:"REFRESH_TOKEN_LIFETIME" env-default:"7d"`
}

type CookieConfig struct {
	Name   string `yaml:"name" env:"REFRESH_COOKIE_NAME" env-default:"rftid"`
	Path   string `yaml:"path" env:"REFRESH_COOKIE_PATH" env-default:"/refresh_token"`
	Secure bool   `yaml:"secure" env:"REFRESH_COOKIE_SECURE"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

// LoginConfig bounds failed password attempts per email.
// MaxAttempts <= 0 disables the lockout.
type LoginConfig struct {
	MaxAttempts int      `yaml:"max_attempts" env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	Window      Duration `yaml:"window" env:"LOGIN_WINDOW" env-default:"15m"`
}

// MustLoad reads the config file named by --config or CONFIG_PATH. Without either,
// configuration comes from the environment only.
func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic("cannot read config: " + err.Error())
	}

	return cfg
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("cannot read config: " + err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Tokens.AppSecret == "" {
		return errors.New("app secret is required")
	}
	if c.Tokens.RefreshSecret == "" {
		return errors.New("refresh secret is required")
	}
	if c.Tokens.AppSecret == c.Tokens.RefreshSecret {
		return errors.New("app secret and refresh secret must differ")
	}
	if c.Tokens.AccessTTL <= 0 || c.Tokens.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Cookie.Name == "" {
		return errors.New("refresh cookie name is required")
	}
	if c.Login.MaxAttempts > 0 && c.Login.Window <= 0 {
		return errors.New("login window must be positive when lockout is enabled")
	}

	return nil
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

// Duration is a time.Duration that also accepts a whole number of days ("7d").
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)

	return nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.SetValue(string(text))
}

func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	return v, nil
}
