package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

// Options holds raw, unvalidated settings gathered from the config file,
// the environment and command line flags.
type Options struct {
	Addr            string   `yaml:"addr"`
	DatabaseDSN     string   `yaml:"databaseDSN"`
	SigningKey      string   `yaml:"signingKey"`
	AllowedDomain   string   `yaml:"allowedDomain"`
	AdminEmails     []string `yaml:"adminEmails"`
	ActivityLogPath string   `yaml:"activityLogPath"`
	SessionBackend  string   `yaml:"sessionBackend"`
	SessionTTL      string   `yaml:"sessionTTL"`
	RedisAddr       string   `yaml:"redisAddr"`
	RedisPassword   string   `yaml:"redisPassword"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
	LogMode         string   `yaml:"logMode"`
}

func DefaultOptions() Options {
	return Options{
		Addr:            "localhost:8000",
		DatabaseDSN:     "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable",
		SigningKey:      defaultSigningKey,
		AllowedDomain:   "@g.nsu.ru",
		AdminEmails:     []string{"admin@g.nsu.ru"},
		ActivityLogPath: "activity.log",
		SessionBackend:  SessionBackendCookie,
		SessionTTL:      "24h",
		RedisAddr:       "localhost:6379",
		LogMode:         "development",
	}
}

// LoadFile overlays the YAML document at path onto opts. Keys missing from the
// file keep their current values.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// LoadEnv overlays ROOMREG_* environment variables onto opts, loading the
// given dotenv files first. A missing dotenv file is not an error.
func (o *Options) LoadEnv(dotenvFiles ...string) error {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load dotenv: %w", err)
	}

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setList := func(key string, dst *[]string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.Split(v, ",")
		}
	}

	setString("ROOMREG_ADDR", &o.Addr)
	setString("ROOMREG_DATABASE_DSN", &o.DatabaseDSN)
	setString("ROOMREG_SIGNING_KEY", &o.SigningKey)
	setString("ROOMREG_ALLOWED_DOMAIN", &o.AllowedDomain)
	setList("ROOMREG_ADMIN_EMAILS", &o.AdminEmails)
	setString("ROOMREG_ACTIVITY_LOG", &o.ActivityLogPath)
	setString("ROOMREG_SESSION_BACKEND", &o.SessionBackend)
	setString("ROOMREG_SESSION_TTL", &o.SessionTTL)
	setString("ROOMREG_REDIS_ADDR", &o.RedisAddr)
	setString("ROOMREG_REDIS_PASSWORD", &o.RedisPassword)
	setList("ROOMREG_ALLOWED_ORIGINS", &o.AllowedOrigins)
	setString("ROOMREG_LOG_MODE", &o.LogMode)

	return nil
}

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

// FlagOptions binds command line flags. Only flags the user actually sets
// are applied by Apply, so file and environment values survive otherwise.
type FlagOptions struct {
	fs             *flag.FlagSet
	vals           Options
	adminEmails    stringSliceFlag
	allowedOrigins stringSliceFlag
}

func RegisterFlags(fs *flag.FlagSet) *FlagOptions {
	f := &FlagOptions{fs: fs}
	fs.StringVar(&f.vals.Addr, "addr", "", "server address")
	fs.StringVar(&f.vals.DatabaseDSN, "dsn", "", "database connection string")
	fs.StringVar(&f.vals.SigningKey, "signing-key", "", "base64 encoded signing key")
	fs.StringVar(&f.vals.AllowedDomain, "allowed-domain", "", "email suffix accepted at login")
	fs.Var(&f.adminEmails, "admin-emails", "comma-separated list of admin emails")
	fs.StringVar(&f.vals.ActivityLogPath, "activity-log", "", "path of the append-only activity log")
	fs.StringVar(&f.vals.SessionBackend, "session-backend", "", "session backend: cookie or redis")
	fs.StringVar(&f.vals.SessionTTL, "session-ttl", "", "session lifetime, e.g. 24h")
	fs.StringVar(&f.vals.RedisAddr, "redis-addr", "", "redis address for the redis session backend")
	fs.Var(&f.allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	fs.StringVar(&f.vals.LogMode, "log-mode", "", "log mode: development or production")
	return f
}

// Apply copies explicitly set flags onto opts. It must be called after the
// flag set has been parsed.
func (f *FlagOptions) Apply(opts *Options) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "addr":
			opts.Addr = f.vals.Addr
		case "dsn":
			opts.DatabaseDSN = f.vals.DatabaseDSN
		case "signing-key":
			opts.SigningKey = f.vals.SigningKey
		case "allowed-domain":
			opts.AllowedDomain = f.vals.AllowedDomain
		case "admin-emails":
			opts.AdminEmails = []string(f.adminEmails)
		case "activity-log":
			opts.ActivityLogPath = f.vals.ActivityLogPath
		case "session-backend":
			opts.SessionBackend = f.vals.SessionBackend
		case "session-ttl":
			opts.SessionTTL = f.vals.SessionTTL
		case "redis-addr":
			opts.RedisAddr = f.vals.RedisAddr
		case "allowed-origins":
			opts.AllowedOrigins = []string(f.allowedOrigins)
		case "log-mode":
			opts.LogMode = f.vals.LogMode
		}
	})
}
