package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

type Config struct {
	ServerAddr      string
	DatabaseDSN     string
	SigningKey      []byte
	AllowedDomain   string
	AdminEmails     []string
	ActivityLogPath string
	SessionBackend  string
	SessionTTL      time.Duration
	RedisAddr       string
	RedisPassword   string
	AllowedOrigins  []string
	LogMode         string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

// NewConfig validates the collected options and builds the runtime
// configuration.
func NewConfig(opts Options) (*Config, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if opts.DatabaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if opts.SigningKey == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(opts.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	if !strings.HasPrefix(opts.AllowedDomain, "@") || len(opts.AllowedDomain) < 2 {
		return nil, fmt.Errorf("allowed domain must look like @example.org, got %q", opts.AllowedDomain)
	}

	admins := cleanList(opts.AdminEmails)
	if len(admins) == 0 {
		return nil, fmt.Errorf("at least one admin email is required")
	}

	if opts.ActivityLogPath == "" {
		return nil, fmt.Errorf("activity log path cannot be empty")
	}

	ttl, err := time.ParseDuration(opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("parse session ttl: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	switch opts.SessionBackend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required for the redis session backend")
		}
	default:
		return nil, fmt.Errorf("unknown session backend %q", opts.SessionBackend)
	}

	return &Config{
		ServerAddr:      opts.Addr,
		DatabaseDSN:     opts.DatabaseDSN,
		SigningKey:      signingKey,
		AllowedDomain:   opts.AllowedDomain,
		AdminEmails:     admins,
		ActivityLogPath: opts.ActivityLogPath,
		SessionBackend:  opts.SessionBackend,
		SessionTTL:      ttl,
		RedisAddr:       opts.RedisAddr,
		RedisPassword:   opts.RedisPassword,
		AllowedOrigins:  cleanList(opts.AllowedOrigins),
		LogMode:         opts.LogMode,
	}, nil
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
