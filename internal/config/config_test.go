package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	valid := func() Options {
		opts := DefaultOptions()
		opts.Addr = "localhost:8080"
		opts.SigningKey = "c29tZV9zZWNyZXQ="
		opts.AllowedOrigins = []string{"http://localhost:3000"}
		return opts
	}

	tcases := []struct {
		name   string
		modify func(o *Options)
		err    bool
	}{
		{
			name:   "valid config",
			modify: func(o *Options) {},
			err:    false,
		},
		{
			name:   "empty address",
			modify: func(o *Options) { o.Addr = "" },
			err:    true,
		},
		{
			name:   "empty DSN",
			modify: func(o *Options) { o.DatabaseDSN = "" },
			err:    true,
		},
		{
			name:   "empty signing key",
			modify: func(o *Options) { o.SigningKey = "" },
			err:    true,
		},
		{
			name:   "domain without at sign",
			modify: func(o *Options) { o.AllowedDomain = "g.nsu.ru" },
			err:    true,
		},
		{
			name:   "no admins",
			modify: func(o *Options) { o.AdminEmails = []string{" ", ""} },
			err:    true,
		},
		{
			name:   "empty activity log path",
			modify: func(o *Options) { o.ActivityLogPath = "" },
			err:    true,
		},
		{
			name:   "bad session ttl",
			modify: func(o *Options) { o.SessionTTL = "forever" },
			err:    true,
		},
		{
			name:   "negative session ttl",
			modify: func(o *Options) { o.SessionTTL = "-1h" },
			err:    true,
		},
		{
			name:   "unknown session backend",
			modify: func(o *Options) { o.SessionBackend = "memcached" },
			err:    true,
		},
		{
			name: "redis backend without address",
			modify: func(o *Options) {
				o.SessionBackend = SessionBackendRedis
				o.RedisAddr = ""
			},
			err: true,
		},
		{
			name:   "redis backend with address",
			modify: func(o *Options) { o.SessionBackend = SessionBackendRedis },
			err:    false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			opts := valid()
			tc.modify(&opts)

			config, err := NewConfig(opts)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, opts.Addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, opts.DatabaseDSN, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, []string{"http://localhost:3000"}, config.AllowedOrigins, "expected allowed origins to match")
			assert.Equal(t, []byte("some_secret"), config.SigningKey, "expected signing key to be decoded")
			assert.Equal(t, []string{"admin@g.nsu.ru"}, config.AdminEmails)
			assert.Equal(t, 24*time.Hour, config.SessionTTL)
		})
	}
}

func Test_decodeSigningKey(t *testing.T) {
	tcases := []struct {
		name         string
		base64Secret string
		expectedKey  []byte
		expectError  bool
	}{
		{
			name:         "valid base64 secret",
			base64Secret: "c29tZV9zZWNyZXQ=",
			expectedKey:  []byte("some_secret"),
			expectError:  false,
		},
		{
			name:         "invalid base64 secret",
			base64Secret: "invalid_base64",
			expectedKey:  nil,
			expectError:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := decodeSigningSecret(tc.base64Secret)
			if tc.expectError {
				assert.Error(t, err, "expected error for base64 secret: %s", tc.base64Secret)
			} else {
				assert.NoError(t, err, "expected no error for base64 secret: %s", tc.base64Secret)
				assert.Equal(t, tc.expectedKey, key, "expected decoded key to match for base64 secret: %s", tc.base64Secret)
			}
		})
	}
}

func Test_cleanList(t *testing.T) {
	got := cleanList([]string{"a@g.nsu.ru, b@g.nsu.ru", "", " c@g.nsu.ru "})
	assert.Equal(t, []string{"a@g.nsu.ru", "b@g.nsu.ru", "c@g.nsu.ru"}, got)
	assert.Nil(t, cleanList(nil))
}

func TestOptions_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "addr: \":9000\"\nadminEmails:\n  - boss@g.nsu.ru\nsessionBackend: redis\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	opts := DefaultOptions()
	require.NoError(t, opts.LoadFile(path))

	assert.Equal(t, ":9000", opts.Addr)
	assert.Equal(t, []string{"boss@g.nsu.ru"}, opts.AdminEmails)
	assert.Equal(t, SessionBackendRedis, opts.SessionBackend)
	assert.Equal(t, "@g.nsu.ru", opts.AllowedDomain, "expected unset keys to keep defaults")

	t.Run("missing file", func(t *testing.T) {
		opts := DefaultOptions()
		assert.Error(t, opts.LoadFile(filepath.Join(dir, "nope.yaml")))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("addr: [unterminated"), 0o600))
		opts := DefaultOptions()
		assert.Error(t, opts.LoadFile(bad))
	})
}

func TestOptions_LoadEnv(t *testing.T) {
	t.Setenv("ROOMREG_ADDR", ":7000")
	t.Setenv("ROOMREG_ADMIN_EMAILS", "a@g.nsu.ru,b@g.nsu.ru")
	t.Setenv("ROOMREG_SESSION_TTL", "2h")

	opts := DefaultOptions()
	require.NoError(t, opts.LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, ":7000", opts.Addr)
	assert.Equal(t, []string{"a@g.nsu.ru", "b@g.nsu.ru"}, opts.AdminEmails)
	assert.Equal(t, "2h", opts.SessionTTL)
	assert.Equal(t, SessionBackendCookie, opts.SessionBackend)
}

func TestOptions_LoadEnvDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ROOMREG_ALLOWED_DOMAIN=@example.edu\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ROOMREG_ALLOWED_DOMAIN") })

	opts := DefaultOptions()
	require.NoError(t, opts.LoadEnv(path))

	assert.Equal(t, "@example.edu", opts.AllowedDomain)
}

func TestFlagOptions_Apply(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-addr", ":6000", "-admin-emails", "x@g.nsu.ru,y@g.nsu.ru"}))

	opts := DefaultOptions()
	opts.LogMode = "production"
	flags.Apply(&opts)

	assert.Equal(t, ":6000", opts.Addr)
	assert.Equal(t, []string{"x@g.nsu.ru", "y@g.nsu.ru"}, opts.AdminEmails)
	assert.Equal(t, "production", opts.LogMode, "expected unset flags to leave values untouched")
}
