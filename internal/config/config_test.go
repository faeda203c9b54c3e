package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:8080"
		dsn  = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		key  = "c29tZV9zZWNyZXQ="
		orig = []string{"http://localhost:5173"}
	)

	tcases := []struct {
		name string
		addr string
		dsn  string
		key  string
		orig []string
		err  bool
	}{
		{
			name: "valid config",
			addr: addr,
			dsn:  dsn,
			key:  key,
			orig: orig,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			dsn:  dsn,
			key:  key,
			orig: orig,
			err:  true,
		},
		{
			name: "empty DSN",
			addr: addr,
			dsn:  "",
			key:  key,
			orig: orig,
			err:  true,
		},
		{
			name: "empty signing key",
			addr: addr,
			dsn:  dsn,
			key:  "",
			orig: orig,
			err:  true,
		},
		{
			name: "signing key not base64",
			addr: addr,
			dsn:  dsn,
			key:  "not base64!",
			orig: orig,
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.key, tc.orig)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.NotEmpty(t, config.SigningKey, "expected signing key to be decoded and not empty")
			assert.False(t, config.Redis.Enabled(), "expected redis to be disabled by default")
			assert.False(t, config.Media.Enabled(), "expected media to be disabled by default")
			assert.False(t, config.Stripe.Enabled(), "expected stripe to be disabled by default")
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
		{
			name:         "empty base64 secret",
			base64Secret: "",
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

func TestSectionsEnabled(t *testing.T) {
	assert.True(t, RedisConfig{Addr: "localhost:6379"}.Enabled())
	assert.True(t, MediaConfig{Endpoint: "localhost:9000", Bucket: "chat"}.Enabled())
	assert.False(t, MediaConfig{Endpoint: "localhost:9000"}.Enabled(), "expected media without bucket to be disabled")
	assert.True(t, StripeConfig{SecretKey: "sk_test"}.Enabled())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	err := os.WriteFile(envFile, []byte("GOCHAT_TEST_ADDR=localhost:9999\nGOCHAT_TEST_PRESET=from-file\n"), 0o600)
	assert.NoError(t, err)

	t.Setenv("GOCHAT_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("GOCHAT_TEST_ADDR") })

	err = LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))
	assert.NoError(t, err, "expected missing files to be skipped")

	assert.Equal(t, "localhost:9999", os.Getenv("GOCHAT_TEST_ADDR"))
	assert.Equal(t, "from-env", os.Getenv("GOCHAT_TEST_PRESET"), "expected existing variables to win")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GOCHAT_TEST_STR", "value")
	t.Setenv("GOCHAT_TEST_INT", "3")
	t.Setenv("GOCHAT_TEST_BAD_INT", "three")
	t.Setenv("GOCHAT_TEST_BOOL", "true")
	t.Setenv("GOCHAT_TEST_DUR", "90s")

	assert.Equal(t, "value", EnvOrDefault("GOCHAT_TEST_STR", "def"))
	assert.Equal(t, "def", EnvOrDefault("GOCHAT_TEST_UNSET", "def"))
	assert.Equal(t, 3, EnvIntOrDefault("GOCHAT_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntOrDefault("GOCHAT_TEST_BAD_INT", 1))
	assert.True(t, EnvBoolOrDefault("GOCHAT_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, EnvDurationOrDefault("GOCHAT_TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationOrDefault("GOCHAT_TEST_UNSET", time.Minute))
}
