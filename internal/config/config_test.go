package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMustAndMustInt(t *testing.T) {
	t.Setenv("TEST_MUST_STR", "value")
	t.Setenv("TEST_MUST_INT", "42")

	assert.Equal(t, "value", must("TEST_MUST_STR"))
	assert.Equal(t, 42, mustInt("TEST_MUST_INT"))
	// Missing or malformed values call log.Fatalf; those paths exit the
	// process and are not exercised here.
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_SET", "present")
	t.Setenv("TEST_EMPTY", "")

	assert.Equal(t, "present", getenv("TEST_SET", "fallback"))
	assert.Equal(t, "fallback", getenv("TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", getenv("TEST_UNSET_NEVER_SET", "fallback"))

	assert.Equal(t, 7, atoi("7"))
	assert.Equal(t, 0, atoi("junk"))

	assert.Equal(t, 90*time.Second, parseDur("90s"))
	assert.Equal(t, time.Second, parseDur("not-a-duration"))
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tc.raw)
			assert.Equal(t, tc.want, envBool("TEST_BOOL", tc.def))
		})
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, Post ,DELETE,")
	assert.True(t, m["GET"])
	assert.True(t, m["POST"])
	assert.True(t, m["DELETE"])
	assert.False(t, m["PATCH"])
	assert.Len(t, m, 3)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	for _, k := range []string{"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES"} {
		t.Setenv(k, "")
	}
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
	assert.Equal(t, "cache", cfg.Prefix)
	assert.Equal(t, 1048576, cfg.MaxBodyBytes)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_KEY_STRATEGY", "RATE_LIMIT_PREFIX", "RATE_LIMIT_DEBUG", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY"} {
		t.Setenv(k, "")
	}
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity, "capacity clamps to at least 1")
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 5*time.Second, cfg.TTL, "TTL clamps to five refill intervals")

	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	cfg = LoadRateLimitConfig()
	assert.Equal(t, 25, cfg.Capacity, "burst overrides capacity")
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
}
