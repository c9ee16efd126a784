package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg *Config, now *time.Time) *Limiter {
	l := &Limiter{
		config:  cfg,
		now:     func() time.Time { return *now },
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	return l
}

func TestLimiter_AllowsBurstThenDenies(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/ai/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 2},
		},
	}
	l := newTestLimiter(cfg, &now)

	ok, info := l.Allow("1.2.3.4", "/ai/build-profile", "POST")
	assert.True(t, ok)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, info = l.Allow("1.2.3.4", "/ai/build-profile", "POST")
	assert.True(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, info = l.Allow("1.2.3.4", "/ai/build-profile", "POST")
	assert.False(t, ok)
	assert.False(t, info.Allowed)
	assert.InDelta(t, time.Second.Seconds(), info.RetryAfter.Seconds(), 0.01)

	// One token refills per second.
	now = now.Add(time.Second)
	ok, _ = l.Allow("1.2.3.4", "/ai/build-profile", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	now := time.Now()
	cfg := &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/portfolios/build", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	}
	l := newTestLimiter(cfg, &now)

	ok, _ := l.Allow("a", "/portfolios/build", "POST")
	assert.True(t, ok)
	ok, _ = l.Allow("a", "/portfolios/build", "POST")
	assert.False(t, ok)
	ok, _ = l.Allow("b", "/portfolios/build", "POST")
	assert.True(t, ok)
}

func TestLimiter_DefaultLimitApplies(t *testing.T) {
	now := time.Now()
	cfg := &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}
	l := newTestLimiter(cfg, &now)

	ok, _ := l.Allow("a", "/portfolios", "GET")
	assert.True(t, ok)
	ok, info := l.Allow("a", "/portfolios", "GET")
	assert.False(t, ok)
	assert.Equal(t, 1, info.Limit)
}

func TestLimiter_DisabledWhitelistBlacklist(t *testing.T) {
	now := time.Now()

	disabled := newTestLimiter(&Config{Enabled: false}, &now)
	for i := 0; i < 5; i++ {
		ok, _ := disabled.Allow("a", "/ai/build-profile", "POST")
		assert.True(t, ok)
	}

	cfg := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"good": true},
		Blacklist:     map[string]bool{"bad": true},
	}
	l := newTestLimiter(cfg, &now)
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("good", "/portfolios", "GET")
		assert.True(t, ok)
	}
	ok, _ := l.Allow("bad", "/portfolios", "GET")
	assert.False(t, ok)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute}, &now)
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("a", "/health", "GET")
		assert.True(t, ok)
	}
}

func TestLimiter_CleanupRemovesIdleBuckets(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, &now)

	l.Allow("a", "/portfolios", "GET")
	require.Len(t, l.buckets, 1)

	l.cleanupBuckets(now.Add(-time.Minute))
	assert.Len(t, l.buckets, 1)

	l.cleanupBuckets(now.Add(time.Minute))
	assert.Empty(t, l.buckets)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Hour})
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name     string
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{"exact build", "/portfolios/build", "POST", "/portfolios/build", false},
		{"wildcard analyze", "/portfolios/abc/analyze", "POST", "/portfolios/*/analyze", false},
		{"wildcard publish", "/portfolios/abc/publish", "POST", "/portfolios/*/publish", false},
		{"ai prefix", "/ai/parse-resume", "POST", "/ai/", false},
		{"portfolio update prefix", "/portfolios/abc", "PUT", "/portfolios/", false},
		{"method mismatch", "/ai/parse-resume", "GET", "", true},
		{"no match", "/portfolios", "GET", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Zero(t, health.Limit)
}

func TestParseIPList(t *testing.T) {
	got := parseIPList(" 1.1.1.1, ,2.2.2.2 ")
	assert.Equal(t, map[string]bool{"1.1.1.1": true, "2.2.2.2": true}, got)
	assert.Empty(t, parseIPList(""))
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.1"])
	assert.NotEmpty(t, cfg.EndpointConfigs)
}
