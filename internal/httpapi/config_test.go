package httpapi

import (
	"testing"
	"time"
)

func TestConfigValidateAppliesDefaults(test *testing.T) {
	test.Parallel()
	cfg := Config{SessionSigningKey: "test-signing-key"}
	if err := cfg.Validate(); err != nil {
		test.Fatalf("validate: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		test.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		test.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.SessionIssuer != "staybook" || cfg.SessionCookieName != "staybook_session" {
		test.Fatalf("unexpected session defaults %q %q", cfg.SessionIssuer, cfg.SessionCookieName)
	}
	if cfg.SessionTTL != 24*time.Hour {
		test.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.RatePerSecond != 10 || cfg.RateBurst != 30 {
		test.Fatalf("unexpected rate defaults %v %d", cfg.RatePerSecond, cfg.RateBurst)
	}
}

func TestConfigValidateRequiresSigningKey(test *testing.T) {
	test.Parallel()
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		test.Fatalf("expected missing signing key error")
	}
}

func TestParseAllowedOrigins(test *testing.T) {
	test.Parallel()
	origins := ParseAllowedOrigins(" http://a.example , ,http://b.example")
	if len(origins) != 2 || origins[0] != "http://a.example" || origins[1] != "http://b.example" {
		test.Fatalf("unexpected origins %v", origins)
	}
	if got := ParseAllowedOrigins("   "); len(got) != 0 {
		test.Fatalf("expected empty slice, got %v", got)
	}
}
