package config

import (
	"testing"
	"time"
)

func TestLoad_RequiredMissing(t *testing.T) {
	// t.Setenvでテスト中の環境変数を隔離する
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() returned nil error without DATABASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meetman_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.FriendRequestCooldown != time.Minute {
		t.Errorf("FriendRequestCooldown = %v, want 1m", cfg.FriendRequestCooldown)
	}
	if cfg.StoreCacheTTL != 0 {
		t.Errorf("StoreCacheTTL = %v, want 0", cfg.StoreCacheTTL)
	}
	if cfg.AdminUserID != "GM" {
		t.Errorf("AdminUserID = %s, want GM", cfg.AdminUserID)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %s, want 8080", cfg.ServerPort)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure = true for http BaseURL, want false")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %s, want http://localhost:3000", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meetman_test")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("RATE_LIMIT_GENERAL", "30")
	t.Setenv("FRIEND_REQUEST_COOLDOWN", "5m")
	t.Setenv("STORE_CACHE_TTL", "2s")
	t.Setenv("ADMIN_USER_ID", "operator")
	t.Setenv("BASE_URL", "https://meetman.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want 3600", cfg.SessionMaxAge)
	}
	if cfg.RateLimitGeneral != 30 {
		t.Errorf("RateLimitGeneral = %d, want 30", cfg.RateLimitGeneral)
	}
	if cfg.FriendRequestCooldown != 5*time.Minute {
		t.Errorf("FriendRequestCooldown = %v, want 5m", cfg.FriendRequestCooldown)
	}
	if cfg.StoreCacheTTL != 2*time.Second {
		t.Errorf("StoreCacheTTL = %v, want 2s", cfg.StoreCacheTTL)
	}
	if cfg.AdminUserID != "operator" {
		t.Errorf("AdminUserID = %s, want operator", cfg.AdminUserID)
	}
	// https BaseURLからSecure Cookieが導出される
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false for https BaseURL, want true")
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/meetman_test")
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("FRIEND_REQUEST_COOLDOWN", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default 86400", cfg.SessionMaxAge)
	}
	if cfg.FriendRequestCooldown != time.Minute {
		t.Errorf("FriendRequestCooldown = %v, want default 1m", cfg.FriendRequestCooldown)
	}
}
