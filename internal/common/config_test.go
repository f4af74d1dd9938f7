package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("SECTORWATCH_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_TushareTokenEnvOverride(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "tok-from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Tushare.Token != "tok-from-env" {
		t.Errorf("Tushare.Token = %q, want %q", cfg.Clients.Tushare.Token, "tok-from-env")
	}
}

func TestConfig_TushareTokenGenericWinsOverScoped(t *testing.T) {
	t.Setenv("TUSHARE_TOKEN", "generic")
	t.Setenv("SECTORWATCH_TUSHARE_TOKEN", "scoped")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Tushare.Token != "generic" {
		t.Errorf("Tushare.Token = %q, want %q", cfg.Clients.Tushare.Token, "generic")
	}
}

func TestConfig_FileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sectorwatch.toml")
	content := `
environment = "production"

[server]
port = 7070

[market]
window_days = 60
freshness = "10m"

[sectors]
"测试板块" = ["甲公司", "乙公司"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	// File overrides only what it sets; defaults survive elsewhere
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
	if cfg.Market.GetWindowDays() != 60 {
		t.Errorf("WindowDays = %d, want 60", cfg.Market.GetWindowDays())
	}
	if cfg.Market.GetFreshness() != 10*time.Minute {
		t.Errorf("Freshness = %v, want 10m", cfg.Market.GetFreshness())
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction true for environment=production")
	}
	members := cfg.GetSectors()["测试板块"]
	if len(members) != 2 || members[0] != "甲公司" {
		t.Errorf("sector members = %v, want [甲公司 乙公司]", members)
	}
}

func TestConfig_MissingFileIsSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestConfig_GetSectorsFallsBackToBuiltin(t *testing.T) {
	cfg := NewDefaultConfig()
	sectors := cfg.GetSectors()
	if len(sectors) == 0 {
		t.Fatal("expected built-in sector universe when none configured")
	}
	if _, ok := sectors["果链"]; !ok {
		t.Error("expected built-in universe to include 果链")
	}
}

func TestMarketConfig_FreshnessDefaults(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", FreshnessSnapshot},
		{"garbage", FreshnessSnapshot},
		{"-5m", FreshnessSnapshot},
		{"45m", 45 * time.Minute},
	}
	for _, tc := range cases {
		mc := MarketConfig{Freshness: tc.raw}
		if got := mc.GetFreshness(); got != tc.want {
			t.Errorf("GetFreshness(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestMarketConfig_WindowDaysDefault(t *testing.T) {
	mc := MarketConfig{}
	if mc.GetWindowDays() != 120 {
		t.Errorf("GetWindowDays zero value = %d, want 120", mc.GetWindowDays())
	}
	mc.WindowDays = 200
	if mc.GetWindowDays() != 200 {
		t.Errorf("GetWindowDays = %d, want 200", mc.GetWindowDays())
	}
}

func TestTushareConfig_TimeoutFallback(t *testing.T) {
	tc := TushareConfig{Timeout: "bogus"}
	if tc.GetTimeout() != 30*time.Second {
		t.Errorf("GetTimeout = %v, want 30s fallback", tc.GetTimeout())
	}
}
