package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_RatingPolicyParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("RATING_BASELINE", "")
		t.Setenv("RATING_K_BREAKPOINTS", "")
		t.Setenv("RATING_K_FACTORS", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RatingBaseline != 1500 {
			t.Fatalf("unexpected default baseline: %d", cfg.RatingBaseline)
		}
		if len(cfg.RatingKBreakpoints) != 2 || cfg.RatingKBreakpoints[0] != 1200 || cfg.RatingKBreakpoints[1] != 1800 {
			t.Fatalf("unexpected default breakpoints: %+v", cfg.RatingKBreakpoints)
		}
		if len(cfg.RatingKFactors) != 3 || cfg.RatingKFactors[1] != 50 {
			t.Fatalf("unexpected default factors: %+v", cfg.RatingKFactors)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("RATING_BASELINE", "1000")
		t.Setenv("RATING_K_BREAKPOINTS", "1400")
		t.Setenv("RATING_K_FACTORS", "60,20")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RatingBaseline != 1000 {
			t.Fatalf("unexpected baseline: %d", cfg.RatingBaseline)
		}
		if len(cfg.RatingKFactors) != 2 {
			t.Fatalf("unexpected factors: %+v", cfg.RatingKFactors)
		}
	})

	t.Run("factor count must exceed breakpoints by one", func(t *testing.T) {
		t.Setenv("RATING_K_BREAKPOINTS", "1200,1800")
		t.Setenv("RATING_K_FACTORS", "70,50")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for mismatched factor count")
		}
	})

	t.Run("invalid number", func(t *testing.T) {
		t.Setenv("RATING_K_BREAKPOINTS", "1200,abc")
		t.Setenv("RATING_K_FACTORS", "70,50,30")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-numeric breakpoint")
		}
	})
}

func TestLoad_WebhookConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("WEBHOOK_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.WebhookEnabled {
			t.Fatalf("expected WebhookEnabled=false by default")
		}
	})

	t.Run("enabled requires url", func(t *testing.T) {
		t.Setenv("WEBHOOK_ENABLED", "true")
		t.Setenv("WEBHOOK_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when WEBHOOK_ENABLED=true without WEBHOOK_URL")
		}
	})

	t.Run("enabled with values", func(t *testing.T) {
		t.Setenv("WEBHOOK_ENABLED", "true")
		t.Setenv("WEBHOOK_URL", "https://hooks.example.com/foostrack")
		t.Setenv("WEBHOOK_SECRET", "hook-secret")
		t.Setenv("WEBHOOK_TIMEOUT", "3s")
		t.Setenv("WEBHOOK_CIRCUIT_FAILURE_COUNT", "7")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.WebhookEnabled {
			t.Fatalf("expected WebhookEnabled=true")
		}
		if cfg.WebhookTimeout != 3*time.Second {
			t.Fatalf("unexpected webhook timeout: %s", cfg.WebhookTimeout)
		}
		if cfg.WebhookCircuitFailureCount != 7 {
			t.Fatalf("unexpected circuit failure count: %d", cfg.WebhookCircuitFailureCount)
		}
		if cfg.WebhookSecret != "hook-secret" {
			t.Fatalf("unexpected webhook secret")
		}
	})
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
	})
}

func TestLoad_DBURLDefaultsToEmpty(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("DB_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DB_URL default, got %q", cfg.DBURL)
	}
}

func TestLoad_StatsWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATS_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for STATS_WORKERS=0")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "foostrack-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "foostrack-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}
