package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GATEWAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("JWT_SECRET", "a-long-random-signing-key")
	t.Setenv("CURRENCY", "brl")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != ":8080" || cfg.Currency != "BRL" {
		t.Errorf("addr %s currency %s", cfg.Addr(), cfg.Currency)
	}
	if cfg.PaymentWindow != 30*time.Minute || cfg.GatewayTimeout != 10*time.Second || cfg.StoreTimeout != 5*time.Second {
		t.Errorf("durations %v %v %v", cfg.PaymentWindow, cfg.GatewayTimeout, cfg.StoreTimeout)
	}
	if cfg.HomeServiceFeePercent != 10 || cfg.PlatformCommissionPercent != 5 {
		t.Errorf("fees %v %v", cfg.HomeServiceFeePercent, cfg.PlatformCommissionPercent)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":     {"GATEWAY_WEBHOOK_SECRET": ""},
		"unknown gateway":    {"GATEWAY_PROVIDER": "paypal"},
		"mercadopago no key": {"GATEWAY_PROVIDER": "mercadopago"},
		"negative fee":       {"HOME_SERVICE_FEE_PERCENT": "-1"},
		"bad duration":       {"PAYMENT_WINDOW": "soon"},
		"missing jwt secret": {"JWT_SECRET": ""},
		"placeholder jwt":    {"JWT_SECRET": "changeme"},
		"bad store timeout":  {"STORE_TIMEOUT": "fast"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("GATEWAY_WEBHOOK_SECRET", "x")
			t.Setenv("JWT_SECRET", "a-long-random-signing-key")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_DevelopmentJWTFallback(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GATEWAY_WEBHOOK_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("development should get a usable signing key")
	}
}
