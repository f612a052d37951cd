package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Environment: "development",
		DBName:      "fiado",
		Pix: PixConfig{
			BaseURL:      "https://cdpj.partners.example.com",
			ClientID:     "client-1",
			ClientSecret: "secret-1",
			ReceiverKey:  "platform@example.com",
		},
		WebhookSecret: "s3cret",
		FeePercent:    1,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateReportsAllMissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Pix.ClientID = ""
	cfg.WebhookSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, key := range []string{"PIX_CLIENT_ID", "WEBHOOK_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}
}

func TestValidateRequiresCertificateInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PIX_CERT_FILE") {
		t.Fatalf("expected certificate requirement in production, got %v", err)
	}

	cfg.Pix.CertB64 = "Y2VydA=="
	cfg.Pix.KeyB64 = "a2V5"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected base64 pair to satisfy the requirement, got %v", err)
	}
}

func TestValidateBoundsFeePercent(t *testing.T) {
	cfg := validConfig()
	cfg.FeePercent = 100
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected fee percent 100 to be rejected")
	}
	cfg.FeePercent = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative fee percent to be rejected")
	}
	cfg.FeePercent = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected zero fee to be allowed, got %v", err)
	}
}
