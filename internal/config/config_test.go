package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "leadcenter"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		VoiceAI: VoiceAIConfig{
			BaseURL:     "https://api.voice.example.com",
			AssistantID: "asst-1",
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_VoiceAIDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.VoiceAI.PageLimit != 100 {
		t.Fatalf("expected page limit default 100, got %d", c.VoiceAI.PageLimit)
	}
	if c.VoiceAI.EnhanceBatchSize != 5 {
		t.Fatalf("expected enhance batch size default 5, got %d", c.VoiceAI.EnhanceBatchSize)
	}
	if c.VoiceAI.EnhanceBatchDelay != 500*time.Millisecond {
		t.Fatalf("expected enhance batch delay default 500ms, got %s", c.VoiceAI.EnhanceBatchDelay)
	}
	if c.VoiceAI.DefaultCountry != "US" {
		t.Fatalf("expected default country US, got %q", c.VoiceAI.DefaultCountry)
	}
}

func TestValidate_VoiceAIRequiresBaseURLAndAssistant(t *testing.T) {
	c := validBase()
	c.VoiceAI.BaseURL = ""
	c.VoiceAI.AssistantID = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing voiceai config")
	}
}
