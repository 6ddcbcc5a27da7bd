package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Host:           "localhost",
		Port:           "8000",
		StoragePath:    "/tmp/tagrss.db",
		UpdateInterval: 3600,
		FetchTimeout:   30,
		UserAgent:      "Test Agent",
		SeedFile:       "feeds.yml",
		Debug:          true,
		Version:        "test-version",
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected port '8000', got '%s'", cfg.Port)
	}
	if cfg.StoragePath != "/tmp/tagrss.db" {
		t.Errorf("Expected storage path '/tmp/tagrss.db', got '%s'", cfg.StoragePath)
	}
	if cfg.UpdateInterval != 3600 {
		t.Errorf("Expected update interval 3600, got %d", cfg.UpdateInterval)
	}
	if cfg.FetchTimeout != 30 {
		t.Errorf("Expected fetch timeout 30, got %d", cfg.FetchTimeout)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be true")
	}
}
