package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "/tmp/test.db",
		SourcesDir:        "./sources",
		Port:              "8080",
		WorkerCount:       5,
		SchedulerInterval: 30,
		APIAccessKey:      "test-key",
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DB path '/tmp/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
