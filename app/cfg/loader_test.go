package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		VendorsDir:        "./vendors",
		Port:              "8080",
		WorkerCount:       5,
		SchedulerInterval: 30,
		ImportInterval:    3600,
		ImportStartDate:   "2016-01-01",
		APIAccessKey:      "test-key",
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.VendorsDir != "./vendors" {
		t.Errorf("Expected vendors dir './vendors', got '%s'", cfg.VendorsDir)
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
	if cfg.ImportInterval != 3600 {
		t.Errorf("Expected import interval 3600, got %d", cfg.ImportInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestImportStartTime(t *testing.T) {
	cfg := &Cfg{ImportStartDate: "2016-01-01"}

	got := cfg.ImportStartTime()
	want := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected import start %v, got %v", want, got)
	}
}

func TestImportStartTimeInvalid(t *testing.T) {
	cfg := &Cfg{ImportStartDate: "not-a-date"}

	if !cfg.ImportStartTime().IsZero() {
		t.Error("Expected zero time for unparseable import start date")
	}
}
