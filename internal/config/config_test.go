package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// empty values are treated as unset, so this isolates the test from
	// whatever the host environment carries
	for _, key := range []string{"PORT", "MONGODB_URI", "REDIS_URL", "MONGO_USE_TRANSACTIONS", "VIEW_DEDUP_WINDOW", "RECONCILE_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://localhost:27017/brain_scroll" {
		t.Errorf("MongoURI = %q", cfg.MongoURI)
	}
	if cfg.UseTransactions {
		t.Error("UseTransactions should default to false for standalone MongoDB")
	}
	if cfg.ViewDedupWindow != time.Hour {
		t.Errorf("ViewDedupWindow = %v, want 1h", cfg.ViewDedupWindow)
	}
	if cfg.ReconcileInterval != time.Hour {
		t.Errorf("ReconcileInterval = %v, want 1h", cfg.ReconcileInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGO_USE_TRANSACTIONS", "true")
	t.Setenv("VIEW_DEDUP_WINDOW", "30m")
	t.Setenv("RECONCILE_INTERVAL", "15m")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.UseTransactions {
		t.Error("UseTransactions = false, want true")
	}
	if cfg.ViewDedupWindow != 30*time.Minute {
		t.Errorf("ViewDedupWindow = %v, want 30m", cfg.ViewDedupWindow)
	}
	if cfg.ReconcileInterval != 15*time.Minute {
		t.Errorf("ReconcileInterval = %v, want 15m", cfg.ReconcileInterval)
	}
}

func TestLoadMalformedValues(t *testing.T) {
	// malformed env values fall back to defaults rather than failing startup
	t.Setenv("MONGO_USE_TRANSACTIONS", "definitely")
	t.Setenv("VIEW_DEDUP_WINDOW", "soon")

	cfg := Load()

	if cfg.UseTransactions {
		t.Error("UseTransactions should fall back to false on garbage input")
	}
	if cfg.ViewDedupWindow != time.Hour {
		t.Errorf("ViewDedupWindow = %v, want default 1h", cfg.ViewDedupWindow)
	}
}
