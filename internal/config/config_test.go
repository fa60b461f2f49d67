package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.FetchTimeout != 20 {
		t.Errorf("FetchTimeout = %d, want 20", cfg.FetchTimeout)
	}
	if cfg.RenderTimeout != 25 {
		t.Errorf("RenderTimeout = %d, want 25", cfg.RenderTimeout)
	}
	if cfg.SeedWorkers != 4 {
		t.Errorf("SeedWorkers = %d, want 4", cfg.SeedWorkers)
	}
	if cfg.BatchQueueSize != 16 {
		t.Errorf("BatchQueueSize = %d, want 16", cfg.BatchQueueSize)
	}
	if cfg.RespectRobots {
		t.Error("RespectRobots = true, want false by default")
	}
	if cfg.RenderCacheHours != 12 {
		t.Errorf("RenderCacheHours = %d, want 12", cfg.RenderCacheHours)
	}
}
