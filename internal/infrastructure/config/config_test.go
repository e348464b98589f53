package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/bandobast/zone-monitor/internal/core/monitor"
	"github.com/bandobast/zone-monitor/internal/core/zone"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected top-level defaults: %+v", cfg)
	}
	if cfg.Feeds.PollInterval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", cfg.Feeds.PollInterval)
	}
	if !cfg.Feeds.Live || !cfg.Feeds.Poll {
		t.Errorf("expected both feeds enabled by default")
	}
	if cfg.MatchMode() != zone.MatchAny {
		t.Errorf("expected match any, got %s", cfg.MatchMode())
	}
	if cfg.FirstSightingPolicy() != monitor.FirstSightingSuppress {
		t.Errorf("expected suppress, got %s", cfg.FirstSightingPolicy())
	}
	if cfg.Redis.AlertChannel != "zone-monitor:alerts" || cfg.Redis.DedupTTL != 24*time.Hour {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.IsProduction() {
		t.Error("default env must not be production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"ZONE_MATCH":     "all",
		"FIRST_SIGHTING": "evaluate",
		"POLL_INTERVAL":  "250ms",
		"WORKERS":        "2",
		"INGEST_RATE":    "0",
		"LIVE_FEED":      "false",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.MatchMode() != zone.MatchAll || cfg.FirstSightingPolicy() != monitor.FirstSightingEvaluate {
		t.Errorf("unexpected zone config: %+v", cfg.Zones)
	}
	if cfg.Feeds.PollInterval != 250*time.Millisecond || cfg.Feeds.Live {
		t.Errorf("unexpected feed config: %+v", cfg.Feeds)
	}
	if cfg.Dispatch.Workers != 2 || cfg.Ingest.Rate != 0 {
		t.Errorf("unexpected dispatch/ingest config: %+v %+v", cfg.Dispatch, cfg.Ingest)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"match mode":     {"ZONE_MATCH": "some"},
		"first sighting": {"FIRST_SIGHTING": "loud"},
		"poll interval":  {"POLL_INTERVAL": "0s"},
		"ingest rate":    {"INGEST_RATE": "-1"},
		"not a duration": {"POLL_INTERVAL": "soon"},
	}
	for name, env := range cases {
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
