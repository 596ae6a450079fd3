package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestNewConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	c, err := NewConfig()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	if c.Selection == "" || !strings.Contains(c.Selection, ".motifq") {
		t.Errorf("unexpected default selection path: %q", c.Selection)
	}
	if c.DB == "" || !strings.Contains(c.DB, ".motifq") {
		t.Errorf("unexpected default db path: %q", c.DB)
	}
	if c.Search.BaseURL != "" {
		t.Errorf("expected empty base url so the built-in default applies, got %q", c.Search.BaseURL)
	}
}

func TestNewConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("selection", "/tmp/picks.json")
	viper.Set("db", "/tmp/motifq.db")
	viper.Set("verbose", true)
	viper.Set("search.base-url", "https://search.test/?query=")
	viper.Set("search.timeout", "30s")
	viper.Set("meilisearch.index", "motifs")
	viper.Set("watch.debounce", "250ms")
	viper.Set("watch.metrics-addr", ":9100")

	c, err := NewConfig()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	if c.Selection != "/tmp/picks.json" || c.DB != "/tmp/motifq.db" {
		t.Errorf("paths not applied: %+v", c)
	}
	if !c.Verbose {
		t.Error("verbose not applied")
	}
	if c.Search.BaseURL != "https://search.test/?query=" {
		t.Errorf("search base url not applied: %q", c.Search.BaseURL)
	}
	if c.Search.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", c.Search.Timeout)
	}
	if c.Meilisearch.Index != "motifs" {
		t.Errorf("meilisearch index not applied: %q", c.Meilisearch.Index)
	}
	if c.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", c.Watch.Debounce)
	}
	if c.Watch.MetricsAddr != ":9100" {
		t.Errorf("metrics addr not applied: %q", c.Watch.MetricsAddr)
	}
}
