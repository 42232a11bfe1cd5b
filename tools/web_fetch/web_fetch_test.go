package web_fetch

import (
	"testing"

	"github.com/skhosravi/weathercheck/config"
)

func TestNewWebFetcherChromedp(t *testing.T) {
	f, err := NewWebFetcher(ChromedpFetcherType, config.FetchConfig{TimeoutMS: 15000, StrategyWaitMS: 3000})
	if err != nil {
		t.Fatalf("NewWebFetcher: %v", err)
	}
	if f == nil {
		t.Fatalf("expected a fetcher")
	}
}

func TestNewWebFetcherUnsupportedType(t *testing.T) {
	if _, err := NewWebFetcher("selenium", config.FetchConfig{}); err == nil {
		t.Fatalf("expected unsupported fetcher type error")
	}
}
