package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/skhosravi/weathercheck/internal/agent/telemetry"
	"github.com/skhosravi/weathercheck/internal/capability"
	"github.com/skhosravi/weathercheck/internal/extract"
	"github.com/skhosravi/weathercheck/tools/web_fetch/models"
)

type fakeFetcher struct {
	doc   models.Document
	err   error
	calls int
}

func (f *fakeFetcher) Exec(ctx context.Context, req models.Request) (models.Document, error) {
	f.calls++
	return f.doc, f.err
}

func newWeatherRegistry(t *testing.T, fetcher *fakeFetcher) *capability.Registry {
	t.Helper()
	extractor := extract.New(500*time.Millisecond, quietLogger())
	reg, err := NewRegistry(fetcher, extractor, telemetry.New(false, quietLogger()), quietLogger(), "", nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func runScripted(t *testing.T, fetcher *fakeFetcher, city, expected string) (string, []Step) {
	t.Helper()
	reg := newWeatherRegistry(t, fetcher)
	loop := NewLoop(reg, NewScriptedPolicy(city, expected), 3, quietLogger(), telemetry.New(false, quietLogger()))
	return loop.Run(context.Background(), Goal(city, expected))
}

func TestEndToEndStructuredMatch(t *testing.T) {
	fetcher := &fakeFetcher{doc: models.Document{
		HTML:  `<html><body><span id="wob_dc">Sunny</span></body></html>`,
		Title: "Sunny - Weather for Pune",
	}}
	answer, transcript := runScripted(t, fetcher, "Pune", "Sunny")

	if fetcher.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", fetcher.calls)
	}
	if want := "Current weather in Pune: Sunny. Expected: Sunny"; transcript[0].Observation != want {
		t.Fatalf("unexpected report %q", transcript[0].Observation)
	}
	if !strings.Contains(answer, "SUCCESS") {
		t.Fatalf("expected success verdict, got %q", answer)
	}
}

func TestEndToEndKeywordMismatch(t *testing.T) {
	fetcher := &fakeFetcher{doc: models.Document{
		HTML:      "<html><body><div>search results</div></body></html>",
		TextNodes: []string{"Cloudy with occasional showers"},
	}}
	answer, _ := runScripted(t, fetcher, "London", "Clear")

	if !strings.Contains(answer, "FAILURE") {
		t.Fatalf("expected failure verdict, got %q", answer)
	}
	if strings.Contains(answer, "SUCCESS") {
		t.Fatalf("verdict must not carry the success marker: %q", answer)
	}
}

func TestEndToEndFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("navigation failed: context deadline exceeded")}
	answer, transcript := runScripted(t, fetcher, "Pune", "Sunny")

	if !strings.HasPrefix(transcript[0].Observation, "Error occurred while checking weather:") {
		t.Fatalf("unexpected fetch-failure report %q", transcript[0].Observation)
	}
	if answer != unparseableReport {
		t.Fatalf("expected unparseable verdict, got %q", answer)
	}
	if strings.Contains(answer, "SUCCESS") {
		t.Fatalf("verdict must not carry the success marker: %q", answer)
	}
}

func TestEndToEndNoEvidence(t *testing.T) {
	fetcher := &fakeFetcher{doc: models.Document{HTML: "<html><body></body></html>"}}
	answer, transcript := runScripted(t, fetcher, "Pune", "Sunny")

	if want := "Couldn't extract weather condition for Pune. Expected: Sunny"; transcript[0].Observation != want {
		t.Fatalf("unexpected report %q", transcript[0].Observation)
	}
	if answer != unparseableReport {
		t.Fatalf("expected unparseable verdict, got %q", answer)
	}
}

func TestCheckWeatherRejectsMalformedInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	reg := newWeatherRegistry(t, fetcher)

	out, err := reg.Invoke(context.Background(), CapabilityCheckWeather, "PuneSunny")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != invalidInputReport {
		t.Fatalf("unexpected output %q", out)
	}
	if fetcher.calls != 0 {
		t.Fatalf("malformed input must not trigger a fetch, got %d calls", fetcher.calls)
	}
}

func TestCheckWeatherTrimsInputSegments(t *testing.T) {
	fetcher := &fakeFetcher{doc: models.Document{
		HTML: `<html><body><span id="wob_dc">Clear</span></body></html>`,
	}}
	reg := newWeatherRegistry(t, fetcher)

	out, err := reg.Invoke(context.Background(), CapabilityCheckWeather, " London | Clear ")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if want := "Current weather in London: Clear. Expected: Clear"; out != want {
		t.Fatalf("unexpected report %q", out)
	}
}
